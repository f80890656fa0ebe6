package schema

import (
	"errors"
	"fmt"
	"strings"

	"careload/internal/registry"
)

// ErrCyclicDependency means the non-nullable FK graph is not a DAG. The error
// message names the cycle.
var ErrCyclicDependency = errors.New("cyclic dependency")

// parentsOf returns the distinct non-nullable FK parents of def that exist in
// the definition set. Nullable keys are verified after load but do not
// constrain ordering.
func parentsOf(def *registry.EntityDefinition, known map[string]bool) []string {
	var parents []string
	seen := make(map[string]bool)
	for _, fk := range def.ForeignKeys {
		if fk.Nullable || fk.RefEntity == def.Name || seen[fk.RefEntity] || !known[fk.RefEntity] {
			continue
		}
		seen[fk.RefEntity] = true
		parents = append(parents, fk.RefEntity)
	}
	return parents
}

// Order returns the definitions in load order: every entity after all of its
// non-nullable FK parents. Entities whose dependencies are satisfied are
// emitted in declaration order, so the result is deterministic for a given
// input. A cycle is a configuration error, not something to break
// heuristically: loading either side first would leave orphaned references.
func Order(defs []*registry.EntityDefinition) ([]*registry.EntityDefinition, error) {
	known := make(map[string]bool, len(defs))
	for _, d := range defs {
		known[d.Name] = true
	}

	var sorted []*registry.EntityDefinition
	processed := make(map[string]bool, len(defs))

	for len(sorted) < len(defs) {
		added := false
		for _, d := range defs {
			if processed[d.Name] {
				continue
			}
			ready := true
			for _, p := range parentsOf(d, known) {
				if !processed[p] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, d)
				processed[d.Name] = true
				added = true
			}
		}
		if !added {
			return nil, fmt.Errorf("%w: %s", ErrCyclicDependency,
				strings.Join(findCycle(defs, known, processed), " -> "))
		}
	}
	return sorted, nil
}

// Levels groups the definitions by dependency depth: level 0 has no
// non-nullable parents, level N depends only on levels < N. Entities within a
// level have no edges between them and may load concurrently. Same cycle
// semantics as Order.
func Levels(defs []*registry.EntityDefinition) ([][]*registry.EntityDefinition, error) {
	if _, err := Order(defs); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(defs))
	byName := make(map[string]*registry.EntityDefinition, len(defs))
	for _, d := range defs {
		known[d.Name] = true
		byName[d.Name] = d
	}

	depth := make(map[string]int, len(defs))
	var levelOf func(d *registry.EntityDefinition) int
	levelOf = func(d *registry.EntityDefinition) int {
		if lv, ok := depth[d.Name]; ok {
			return lv
		}
		lv := 0
		for _, p := range parentsOf(d, known) {
			if pl := levelOf(byName[p]) + 1; pl > lv {
				lv = pl
			}
		}
		depth[d.Name] = lv
		return lv
	}

	maxLevel := 0
	for _, d := range defs {
		if lv := levelOf(d); lv > maxLevel {
			maxLevel = lv
		}
	}

	levels := make([][]*registry.EntityDefinition, maxLevel+1)
	for _, d := range defs { // declaration order within each level
		lv := depth[d.Name]
		levels[lv] = append(levels[lv], d)
	}
	return levels, nil
}

// findCycle walks the unprocessed remainder of the graph and reconstructs one
// dependency cycle for the error message.
func findCycle(defs []*registry.EntityDefinition, known, processed map[string]bool) []string {
	byName := make(map[string]*registry.EntityDefinition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)

		for _, p := range parentsOf(byName[name], known) {
			if processed[p] {
				continue
			}
			if onStack[p] {
				// Slice the stack from the first occurrence of p.
				for i, s := range stack {
					if s == p {
						cycle = append(append([]string{}, stack[i:]...), p)
						return true
					}
				}
			}
			if !visited[p] && dfs(p) {
				return true
			}
		}

		onStack[name] = false
		stack = stack[:len(stack)-1]
		return false
	}

	for _, d := range defs {
		if !processed[d.Name] && !visited[d.Name] {
			if dfs(d.Name) {
				return cycle
			}
		}
	}
	return nil
}
