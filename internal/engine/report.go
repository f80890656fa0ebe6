package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LoadReport is the single externally visible result of a run. Immutable once
// assembled.
type LoadReport struct {
	StartTime     time.Time
	EndTime       time.Time
	EntityStats   map[string]*EntityLoadStats
	Violations    []Violation
	OverallErrors []string
}

// AssembleReport is pure aggregation; it applies no severity policy. Whether
// nonzero orphan counts fail the run is the caller's decision.
func AssembleReport(stats map[string]*EntityLoadStats, violations []Violation, start, end time.Time, overallErrors []string) *LoadReport {
	return &LoadReport{
		StartTime:     start,
		EndTime:       end,
		EntityStats:   stats,
		Violations:    violations,
		OverallErrors: overallErrors,
	}
}

// Clean reports whether the run finished with no entity errors, no overall
// errors, and no integrity violations.
func (r *LoadReport) Clean() bool {
	if len(r.OverallErrors) > 0 {
		return false
	}
	for _, s := range r.EntityStats {
		if len(s.Errors) > 0 {
			return false
		}
	}
	for _, v := range r.Violations {
		if !v.OK() {
			return false
		}
	}
	return true
}

// TotalLoaded sums the authoritative per-entity row counts.
func (r *LoadReport) TotalLoaded() int {
	total := 0
	for _, s := range r.EntityStats {
		total += s.LoadedRowCount
	}
	return total
}

// Markdown renders the report for saving alongside the run.
func (r *LoadReport) Markdown() string {
	var b strings.Builder
	b.WriteString("# Clinical Data Loading Report\n\n")
	fmt.Fprintf(&b, "*Generated on: %s*\n\n", r.EndTime.Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Start Time**: %s\n", r.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **End Time**: %s\n", r.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Duration**: %.1fs\n", r.EndTime.Sub(r.StartTime).Seconds())
	fmt.Fprintf(&b, "- **Entities Processed**: %d\n", len(r.EntityStats))
	fmt.Fprintf(&b, "- **Total Rows Loaded**: %d\n", r.TotalLoaded())
	fmt.Fprintf(&b, "- **Status**: %s\n\n", map[bool]string{true: "CLEAN", false: "COMPLETED WITH ISSUES"}[r.Clean()])

	b.WriteString("## Entity Results\n\n")
	b.WriteString("| Entity | Source Rows | Cleaned | Loaded | Batches | Attempts | Errors | Warnings | Duration |\n")
	b.WriteString("|--------|-------------|---------|--------|---------|----------|--------|----------|----------|\n")

	names := make([]string, 0, len(r.EntityStats))
	for name := range r.EntityStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.EntityStats[name]
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %d | %d | %.1fs |\n",
			s.EntityName, s.SourceRowCount, s.CleanedRowCount, s.LoadedRowCount,
			s.BatchCount, s.AttemptsTotal, len(s.Errors), len(s.Warnings), s.Duration.Seconds())
	}

	b.WriteString("\n## Referential Integrity\n\n")
	if len(r.Violations) == 0 {
		b.WriteString("No relationships declared.\n")
	} else {
		b.WriteString("| Relationship | Child | Parent | Orphaned | Null Violations |\n")
		b.WriteString("|--------------|-------|--------|----------|------------------|\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "| %s | %s.%s | %s.%s | %d | %d |\n",
				v.Relationship, v.ChildEntity, v.ChildField, v.ParentEntity, v.ParentField,
				v.OrphanedCount, v.NullViolationCount)
		}
	}

	writeList := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		for _, l := range lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	writeList("Run Errors", r.OverallErrors)

	var entityErrors, entityWarnings []string
	for _, name := range names {
		s := r.EntityStats[name]
		entityErrors = append(entityErrors, s.Errors...)
		entityWarnings = append(entityWarnings, s.Warnings...)
	}
	writeList("Entity Errors", entityErrors)
	writeList("Warnings", entityWarnings)

	return b.String()
}
