package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrSchemaMismatch marks an entity definition whose mapping cannot satisfy
// the declared keys, detected at validation time rather than load time.
var ErrSchemaMismatch = errors.New("schema mismatch")

// FieldMap maps one source extract column to one target column. Order matters:
// batch inserts bind values in mapping order.
type FieldMap struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// ForeignKey declares that Field references RefEntity.RefField. Non-nullable
// keys constrain load order; nullable keys are verified but not ordered on.
type ForeignKey struct {
	Field     string `mapstructure:"field"`
	RefEntity string `mapstructure:"references"`
	RefField  string `mapstructure:"ref_field"`
	Nullable  bool   `mapstructure:"nullable"`
}

// EntityDefinition is the declarative load spec for one entity. Definitions
// are immutable once loaded into the registry.
type EntityDefinition struct {
	Name        string       `mapstructure:"name"`
	Source      string       `mapstructure:"source"` // extract file name, resolved against the source dir
	Mapping     []FieldMap   `mapstructure:"mapping"`
	PrimaryKey  string       `mapstructure:"primary_key"` // empty when the target PK is store-generated
	ForeignKeys []ForeignKey `mapstructure:"foreign_keys"`
}

// TargetFor returns the target field for a source column, matched
// case-insensitively.
func (d *EntityDefinition) TargetFor(sourceField string) (string, bool) {
	for _, m := range d.Mapping {
		if strings.EqualFold(m.Source, sourceField) {
			return m.Target, true
		}
	}
	return "", false
}

// TargetFields returns the target columns in mapping order.
func (d *EntityDefinition) TargetFields() []string {
	fields := make([]string, len(d.Mapping))
	for i, m := range d.Mapping {
		fields[i] = m.Target
	}
	return fields
}

func (d *EntityDefinition) hasTarget(field string) bool {
	for _, m := range d.Mapping {
		if m.Target == field {
			return true
		}
	}
	return false
}

// Relationship names a FK declaration for reports: child entity plus the
// referencing field with its _id suffix trimmed.
func Relationship(entity string, fk ForeignKey) string {
	return fmt.Sprintf("%s_%s", entity, strings.TrimSuffix(fk.Field, "_id"))
}

// Load reads entity definitions from a YAML file. Entities found in the file
// replace the built-in definition of the same name; unknown names are
// appended after the built-ins in file order.
func Load(path string) ([]*EntityDefinition, error) {
	defs := Builtin()
	if path == "" {
		return defs, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}

	var overrides []*EntityDefinition
	if err := v.UnmarshalKey("entities", &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse entities in %s: %w", path, err)
	}

	byName := make(map[string]int, len(defs))
	for i, d := range defs {
		byName[d.Name] = i
	}
	for _, o := range overrides {
		if o.Source == "" {
			o.Source = o.Name + ".csv"
		}
		if i, ok := byName[o.Name]; ok {
			defs[i] = o
		} else {
			defs = append(defs, o)
		}
	}
	return defs, nil
}

// Validate checks structural consistency of a definition set: unique names,
// mapped primary keys, FK fields present in the mapping, and FK references
// resolvable within the set.
func Validate(defs []*EntityDefinition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("%w: entity with empty name", ErrSchemaMismatch)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate entity %q", ErrSchemaMismatch, d.Name)
		}
		seen[d.Name] = true
		if len(d.Mapping) == 0 {
			return fmt.Errorf("%w: entity %q has no field mapping", ErrSchemaMismatch, d.Name)
		}
		if d.PrimaryKey != "" && !d.hasTarget(d.PrimaryKey) {
			return fmt.Errorf("%w: entity %q declares primary key %q but no mapping targets it",
				ErrSchemaMismatch, d.Name, d.PrimaryKey)
		}
		for _, fk := range d.ForeignKeys {
			if !d.hasTarget(fk.Field) {
				return fmt.Errorf("%w: entity %q declares foreign key on %q but no mapping targets it",
					ErrSchemaMismatch, d.Name, fk.Field)
			}
		}
	}
	for _, d := range defs {
		for _, fk := range d.ForeignKeys {
			if !seen[fk.RefEntity] {
				return fmt.Errorf("%w: entity %q references unknown entity %q",
					ErrSchemaMismatch, d.Name, fk.RefEntity)
			}
		}
	}
	return nil
}

// Filter returns the definitions whose names appear in wanted (matched
// case-insensitively), preserving declaration order. An empty filter keeps
// everything.
func Filter(defs []*EntityDefinition, wanted []string) ([]*EntityDefinition, error) {
	if len(wanted) == 0 {
		return defs, nil
	}
	req := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		req[strings.ToLower(w)] = true
	}
	var out []*EntityDefinition
	for _, d := range defs {
		if req[strings.ToLower(d.Name)] {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no matching entities found for inputs: %v", wanted)
	}
	return out, nil
}
