package schema

import "strings"

// SchemaInfo is a read-only snapshot of one target relation, taken from the
// store at run start and never refreshed during a run.
type SchemaInfo struct {
	Entity      string
	Columns     []*Column
	PrimaryKeys []string
	ForeignKeys []*ForeignKey
}

type Column struct {
	Name       string
	DataType   string // normalized by the dialect
	IsNullable bool
	IsPK       bool
	IsAutoInc  bool
}

// ForeignKey as declared in the target store (distinct from the registry's
// declarations, which drive scheduling).
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Col returns the column with the given name, matched case-insensitively.
func (s *SchemaInfo) Col(name string) *Column {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (s *SchemaInfo) IsPrimaryKey(name string) bool {
	for _, pk := range s.PrimaryKeys {
		if strings.EqualFold(pk, name) {
			return true
		}
	}
	return false
}
