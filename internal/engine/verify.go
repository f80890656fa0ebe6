package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"careload/internal/dialect"
	"careload/internal/registry"
)

// Violation reports the post-load integrity status of one declared FK
// relationship. One record exists per declaration even when both counts are
// zero, so "checked and clean" is distinguishable from "not checked".
type Violation struct {
	Relationship       string
	ChildEntity        string
	ChildField         string
	ParentEntity       string
	ParentField        string
	OrphanedCount      int
	NullViolationCount int
}

func (v Violation) OK() bool {
	return v.OrphanedCount == 0 && v.NullViolationCount == 0
}

// Verify re-scans every FK relationship declared across defs: non-null child
// values with no matching parent row (orphans), plus null values in
// non-nullable keys. It runs read-only against the final state of the store
// and always returns one Violation per declaration; relationships whose
// queries failed are returned with the joined error.
func Verify(ctx context.Context, db *sql.DB, d dialect.Dialect, schemaName string, defs []*registry.EntityDefinition) ([]Violation, error) {
	var violations []Violation
	var errs []error

	for _, def := range defs {
		for _, fk := range def.ForeignKeys {
			v := Violation{
				Relationship: registry.Relationship(def.Name, fk),
				ChildEntity:  def.Name,
				ChildField:   fk.Field,
				ParentEntity: fk.RefEntity,
				ParentField:  fk.RefField,
			}

			query := d.OrphanCountQuery(schemaName, def.Name, fk.Field, fk.RefEntity, fk.RefField)
			if err := db.QueryRowContext(ctx, query).Scan(&v.OrphanedCount); err != nil {
				errs = append(errs, fmt.Errorf("orphan check %s: %w", v.Relationship, err))
			}

			if !fk.Nullable {
				query := d.NullCountQuery(schemaName, def.Name, fk.Field)
				if err := db.QueryRowContext(ctx, query).Scan(&v.NullViolationCount); err != nil {
					errs = append(errs, fmt.Errorf("null check %s: %w", v.Relationship, err))
				}
			}

			violations = append(violations, v)
		}
	}

	return violations, errors.Join(errs...)
}
