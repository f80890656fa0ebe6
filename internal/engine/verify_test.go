package engine_test

import (
	"context"
	"errors"
	"testing"

	"careload/internal/dialect"
	"careload/internal/engine"
	"careload/internal/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifyDefs() []*registry.EntityDefinition {
	return []*registry.EntityDefinition{
		{
			Name:       "patients",
			PrimaryKey: "id",
			Mapping:    []registry.FieldMap{{Source: "ID", Target: "id"}},
		},
		{
			Name: "medications",
			Mapping: []registry.FieldMap{
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "PAYER", Target: "payer_id"},
			},
			ForeignKeys: []registry.ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "payer_id", RefEntity: "payers", RefField: "id", Nullable: true},
			},
		},
	}
}

func TestVerify(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	d := dialect.Get("postgres")

	// patient_id: 5 orphans, no nulls. payer_id (nullable): clean, no null check.
	mock.ExpectQuery(d.OrphanCountQuery(testSchema, "medications", "patient_id", "patients", "id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(d.NullCountQuery(testSchema, "medications", "patient_id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(d.OrphanCountQuery(testSchema, "medications", "payer_id", "payers", "id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	violations, err := engine.Verify(context.Background(), db, d, testSchema, verifyDefs())
	require.NoError(t, err)
	require.Len(t, violations, 2, "one record per declared relationship")

	assert.Equal(t, "medications_patient", violations[0].Relationship)
	assert.Equal(t, 5, violations[0].OrphanedCount)
	assert.Equal(t, 0, violations[0].NullViolationCount)
	assert.False(t, violations[0].OK())

	assert.Equal(t, "medications_payer", violations[1].Relationship)
	assert.True(t, violations[1].OK(), "clean relationships still get a record")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerify_QueryErrorCollected(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	d := dialect.Get("postgres")

	mock.ExpectQuery(d.OrphanCountQuery(testSchema, "medications", "patient_id", "patients", "id")).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectQuery(d.NullCountQuery(testSchema, "medications", "patient_id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(d.OrphanCountQuery(testSchema, "medications", "payer_id", "payers", "id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	violations, err := engine.Verify(context.Background(), db, d, testSchema, verifyDefs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "medications_patient")
	assert.Len(t, violations, 2, "remaining relationships are still checked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
