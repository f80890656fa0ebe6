package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"careload/internal/dialect"
	"careload/internal/engine"
	"careload/internal/registry"
	"careload/internal/transform"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = "clinical_data"

func patientsDef() *registry.EntityDefinition {
	return &registry.EntityDefinition{
		Name:       "patients",
		Source:     "patients.csv",
		PrimaryKey: "id",
		Mapping: []registry.FieldMap{
			{Source: "ID", Target: "id"},
			{Source: "FIRST", Target: "first_name"},
		},
	}
}

func patientRows(n int) []transform.Row {
	rows := make([]transform.Row, n)
	for i := range rows {
		rows[i] = transform.Row{"id": fmt.Sprintf("p%d", i), "first_name": "Ada"}
	}
	return rows
}

func newLoader(t *testing.T, cfg engine.LoadConfig) (sqlmock.Sqlmock, *engine.Loader) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, &engine.Loader{
		DB:      db,
		Dialect: dialect.Get("postgres"),
		Schema:  testSchema,
		Config:  cfg,
	}
}

func expectBatch(mock sqlmock.Sqlmock, query string, rows int) {
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(query)
	for i := 0; i < rows; i++ {
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

func TestLoadEntity(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{BatchSize: 2})
	d := dialect.Get("postgres")
	def := patientsDef()
	query := d.InsertQuery(testSchema, def.Name, def.TargetFields())

	expectBatch(mock, query, 2)
	expectBatch(mock, query, 1)
	mock.ExpectQuery(d.CountQuery(testSchema, def.Name)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(context.Background(), def, patientRows(3), stats, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.BatchCount)
	assert.Equal(t, 2, stats.AttemptsTotal)
	assert.Equal(t, 3, stats.LoadedRowCount)
	assert.Empty(t, stats.Errors)
	assert.Empty(t, stats.Warnings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntity_RetryThenSuccess(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{
		BatchSize:  10,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
	d := dialect.Get("postgres")
	def := patientsDef()
	query := d.InsertQuery(testSchema, def.Name, def.TargetFields())

	// First attempt fails mid-batch and rolls back; second commits.
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(query)
	prep.ExpectExec().WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	expectBatch(mock, query, 2)
	mock.ExpectQuery(d.CountQuery(testSchema, def.Name)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(context.Background(), def, patientRows(2), stats, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.AttemptsTotal)
	assert.Equal(t, 2, stats.LoadedRowCount)
	assert.Empty(t, stats.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntity_ExhaustedRetriesSkipsBatch(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{
		BatchSize:  2,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	d := dialect.Get("postgres")
	def := patientsDef()
	query := d.InsertQuery(testSchema, def.Name, def.TargetFields())

	// Batch 1 fails on both attempts.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		prep := mock.ExpectPrepare(query)
		prep.ExpectExec().WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()
	}
	// Batch 2 still runs and succeeds.
	expectBatch(mock, query, 1)
	mock.ExpectQuery(d.CountQuery(testSchema, def.Name)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(context.Background(), def, patientRows(3), stats, nil)
	require.NoError(t, err, "a failed batch must not abort the entity")

	assert.Equal(t, 3, stats.AttemptsTotal)
	assert.Equal(t, 1, stats.LoadedRowCount)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "after 2 attempts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntity_TruncateFailureIsFatal(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{TruncateBeforeLoad: true})
	d := dialect.Get("postgres")
	def := patientsDef()

	mock.ExpectExec(d.TruncateQuery(testSchema, def.Name)).
		WillReturnError(errors.New("permission denied"))

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(context.Background(), def, patientRows(1), stats, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrTruncateFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntity_CountMismatchIsWarning(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{BatchSize: 10})
	d := dialect.Get("postgres")
	def := patientsDef()
	query := d.InsertQuery(testSchema, def.Name, def.TargetFields())

	expectBatch(mock, query, 2)
	// Pre-existing rows: the store count disagrees with what we wrote.
	mock.ExpectQuery(d.CountQuery(testSchema, def.Name)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(context.Background(), def, patientRows(2), stats, nil)
	require.NoError(t, err, "a count mismatch is a warning, not a failure")

	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "row count mismatch")
	assert.Equal(t, 7, stats.LoadedRowCount, "the store count is authoritative")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntity_CancelledBeforeBatch(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{BatchSize: 10})
	def := patientsDef()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(ctx, def, patientRows(1), stats, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "not attempted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntity_NoRows(t *testing.T) {
	mock, loader := newLoader(t, engine.LoadConfig{})
	d := dialect.Get("postgres")
	def := patientsDef()

	mock.ExpectQuery(d.CountQuery(testSchema, def.Name)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	stats := &engine.EntityLoadStats{EntityName: def.Name}
	err := loader.LoadEntity(context.Background(), def, nil, stats, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.BatchCount)
	assert.Equal(t, 0, stats.LoadedRowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
