package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"careload/internal/dialect"
	"careload/internal/engine"
	"careload/internal/registry"
	"careload/internal/source"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDefs() []*registry.EntityDefinition {
	return []*registry.EntityDefinition{
		{
			Name:       "patients",
			Source:     "patients.csv",
			PrimaryKey: "id",
			Mapping: []registry.FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "FIRST", Target: "first_name"},
			},
		},
		{
			Name:       "encounters",
			Source:     "encounters.csv",
			PrimaryKey: "id",
			Mapping: []registry.FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "PATIENT", Target: "patient_id"},
			},
			ForeignKeys: []registry.ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
			},
		},
	}
}

func writeExtracts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"patients.csv":   "ID,FIRST\np1,Ada\np2,Grace\n",
		"encounters.csv": "ID,PATIENT\ne1,p1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func expectDescribe(mock sqlmock.Sqlmock, d dialect.Dialect) {
	mock.ExpectPing()
	mock.ExpectQuery(d.TablesQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("patients").
			AddRow("encounters"))
	mock.ExpectQuery(d.ColumnsQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "udt_name", "is_nullable", "column_key", "column_default"}).
			AddRow("patients", "id", "varchar", "NO", "PRI", nil).
			AddRow("patients", "first_name", "varchar", "YES", nil, nil).
			AddRow("encounters", "id", "varchar", "NO", "PRI", nil).
			AddRow("encounters", "patient_id", "varchar", "NO", nil, nil))
	mock.ExpectQuery(d.ForeignKeysQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}).
			AddRow("encounters", "fk_enc_patient", "patient_id", "patients", "id"))
}

func TestRun(t *testing.T) {
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	defer db.Close()
	d := dialect.Get("postgres")
	defs := runDefs()

	expectDescribe(mock, d)

	// patients (level 0), then encounters (level 1).
	expectBatch(mock, d.InsertQuery(testSchema, "patients", defs[0].TargetFields()), 2)
	mock.ExpectQuery(d.CountQuery(testSchema, "patients")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	expectBatch(mock, d.InsertQuery(testSchema, "encounters", defs[1].TargetFields()), 1)
	mock.ExpectQuery(d.CountQuery(testSchema, "encounters")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(d.OrphanCountQuery(testSchema, "encounters", "patient_id", "patients", "id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(d.NullCountQuery(testSchema, "encounters", "patient_id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	var finished []string
	runner := &engine.Runner{
		DB:           db,
		Dialect:      d,
		Schema:       testSchema,
		SourceDir:    writeExtracts(t),
		OnEntityDone: func(entity string) { finished = append(finished, entity) },
	}

	report, err := runner.Run(context.Background(), defs)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.TotalLoaded())
	assert.Equal(t, []string{"patients", "encounters"}, finished)
	require.Len(t, report.Violations, 1)
	assert.True(t, report.Violations[0].OK())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_EmptyExtractIsWarning(t *testing.T) {
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	defer db.Close()
	d := dialect.Get("postgres")
	defs := runDefs()[:1]

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patients.csv"), []byte("ID,FIRST\n"), 0o644))

	mock.ExpectPing()
	mock.ExpectQuery(d.TablesQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("patients"))
	mock.ExpectQuery(d.ColumnsQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "udt_name", "is_nullable", "column_key", "column_default"}).
			AddRow("patients", "id", "varchar", "NO", "PRI", nil))
	mock.ExpectQuery(d.ForeignKeysQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}))

	runner := &engine.Runner{DB: db, Dialect: d, Schema: testSchema, SourceDir: dir}
	report, err := runner.Run(context.Background(), defs)
	require.NoError(t, err, "an empty extract loads zero rows, it does not fail the run")

	stats := report.EntityStats["patients"]
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.LoadedRowCount)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "no data rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_MissingExtractIsFatal(t *testing.T) {
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	defer db.Close()
	d := dialect.Get("postgres")
	defs := runDefs()[:1]

	mock.ExpectPing()
	mock.ExpectQuery(d.TablesQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("patients"))
	mock.ExpectQuery(d.ColumnsQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "udt_name", "is_nullable", "column_key", "column_default"}).
			AddRow("patients", "id", "varchar", "NO", "PRI", nil))
	mock.ExpectQuery(d.ForeignKeysQuery(testSchema)).
		WithArgs(testSchema).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}))

	runner := &engine.Runner{DB: db, Dialect: d, Schema: testSchema, SourceDir: t.TempDir()}
	report, err := runner.Run(context.Background(), defs)
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrUnreadable)
	require.NotNil(t, report, "the report is returned even on fatal errors")
	assert.NotEmpty(t, report.OverallErrors)
}

func TestRun_InvalidDefinitions(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	defs := []*registry.EntityDefinition{{Name: "patients"}} // no mapping
	runner := &engine.Runner{DB: db, Dialect: dialect.Get("postgres"), Schema: testSchema}

	report, err := runner.Run(context.Background(), defs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrSchemaMismatch))
	require.NotNil(t, report)
}
