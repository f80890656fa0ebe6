package schema_test

import (
	"context"
	"testing"

	"careload/internal/dialect"
	"careload/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *schema.Catalog) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, schema.NewCatalog(db, dialect.Get("postgres"), "clinical_data")
}

func TestDescribe(t *testing.T) {
	mock, catalog := newMock(t)
	d := dialect.Get("postgres")

	mock.ExpectPing()
	mock.ExpectQuery(d.TablesQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("patients").
			AddRow("encounters"))
	mock.ExpectQuery(d.ColumnsQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "udt_name", "is_nullable", "column_key", "column_default"}).
			AddRow("patients", "id", "varchar", "NO", "PRI", nil).
			AddRow("patients", "birth_date", "date", "YES", nil, nil).
			AddRow("encounters", "id", "varchar", "NO", "PRI", nil).
			AddRow("encounters", "patient_id", "varchar", "NO", nil, nil).
			AddRow("encounters", "seq", "int8", "NO", nil, "nextval('encounters_seq'::regclass)"))
	mock.ExpectQuery(d.ForeignKeysQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}).
			AddRow("encounters", "fk_enc_patient", "patient_id", "patients", "id"))

	infos, err := catalog.Describe(context.Background(), []string{"patients", "encounters"})
	require.NoError(t, err)
	require.Len(t, infos, 2)

	patients := infos["patients"]
	require.NotNil(t, patients.Col("id"))
	assert.True(t, patients.Col("id").IsPK)
	assert.Equal(t, []string{"id"}, patients.PrimaryKeys)
	assert.Equal(t, "date", patients.Col("birth_date").DataType)
	assert.True(t, patients.Col("birth_date").IsNullable)

	encounters := infos["encounters"]
	assert.True(t, encounters.Col("seq").IsAutoInc)
	assert.Equal(t, "bigint", encounters.Col("seq").DataType)
	require.Len(t, encounters.ForeignKeys, 1)
	assert.Equal(t, "patient_id", encounters.ForeignKeys[0].Column)
	assert.Equal(t, "patients", encounters.ForeignKeys[0].RefTable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribe_UnknownEntity(t *testing.T) {
	mock, catalog := newMock(t)
	d := dialect.Get("postgres")

	mock.ExpectPing()
	mock.ExpectQuery(d.TablesQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("patients"))

	_, err := catalog.Describe(context.Background(), []string{"patients", "martians"})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownEntity)
	assert.Contains(t, err.Error(), "martians")
}

func TestDescribe_StoreUnreachable(t *testing.T) {
	mock, catalog := newMock(t)

	mock.ExpectPing().WillReturnError(assert.AnError)

	_, err := catalog.Describe(context.Background(), []string{"patients"})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchemaUnavailable)
}

func TestDescribe_CaseInsensitiveRelationMatch(t *testing.T) {
	mock, catalog := newMock(t)
	d := dialect.Get("postgres")

	// Oracle-style stores fold unquoted identifiers to upper case.
	mock.ExpectPing()
	mock.ExpectQuery(d.TablesQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("PATIENTS"))
	mock.ExpectQuery(d.ColumnsQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "udt_name", "is_nullable", "column_key", "column_default"}).
			AddRow("PATIENTS", "ID", "varchar", "NO", "PRI", nil))
	mock.ExpectQuery(d.ForeignKeysQuery("clinical_data")).
		WithArgs("clinical_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}))

	infos, err := catalog.Describe(context.Background(), []string{"patients"})
	require.NoError(t, err)
	require.NotNil(t, infos["patients"])
	assert.NotNil(t, infos["patients"].Col("id"))
}
