package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

type MysqlDialect struct{}

func (d *MysqlDialect) TablesQuery(schema string) string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *MysqlDialect) ColumnsQuery(schema string) string {
	return `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY, EXTRA FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) ForeignKeysQuery(schema string) string {
	return `SELECT TABLE_NAME, CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL`
}

func (d *MysqlDialect) InsertQuery(schema, table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QualifyTable(schema, table), strings.Join(cols, ", "), vals)
}

func (d *MysqlDialect) TruncateQuery(schema, table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", d.QualifyTable(schema, table))
}

func (d *MysqlDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifyTable(schema, table))
}

func (d *MysqlDialect) OrphanCountQuery(schema, childTable, childColumn, parentTable, parentColumn string) string {
	return orphanCountSQL(d.QualifyTable(schema, childTable), childColumn,
		d.QualifyTable(schema, parentTable), parentColumn)
}

func (d *MysqlDialect) NullCountQuery(schema, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", d.QualifyTable(schema, table), column)
}

func (d *MysqlDialect) DisableFKChecks(tx *sql.Tx) error {
	_, err := tx.Exec("SET FOREIGN_KEY_CHECKS = 0")
	return err
}

func (d *MysqlDialect) EnableFKChecks(tx *sql.Tx) error {
	_, err := tx.Exec("SET FOREIGN_KEY_CHECKS = 1")
	return err
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "datetime":
		return "timestamp"
	case "tinyint":
		// tinyint(1) is the conventional MySQL boolean
		return "boolean"
	default:
		return t
	}
}

func (d *MysqlDialect) DefaultSchema() string {
	// MySQL schema equals the database name; the caller resolves it from the
	// connection with SELECT DATABASE().
	return ""
}

func (d *MysqlDialect) QualifyTable(schema, table string) string {
	return DefaultQualifyTable(schema, table)
}
