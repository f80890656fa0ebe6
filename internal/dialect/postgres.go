package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

type PostgresDialect struct{}

func (d *PostgresDialect) TablesQuery(schema string) string {
	// use $1 placeholder
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = $1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *PostgresDialect) ColumnsQuery(schema string) string {
	// UDT_NAME is more precise than DATA_TYPE for Postgres.
	// Subquery fetches PRIMARY KEY membership; COLUMN_DEFAULT exposes
	// nextval(...) defaults so serial columns can be detected.
	return `SELECT
    c.table_name,
    c.column_name,
    c.udt_name,
    c.is_nullable,
    (SELECT 'PRI' FROM information_schema.table_constraints tc
     JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name
     WHERE tc.constraint_type = 'PRIMARY KEY'
     AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1) AS column_key,
    c.column_default
FROM information_schema.columns c
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`
}

func (d *PostgresDialect) ForeignKeysQuery(schema string) string {
	return `SELECT kcu.table_name, kcu.constraint_name, kcu.column_name, ccu.table_name AS referenced_table_name, ccu.column_name AS referenced_column_name FROM information_schema.key_column_usage kcu JOIN information_schema.constraint_column_usage ccu ON kcu.constraint_name = ccu.constraint_name JOIN information_schema.table_constraints tc ON kcu.constraint_name = tc.constraint_name WHERE kcu.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'`
}

func (d *PostgresDialect) InsertQuery(schema, table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QualifyTable(schema, table), strings.Join(cols, ", "), vals)
}

func (d *PostgresDialect) TruncateQuery(schema, table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s CASCADE", d.QualifyTable(schema, table))
}

func (d *PostgresDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifyTable(schema, table))
}

func (d *PostgresDialect) OrphanCountQuery(schema, childTable, childColumn, parentTable, parentColumn string) string {
	return orphanCountSQL(d.QualifyTable(schema, childTable), childColumn,
		d.QualifyTable(schema, parentTable), parentColumn)
}

func (d *PostgresDialect) NullCountQuery(schema, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", d.QualifyTable(schema, table), column)
}

func (d *PostgresDialect) DisableFKChecks(tx *sql.Tx) error {
	// session_replication_role requires elevated privileges; fall back to
	// deferring constraints until commit.
	if _, err := tx.Exec("SET session_replication_role = 'replica'"); err != nil {
		_, err2 := tx.Exec("SET CONSTRAINTS ALL DEFERRED")
		if err2 != nil {
			return fmt.Errorf("replication_role failed: %v, deferred failed: %v", err, err2)
		}
	}
	return nil
}

func (d *PostgresDialect) EnableFKChecks(tx *sql.Tx) error {
	_, err := tx.Exec("SET session_replication_role = 'origin'")
	return err
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "int4", "int2":
		return "int"
	case "int8":
		return "bigint"
	case "float4":
		return "float"
	case "float8":
		return "double"
	case "bpchar":
		return "char"
	case "timestamptz":
		return "timestamp"
	default:
		return t
	}
}

func (d *PostgresDialect) DefaultSchema() string {
	return "public"
}

func (d *PostgresDialect) QualifyTable(schema, table string) string {
	return DefaultQualifyTable(schema, table)
}
