package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

type OracleDialect struct{}

func (d *OracleDialect) TablesQuery(schema string) string {
	// USER_TABLES lists tables owned by the connected user; the dummy clause
	// consumes the schema argument passed by standard callers.
	return `SELECT TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL`
}

func (d *OracleDialect) ColumnsQuery(schema string) string {
	return `
SELECT
    t.TABLE_NAME,
    t.COLUMN_NAME,
    CASE
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
        WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
        ELSE t.DATA_TYPE
    END,
    CASE WHEN t.NULLABLE = 'Y' THEN 'YES' ELSE 'NO' END,
    CASE WHEN p.CONSTRAINT_NAME IS NOT NULL THEN 'PRI' ELSE '' END,
    CASE WHEN t.IDENTITY_COLUMN = 'YES' THEN 'identity' ELSE '' END
FROM USER_TAB_COLUMNS t
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'P'
) p ON t.TABLE_NAME = p.TABLE_NAME AND t.COLUMN_NAME = p.COLUMN_NAME
WHERE :1 IS NOT NULL
ORDER BY t.TABLE_NAME, t.COLUMN_ID`
}

func (d *OracleDialect) ForeignKeysQuery(schema string) string {
	return `
SELECT
    c.TABLE_NAME,
    c.CONSTRAINT_NAME,
    cc.COLUMN_NAME,
    r.TABLE_NAME AS REF_TABLE,
    rcc.COLUMN_NAME AS REF_COLUMN
FROM USER_CONSTRAINTS c
JOIN USER_CONS_COLUMNS cc
    ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
    AND c.OWNER = cc.OWNER
JOIN USER_CONSTRAINTS r
    ON c.R_CONSTRAINT_NAME = r.CONSTRAINT_NAME
    AND c.R_OWNER = r.OWNER
JOIN USER_CONS_COLUMNS rcc
    ON r.CONSTRAINT_NAME = rcc.CONSTRAINT_NAME
    AND r.OWNER = rcc.OWNER
    AND cc.POSITION = rcc.POSITION
WHERE c.CONSTRAINT_TYPE = 'R'
AND :1 IS NOT NULL`
}

func (d *OracleDialect) InsertQuery(schema, table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QualifyTable(schema, table), strings.Join(cols, ", "), vals)
}

func (d *OracleDialect) TruncateQuery(schema, table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", d.QualifyTable(schema, table))
}

func (d *OracleDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifyTable(schema, table))
}

func (d *OracleDialect) OrphanCountQuery(schema, childTable, childColumn, parentTable, parentColumn string) string {
	return orphanCountSQL(d.QualifyTable(schema, childTable), childColumn,
		d.QualifyTable(schema, parentTable), parentColumn)
}

func (d *OracleDialect) NullCountQuery(schema, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", d.QualifyTable(schema, table), column)
}

func (d *OracleDialect) DisableFKChecks(tx *sql.Tx) error {
	// Note: ALTER in Oracle commits implicitly; callers must not rely on
	// rolling these back.
	rows, err := tx.Query("SELECT TABLE_NAME, CONSTRAINT_NAME FROM USER_CONSTRAINTS WHERE CONSTRAINT_TYPE = 'R' AND STATUS = 'ENABLED'")
	if err != nil {
		return err
	}
	defer rows.Close()

	var constraints []struct {
		Table string
		Name  string
	}
	for rows.Next() {
		var t, n string
		if err := rows.Scan(&t, &n); err != nil {
			return err
		}
		constraints = append(constraints, struct{ Table, Name string }{t, n})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range constraints {
		query := fmt.Sprintf("ALTER TABLE %s DISABLE CONSTRAINT %s", c.Table, c.Name)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to disable constraint %s on %s: %w", c.Name, c.Table, err)
		}
	}
	return nil
}

func (d *OracleDialect) EnableFKChecks(tx *sql.Tx) error {
	rows, err := tx.Query("SELECT TABLE_NAME, CONSTRAINT_NAME FROM USER_CONSTRAINTS WHERE CONSTRAINT_TYPE = 'R' AND STATUS = 'DISABLED'")
	if err != nil {
		return err
	}
	defer rows.Close()

	var constraints []struct {
		Table string
		Name  string
	}
	for rows.Next() {
		var t, n string
		if err := rows.Scan(&t, &n); err != nil {
			return err
		}
		constraints = append(constraints, struct{ Table, Name string }{t, n})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range constraints {
		query := fmt.Sprintf("ALTER TABLE %s ENABLE CONSTRAINT %s", c.Table, c.Name)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to enable constraint %s on %s: %w", c.Name, c.Table, err)
		}
	}
	return nil
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := strings.ToLower(sqlType)
	switch {
	case strings.Contains(s, "char"), strings.Contains(s, "clob"):
		return "varchar"
	case s == "integer":
		return "int"
	case s == "decimal", strings.Contains(s, "float"):
		return "decimal"
	case strings.Contains(s, "timestamp"):
		return "timestamp"
	case strings.Contains(s, "date"):
		return "date"
	default:
		return s
	}
}

func (d *OracleDialect) DefaultSchema() string {
	// Introspection runs against USER_* views, so no schema prefix applies.
	return ""
}

func (d *OracleDialect) QualifyTable(schema, table string) string {
	return DefaultQualifyTable(schema, table)
}
