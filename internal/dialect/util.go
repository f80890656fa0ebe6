package dialect

import (
	"fmt"
	"strings"
)

// GeneratePlaceholders builds a comma-separated placeholder list using the
// dialect's placeholder function for each index.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// DefaultNormalizeType is a default implementation for type normalization (lowercase).
func DefaultNormalizeType(sqlType string) string {
	return strings.ToLower(sqlType)
}

// DefaultQualifyTable joins schema and table with a dot, or returns the bare
// table name when no schema applies.
func DefaultQualifyTable(schema, table string) string {
	if schema == "" {
		return table
	}
	return fmt.Sprintf("%s.%s", schema, table)
}

// orphanCountSQL builds the standard anti-join count shared by every dialect:
// non-null child values with no matching parent row.
func orphanCountSQL(child, childCol, parent, parentCol string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM %s c LEFT JOIN %s p ON c.%s = p.%s WHERE c.%s IS NOT NULL AND p.%s IS NULL",
		child, parent, childCol, parentCol, childCol, parentCol)
}
