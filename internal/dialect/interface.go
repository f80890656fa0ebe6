package dialect

import "database/sql"

// Dialect abstracts database-specific SQL for schema introspection, batch
// loading, and post-load verification. Introspection queries bind the target
// schema as their single placeholder argument; load and verification queries
// embed the qualified relation name directly.
type Dialect interface {
	// Metadata Queries (Schema Introspection)
	TablesQuery(schema string) string
	ColumnsQuery(schema string) string
	ForeignKeysQuery(schema string) string

	// Load Queries
	InsertQuery(schema, table string, cols []string) string
	TruncateQuery(schema, table string) string
	CountQuery(schema, table string) string

	// Verification Queries
	OrphanCountQuery(schema, childTable, childColumn, parentTable, parentColumn string) string
	NullCountQuery(schema, table, column string) string

	// Session Hooks - FK enforcement around maintenance operations
	DisableFKChecks(tx *sql.Tx) error
	EnableFKChecks(tx *sql.Tx) error

	// Helpers
	Placeholder(index int) string // Returns ?, $1, @p1, :1 etc.
	NormalizeType(sqlType string) string
	DefaultSchema() string
	QualifyTable(schema, table string) string
}
