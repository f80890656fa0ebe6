package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"careload/internal/dialect"
)

var (
	// ErrSchemaUnavailable means the target store could not be reached or
	// introspected at all.
	ErrSchemaUnavailable = errors.New("target schema unavailable")
	// ErrUnknownEntity means a requested entity has no corresponding relation.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Catalog introspects the target store. It is read-only; Describe never
// mutates anything.
type Catalog struct {
	db     *sql.DB
	d      dialect.Dialect
	schema string
}

func NewCatalog(db *sql.DB, d dialect.Dialect, schemaName string) *Catalog {
	if schemaName == "" {
		schemaName = d.DefaultSchema()
	}
	return &Catalog{db: db, d: d, schema: schemaName}
}

// Describe returns a SchemaInfo snapshot for each requested entity, keyed by
// the requested name. Fails with ErrSchemaUnavailable when the store cannot
// be queried and ErrUnknownEntity when a requested entity has no relation.
func (c *Catalog) Describe(ctx context.Context, entityNames []string) (map[string]*SchemaInfo, error) {
	if err := c.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaUnavailable, err)
	}

	// Normalized (upper-case) relation name -> info, for case-insensitive
	// lookups across stores that fold identifier case differently.
	infoMap := make(map[string]*SchemaInfo)

	rows, err := c.db.QueryContext(ctx, c.d.TablesQuery(c.schema), c.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tables: %v", ErrSchemaUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: failed to scan table name: %v", ErrSchemaUnavailable, err)
		}
		infoMap[strings.ToUpper(name)] = &SchemaInfo{Entity: name}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating tables: %v", ErrSchemaUnavailable, err)
	}

	result := make(map[string]*SchemaInfo, len(entityNames))
	for _, name := range entityNames {
		info, ok := infoMap[strings.ToUpper(name)]
		if !ok {
			return nil, fmt.Errorf("%w: no relation for entity %q in schema %q", ErrUnknownEntity, name, c.schema)
		}
		result[name] = info
	}

	if err := c.describeColumns(ctx, infoMap); err != nil {
		return nil, err
	}
	if err := c.describeForeignKeys(ctx, infoMap); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Catalog) describeColumns(ctx context.Context, infoMap map[string]*SchemaInfo) error {
	colRows, err := c.db.QueryContext(ctx, c.d.ColumnsQuery(c.schema), c.schema)
	if err != nil {
		return fmt.Errorf("%w: failed to query columns: %v", ErrSchemaUnavailable, err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var tName, cName, dType, isNull, cKey, extra sql.NullString
		if err := colRows.Scan(&tName, &cName, &dType, &isNull, &cKey, &extra); err != nil {
			return fmt.Errorf("%w: failed to scan column (table: %s): %v", ErrSchemaUnavailable, tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}

		info, ok := infoMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}

		isPK := strings.Contains(cKey.String, "PRI")
		isAutoInc := false
		if extra.Valid {
			extraLower := strings.ToLower(extra.String)
			isAutoInc = strings.Contains(extraLower, "auto_increment") ||
				strings.Contains(extraLower, "identity") ||
				strings.Contains(extraLower, "nextval")
		}

		info.Columns = append(info.Columns, &Column{
			Name:       cName.String,
			DataType:   c.d.NormalizeType(dType.String),
			IsNullable: isNull.String == "YES",
			IsPK:       isPK,
			IsAutoInc:  isAutoInc,
		})
		if isPK {
			info.PrimaryKeys = append(info.PrimaryKeys, cName.String)
		}
	}
	if err := colRows.Err(); err != nil {
		return fmt.Errorf("%w: error iterating columns: %v", ErrSchemaUnavailable, err)
	}
	return nil
}

func (c *Catalog) describeForeignKeys(ctx context.Context, infoMap map[string]*SchemaInfo) error {
	fkRows, err := c.db.QueryContext(ctx, c.d.ForeignKeysQuery(c.schema), c.schema)
	if err != nil {
		return fmt.Errorf("%w: failed to query foreign keys: %v", ErrSchemaUnavailable, err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tName, cConst, cName, rTable, rCol sql.NullString
		if err := fkRows.Scan(&tName, &cConst, &cName, &rTable, &rCol); err != nil {
			return fmt.Errorf("%w: failed to scan foreign key: %v", ErrSchemaUnavailable, err)
		}
		if !tName.Valid || !rTable.Valid {
			continue
		}
		info, ok := infoMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}
		refName := rTable.String
		if ref, ok := infoMap[strings.ToUpper(rTable.String)]; ok {
			refName = ref.Entity // original-case name
		}
		info.ForeignKeys = append(info.ForeignKeys, &ForeignKey{
			Column:    cName.String,
			RefTable:  refName,
			RefColumn: rCol.String,
		})
	}
	if err := fkRows.Err(); err != nil {
		return fmt.Errorf("%w: error iterating foreign keys: %v", ErrSchemaUnavailable, err)
	}
	return nil
}
