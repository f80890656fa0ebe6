// Package transform cleans raw extract rows into typed rows ready for batch
// loading. Cleaning never fails a whole extract over a single bad row: field
// coercion failures null the field, and only rows missing their primary key
// are dropped. Every drop and adjustment is recorded as a warning.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"careload/internal/registry"
	"careload/internal/schema"
	"careload/internal/source"
)

// Row maps target field name to a typed value (nil for SQL NULL). Rows exist
// only transiently between cleaning and batch loading.
type Row map[string]any

// Warning kinds recorded during cleaning.
const (
	WarnTypeCoercion   = "type_coercion_failure"
	WarnPrimaryKeyNull = "primary_key_null"
)

type Warning struct {
	Kind     string
	Entity   string
	Field    string // set for coercion failures
	RawValue string // set for coercion failures
	RowIndex int    // 1-based data row index, set for dropped rows
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnTypeCoercion:
		return fmt.Sprintf("%s.%s: cannot coerce %q to declared type, set to NULL", w.Entity, w.Field, w.RawValue)
	case WarnPrimaryKeyNull:
		return fmt.Sprintf("%s: dropped row %d with null primary key", w.Entity, w.RowIndex)
	default:
		return fmt.Sprintf("%s: %s", w.Entity, w.Kind)
	}
}

// Clean renames extract columns per the entity mapping (header names matched
// case-insensitively), coerces each value to the declared target type, and
// drops rows whose primary key came out null. Unmapped extract columns are
// ignored; mapped columns missing from the extract leave their target null.
func Clean(def *registry.EntityDefinition, info *schema.SchemaInfo, ex *source.Extract) ([]Row, []Warning) {
	var warnings []Warning

	// Resolve each mapping entry to a header position once.
	colIdx := make([]int, len(def.Mapping))
	for i, m := range def.Mapping {
		colIdx[i] = -1
		for j, h := range ex.Header {
			if strings.EqualFold(strings.TrimSpace(h), m.Source) {
				colIdx[i] = j
				break
			}
		}
	}

	rows := make([]Row, 0, len(ex.Rows))
	for ri, raw := range ex.Rows {
		row := make(Row, len(def.Mapping))
		for i, m := range def.Mapping {
			j := colIdx[i]
			if j < 0 || j >= len(raw) {
				row[m.Target] = nil
				continue
			}
			val := strings.TrimSpace(raw[j])
			if val == "" {
				row[m.Target] = nil
				continue
			}

			dataType := ""
			if col := info.Col(m.Target); col != nil {
				dataType = col.DataType
			}
			typed, err := Coerce(val, dataType)
			if err != nil {
				warnings = append(warnings, Warning{
					Kind:     WarnTypeCoercion,
					Entity:   def.Name,
					Field:    m.Target,
					RawValue: val,
					RowIndex: ri + 1,
				})
				row[m.Target] = nil
				continue
			}
			row[m.Target] = typed
		}

		if def.PrimaryKey != "" && row[def.PrimaryKey] == nil {
			warnings = append(warnings, Warning{
				Kind:     WarnPrimaryKeyNull,
				Entity:   def.Name,
				RowIndex: ri + 1,
			})
			continue
		}
		rows = append(rows, row)
	}

	return rows, warnings
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce parses a raw string into the Go value for a normalized column type.
// Unknown types pass through as strings.
func Coerce(raw, dataType string) (any, error) {
	switch dataType {
	case "date":
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			// Some extracts carry full timestamps in date columns.
			if t2, err2 := parseTimestamp(raw); err2 == nil {
				return time.Date(t2.Year(), t2.Month(), t2.Day(), 0, 0, 0, 0, time.UTC), nil
			}
			return nil, err
		}
		return t, nil
	case "timestamp", "datetime":
		return parseTimestamp(raw)
	case "int", "integer", "bigint", "smallint", "tinyint", "mediumint":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// Extracts frequently render integral counts as "12.0".
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil || f != float64(int64(f)) {
				return nil, err
			}
			return int64(f), nil
		}
		return n, nil
	case "numeric", "decimal", "float", "double", "real":
		return strconv.ParseFloat(raw, 64)
	case "boolean", "bool":
		return parseBool(raw)
	default:
		return raw, nil
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}
