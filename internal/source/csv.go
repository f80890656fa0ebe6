// Package source reads raw tabular extracts. The contract is minimal: a
// header row naming the columns, then data rows.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrUnreadable means the extract could not be opened or parsed at all.
	ErrUnreadable = errors.New("source unreadable")
	// ErrEmpty means the extract has a header but no data rows. Non-fatal:
	// the entity loads as zero rows.
	ErrEmpty = errors.New("source empty")
)

// Extract is one raw tabular extract held in memory for the duration of a
// transform pass.
type Extract struct {
	Header []string
	Rows   [][]string
}

// ReadCSV reads a CSV extract from path. Short rows are tolerated (missing
// trailing fields read as absent); the header row is required.
func ReadCSV(path string) (*Extract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s has no header row", ErrUnreadable, path)
		}
		return nil, fmt.Errorf("%w: failed to read header of %s: %v", ErrUnreadable, path, err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrUnreadable, path, err)
		}
		rows = append(rows, rec)
	}

	if len(rows) == 0 {
		return &Extract{Header: header}, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return &Extract{Header: header, Rows: rows}, nil
}
