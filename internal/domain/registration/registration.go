// Package registration parses the registration sheet that maps leaderboard
// usernames to a full name and a level.
package registration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/starboard/internal/domain/model"
)

// Default header names of the registration sheet.
const (
	DefaultUsernameColumn = "Username"
	DefaultFullNameColumn = "Full Name"
	DefaultLevelColumn    = "Level"
)

// Columns names the header cells the parser looks for.
type Columns struct {
	Username string
	FullName string
	Level    string
}

// DefaultColumns returns the stock header names.
func DefaultColumns() Columns {
	return Columns{
		Username: DefaultUsernameColumn,
		FullName: DefaultFullNameColumn,
		Level:    DefaultLevelColumn,
	}
}

// Index maps a display username to its registration entry.
type Index struct {
	entries map[string]model.RegistrationEntry
	missing []string
}

// Empty returns an index with no entries.
func Empty() Index {
	return Index{entries: map[string]model.RegistrationEntry{}}
}

// Lookup returns the entry registered for name. The match is exact.
func (i Index) Lookup(name string) (model.RegistrationEntry, bool) {
	e, ok := i.entries[name]
	return e, ok
}

// Len returns the number of usernames in the index.
func (i Index) Len() int { return len(i.entries) }

// MissingColumns lists required header names that were not found.
func (i Index) MissingColumns() []string { return i.missing }

// Parse reads a registration sheet. A header without one of the required
// columns yields an empty index rather than an error; rows that are too short,
// or whose username is blank, are skipped. Later rows win over earlier ones.
func Parse(r io.Reader, cols Columns) (Index, error) {
	idx := Empty()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return idx, nil
	}
	if err != nil {
		return idx, fmt.Errorf("%w: header: %w", ErrParse, err)
	}

	userCol := columnIndex(header, cols.Username)
	nameCol := columnIndex(header, cols.FullName)
	levelCol := columnIndex(header, cols.Level)
	for _, c := range []struct {
		name string
		at   int
	}{{cols.Username, userCol}, {cols.FullName, nameCol}, {cols.Level, levelCol}} {
		if c.at < 0 {
			idx.missing = append(idx.missing, c.name)
		}
	}
	if len(idx.missing) > 0 {
		return idx, nil
	}
	need := max(userCol, nameCol, levelCol) + 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return idx, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if len(record) < need {
			continue
		}
		user := Clean(record[userCol])
		if user == "" {
			continue
		}
		idx.entries[user] = model.RegistrationEntry{
			FullName: Clean(record[nameCol]),
			Level:    Clean(record[levelCol]),
		}
	}
	return idx, nil
}

// Clean strips one pair of surrounding quote characters and then surrounding
// whitespace. Case and inner spacing are left alone.
func Clean(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, `"`)
	v = strings.TrimSuffix(v, `"`)
	return strings.TrimSpace(v)
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if Clean(h) == name {
			return i
		}
	}
	return -1
}
