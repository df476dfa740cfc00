// Package export renders the visible leaderboard as a chart image or a
// spreadsheet.
package export

import (
	"fmt"
	"io"
	"slices"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/ranking"
)

// Supported formats.
const (
	FormatPNG  = "png"
	FormatXLSX = "xlsx"
)

// Download file names.
const (
	FilePNG  = "leaderboard.png"
	FileXLSX = "leaderboard.xlsx"
)

// Sheet is one titled table of ranked rows.
type Sheet struct {
	Title string
	Rows  []ranking.RankedRow
}

// Board is everything an export needs: the year labels that line up with
// each row's PerYear, which of them count, and the tables to draw.
type Board struct {
	Years    []string
	Selected func(year string) bool
	Detailed bool
	Sheets   []Sheet
}

func (b Board) selected(year string) bool {
	return b.Selected == nil || b.Selected(year)
}

// Rows flattens every sheet into one ranking. A member only appears in one
// sheet, so nothing is counted twice.
func (b Board) Rows() []model.Row {
	var rows []model.Row
	for _, s := range b.Sheets {
		for _, r := range s.Rows {
			rows = append(rows, r.Row)
		}
	}
	return ranking.Sort(rows)
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// FileName returns the attachment name of a format.
func FileName(format string) string {
	if format == FormatXLSX {
		return FileXLSX
	}
	return FilePNG
}

// Write renders b in the given format.
func Write(w io.Writer, format string, b Board) error {
	switch format {
	case FormatPNG:
		return PNG(w, b)
	case FormatXLSX:
		return XLSX(w, b)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}

// Formats lists the supported formats.
func Formats() []string { return slices.Clone(formats) }

var formats = []string{FormatPNG, FormatXLSX}
