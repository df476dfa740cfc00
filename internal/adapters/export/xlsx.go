package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// Column headers shared with the HTML tables.
const (
	HeaderPosition = "#"
	HeaderName     = "Name"
	HeaderFullName = "Full Name"
	HeaderTotal    = "Total Stars"
)

// YearLabel is the column header for one year's stars.
func YearLabel(year string) string { return "Stars " + year }

// XLSX writes one worksheet per table. Per-year columns are only included
// when the breakdown is on.
func XLSX(w io.Writer, b Board) error {
	f := excelize.NewFile()
	defer f.Close()

	headStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}
	topStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFD700"}},
	})
	if err != nil {
		return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}

	sheets := b.Sheets
	if len(sheets) == 0 {
		sheets = []Sheet{{Title: "Leaderboard"}}
	}
	first := f.GetSheetName(f.GetActiveSheetIndex())
	used := map[string]bool{}
	for i, s := range sheets {
		name := sheetName(s.Title, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
		}
		if err := writeSheet(f, name, s, b, headStyle, topStyle); err != nil {
			return fmt.Errorf("%w: xlsx: sheet %q: %w", ErrRender, name, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, s Sheet, b Board, headStyle, topStyle int) error {
	header := []any{HeaderPosition, HeaderName, HeaderFullName}
	if b.Detailed {
		for _, y := range b.Years {
			header = append(header, YearLabel(y))
		}
	}
	header = append(header, HeaderTotal)
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headStyle); err != nil {
		return err
	}

	for i, r := range s.Rows {
		line := []any{r.Position, r.Name, r.FullName}
		if b.Detailed {
			for j := range b.Years {
				n := 0
				if j < len(r.PerYear) {
					n = r.PerYear[j]
				}
				line = append(line, n)
			}
		}
		line = append(line, r.Total)
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, axis, &line); err != nil {
			return err
		}
		if r.Emphasis {
			end, err := excelize.CoordinatesToCellName(len(line), i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(name, axis, end, topStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetName makes a worksheet name Excel accepts: at most 31 characters,
// none of []:*?/\ and unique within the workbook.
func sheetName(title string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "Sheet"
	}
	clean = truncate(clean, maxSheetName)
	name := clean
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
