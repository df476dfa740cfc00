package fetcher

import (
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Print writes one line per year and a summary table to w.
func (r Report) Print(w io.Writer) error {
	success := pterm.Success.WithWriter(w)
	failure := pterm.Error.WithWriter(w)
	for _, res := range r.Results {
		if res.OK() {
			success.Printfln("Saved data for %d to %s (%s)", res.Year, res.Path, humanize.Bytes(uint64(res.Bytes)))
			continue
		}
		failure.Printfln("Failed for %d: %v", res.Year, res.Err)
	}

	data := pterm.TableData{{"Year", "Status", "Size", "Took"}}
	var total int64
	for _, res := range r.Results {
		status := "saved"
		size := "-"
		if res.OK() {
			size = humanize.Bytes(uint64(res.Bytes))
			total += res.Bytes
		} else {
			status = "failed"
			if res.Status != 0 {
				status += " (" + strconv.Itoa(res.Status) + ")"
			}
		}
		data = append(data, []string{strconv.Itoa(res.Year), status, size, res.Duration.Round(time.Millisecond).String()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}

	saved := len(r.Results) - r.Failed()
	pterm.Info.WithWriter(w).Printfln("%d of %d years saved, %s total; manifest lists %d files",
		saved, len(r.Results), humanize.Bytes(uint64(total)), len(r.Manifest))
	return nil
}
