// Package report renders scan results for people and spreadsheets.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guarzo/cardsnipe/internal/model"
)

// CSVHeaders are the columns written by WriteCSV.
var CSVHeaders = []string{
	"player", "title", "price", "reference", "percent under",
	"confidence", "comps", "url", "top comps",
}

// WriteCSV writes one row per deal. Every cell is escaped against formula
// injection.
func WriteCSV(w io.Writer, deals []model.Deal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EscapeCSVRow(CSVHeaders)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, d := range deals {
		if err := cw.Write(EscapeCSVRow(dealRow(d))); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func dealRow(d model.Deal) []string {
	top := make([]string, len(d.TopComps))
	for i, c := range d.TopComps {
		top[i] = fmt.Sprintf("%s ($%.2f, score %d)", c.Title, c.Price, c.Score)
	}
	return []string{
		d.Listing.Player,
		d.Listing.Title,
		formatMoney(d.Listing.Price),
		formatMoney(d.ReferencePrice),
		strconv.FormatFloat(d.PercentUnder, 'f', 2, 64),
		string(d.Confidence),
		strconv.Itoa(d.CompsUsed),
		d.Listing.URL,
		strings.Join(top, " | "),
	}
}

// WriteJSON writes the full scan result as indented JSON.
func WriteJSON(w io.Writer, result *model.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode scan result: %w", err)
	}
	return nil
}

// WriteSummary prints a short table of deals and the scan counters.
func WriteSummary(w io.Writer, result *model.ScanResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Scan %s: %d players, %d listings checked, %d deals (%s)\n",
		result.ID,
		result.Stats.PlayersScanned,
		result.Stats.ListingsChecked,
		len(result.Deals),
		result.FinishedAt.Sub(result.StartedAt).Round(100*time.Millisecond))

	if len(result.Deals) == 0 {
		return tw.Flush()
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "UNDER\tPRICE\tREF\tCONF\tCOMPS\tTITLE")
	for _, d := range result.Deals {
		fmt.Fprintf(tw, "%.1f%%\t%s\t%s\t%s\t%d\t%s\n",
			d.PercentUnder,
			formatMoney(d.Listing.Price),
			formatMoney(d.ReferencePrice),
			d.Confidence,
			d.CompsUsed,
			truncate(d.Listing.Title, 70))
	}
	return tw.Flush()
}

func formatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
