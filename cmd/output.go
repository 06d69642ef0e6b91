// ABOUTME: Output helpers shared by the commands
// ABOUTME: JSON printing, bordered tables, pagination footers, and humanized values

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
)

// formatJSON renders v as indented JSON
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// formatTable renders rows under headers with a plain border
func formatTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// formatPageFooter summarizes which slice of the result set is shown
func formatPageFooter[T any](st listing.State[T]) string {
	if st.Total == 0 {
		return "No results."
	}
	footer := fmt.Sprintf("Showing %d-%d of %s (page %d)", st.From, st.To, humanize.Comma(int64(st.Total)), st.Page)
	if st.To < st.Total {
		footer += fmt.Sprintf(", next: --page %d", st.Page+1)
	}
	return footer
}

// pageJSON is the JSON shape of a list result
type pageJSON[T any] struct {
	Data  []T               `json:"data"`
	Links []client.PageLink `json:"links"`
	From  int               `json:"from"`
	To    int               `json:"to"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
}

func listJSON[T any](st listing.State[T]) pageJSON[T] {
	rows := st.Rows
	if rows == nil {
		rows = []T{}
	}
	return pageJSON[T]{Data: rows, Links: st.Links, From: st.From, To: st.To, Total: st.Total, Page: st.Page}
}

// formatWhen renders a backend timestamp relative to now, falling back to
// the raw value when it cannot be parsed
func formatWhen(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return humanize.Time(t)
		}
	}
	return raw
}

// formatScore renders an optional performance score
func formatScore(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score) + "%"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printReport reports a saved report file
func printReport(w io.Writer, path string) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]any{"path": path, "bytes": size}))
		return
	}
	fmt.Fprintf(w, "%s\nSaved %s (%s)\n", listing.MsgReportSaved, path, humanize.Bytes(uint64(size)))
}
