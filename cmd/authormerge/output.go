package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/capesgraph/authormerge/internal/fault"
)

// DefaultTopLimit is the number of pairs the top command lists by default.
const DefaultTopLimit = 10

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	logger.Sync()
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// countRow is one label/value line of a two-column summary table.
type countRow struct {
	Label string
	Value int
}

func renderCounts(rows []countRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Label, strconv.Itoa(r.Value)}
	}
	return renderTable([]string{"", "count"}, cells, []columnAlignment{alignLeft, alignRight})
}

// faultRows lists fault counts by reason, largest first.
func faultRows(s fault.Summary) []countRow {
	rows := make([]countRow, 0, len(s.Counts))
	for reason, n := range s.Counts {
		rows = append(rows, countRow{Label: "skipped: " + string(reason), Value: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// printFaultSamplesHuman prints the kept fault samples, one per line.
func printFaultSamplesHuman(s fault.Summary) {
	if len(s.Samples) == 0 {
		return
	}
	outputHuman("\nFirst %d of %d skipped contributions:\n", len(s.Samples), s.Total)
	for _, f := range s.Samples {
		outputHuman("  %s\n", f.Error())
	}
}
