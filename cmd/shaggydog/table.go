package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws the CLI's small summary tables with rounded borders.
// Columns named in numericColumns (1-based) are right-aligned so IDs and
// counts line up; everything else stays left-aligned.
func renderTable(headers []string, rows [][]string, numericColumns ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range headers {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}

	if len(numericColumns) > 0 {
		configs := make([]table.ColumnConfig, 0, len(numericColumns))
		for _, col := range numericColumns {
			configs = append(configs, table.ColumnConfig{
				Number:      col,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}
