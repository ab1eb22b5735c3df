package main

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gencatalog/internal/gencode"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// keyColumnWidth caps columns holding cache keys and URLs.
const keyColumnWidth = 60

// column describes one table column.
type column struct {
	Header   string
	Align    columnAlignment
	MaxWidth int
}

func columnsOf(headers []string, aligns []columnAlignment) []column {
	cols := make([]column, len(headers))
	for i, header := range headers {
		cols[i] = column{Header: header}
		if i < len(aligns) {
			cols[i].Align = aligns[i]
		}
	}
	return cols
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderColumns(columnsOf(headers, aligns), rows)
}

// renderColumns draws rows with a rounded go-pretty table. Short rows are
// padded with empty cells.
func renderColumns(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, col := range cols {
		header[i] = col.Header
		align := text.AlignLeft
		if col.Align == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    col.MaxWidth,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range cols {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// genomeInfoTable renders the provider's genome summary rows.
func genomeInfoTable(out io.Writer, infos []gencode.GenomeInfo) error {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			info.Accession,
			strconv.Itoa(info.TaxonomyID),
			yesNo(info.Annotations),
			info.Species,
			info.OtherInfo,
		})
	}
	headers := []string{"Name", "Accession", "Taxonomy", "Annotation", "Species", "Other info"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
	_, err := io.WriteString(out, renderTable(headers, rows, aligns)+"\n")
	return err
}
