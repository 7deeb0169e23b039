package output

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders rows in the effective mode: a go-pretty box table in text
// mode and a markdown table otherwise. JSON callers encode their own data.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if r.EffectiveMode() == ModeText {
		writeTextTable(r.out, headers, rows)
		return
	}
	r.Println(FormatTable(headers, rows))
}

func writeTextTable(w io.Writer, headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}
	t.Render()
}
