// Package view renders client state as terminal text.
package view

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table buffers rows for a borderless, left-aligned table. Cells are never
// wrapped.
type Table struct {
	table *tablewriter.Table
	rows  [][]string
}

func NewTable(w io.Writer, headers []string) *Table {
	return &Table{table: tablewriter.NewTable(w,
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
		tablewriter.WithHeader(headers),
	)}
}

func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Render() error {
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}

	return t.table.Render()
}
