package csvw

import (
	"context"
	"fmt"
	"io"
)

// tableContext is the per-open-file state a Table's rows and cells are
// interpreted against: its resolved dialect, resolved columns in schema
// order, and the table URL cells resolve aboutUrl/propertyUrl/valueUrl
// against.
type tableContext struct {
	m        *Metadata
	tableIdx int
	dialect  Dialect
	columns  []ResolvedColumn
	tableURL string
	bnodes   *blankNodeGenerator
}

func (tc *tableContext) sourceColumnNumber(col ResolvedColumn) int {
	return col.Number + tc.dialect.SkipColumns
}

// Row is one interpreted data row: its 1-based row number (data rows only),
// its 1-based source row number (counting skipped/header/comment rows too),
// and its interpreted cells in schema-column order.
type Row struct {
	Number       int
	SourceNumber int
	Cells        []Cell
	table        *tableContext
}

// Fragment returns the row's RFC 7111 fragment identifier, "#row=N".
func (r *Row) Fragment() string {
	return fmt.Sprintf("#row=%d", r.SourceNumber)
}

// Cell is one interpreted table cell.
type Cell struct {
	Column      ResolvedColumn
	StringValue string
	Value       interface{}
	AboutURL    string
	PropertyURL string
	ValueURL    string
	Errors      []string
	Row         *Row
}

// ColumnFragment returns the cell's column RFC 7111 fragment, "#col=N",
// where N accounts for dialect-skipped leading columns.
func (c *Cell) ColumnFragment() string {
	return fmt.Sprintf("#col=%d", c.Row.table.sourceColumnNumber(c.Column))
}

// CellFragment returns the cell's RFC 7111 fragment, "#cell=ROW,COL".
func (c *Cell) CellFragment() string {
	return fmt.Sprintf("#cell=%d,%d", c.Row.SourceNumber, c.Row.table.sourceColumnNumber(c.Column))
}

// IsNull reports whether the cell's value (or, for a list value, every
// item) interpreted to null.
func (c *Cell) IsNull() bool {
	if c.Value == nil {
		return true
	}
	if list, ok := c.Value.([]interface{}); ok {
		return allNil(list)
	}
	return false
}

// RowIterator walks a table's data rows, skipping configured leading rows,
// header rows, comment rows, and (optionally) blank rows.
type RowIterator struct {
	ctx     context.Context
	tok     *csvTokenizer
	tc      *tableContext
	comment []string
	number  int
	skipped int
	err     error
	current *Row
}

// Rows opens a row iterator over r using the table's resolved dialect and
// columns. r should be positioned at the start of the tabular data file;
// leading skipRows/headerRowCount rows are consumed internally.
func (t Table) Rows(ctx context.Context, r io.Reader, maxLineBytes int) (*RowIterator, error) {
	m := t.m
	dialect := m.ResolvedDialect(t.index)
	var resolved []ResolvedColumn
	if t.SchemaIdx >= 0 {
		for _, cIdx := range m.Schemas[t.SchemaIdx].ColumnIdx {
			resolved = append(resolved, m.ResolveColumn(cIdx))
		}
	}
	tc := &tableContext{m: m, tableIdx: t.index, dialect: dialect, columns: resolved, tableURL: t.URL, bnodes: newBlankNodeGenerator()}
	tok := newCSVTokenizer(sanitizeUTF8Reader(r), dialect, maxLineBytes)
	it := &RowIterator{ctx: ctx, tok: tok, tc: tc}
	if err := it.skipLeadingRows(); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *RowIterator) skipLeadingRows() error {
	total := it.tc.dialect.SkipRows + it.tc.dialect.HeaderRowCount
	for i := 0; i < total; i++ {
		rec, err := it.tok.ReadRecord()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if comment, ok := isCommentRecord(rec, it.tc.dialect); ok {
			it.comment = append(it.comment, comment)
			it.skipped++
			total++
			continue
		}
		it.skipped++
	}
	return nil
}

// Next advances to the next data row, returning false at EOF or on a fatal
// error (check Err). Comment rows and, if configured, blank rows are
// skipped transparently and counted into the source row number but not the
// data row number.
func (it *RowIterator) Next() bool {
	for {
		if err := checkDecodeContext(it.ctx); err != nil {
			it.err = err
			return false
		}
		rec, err := it.tok.ReadRecord()
		if err != nil {
			if err != io.EOF {
				it.err = err
			}
			return false
		}
		if comment, ok := isCommentRecord(rec, it.tc.dialect); ok {
			it.comment = append(it.comment, comment)
			it.skipped++
			continue
		}
		if it.tc.dialect.SkipBlankRows && isBlankRecord(rec, it.tc.dialect) {
			it.skipped++
			continue
		}
		want := countResolvedNonVirtual(it.tc.columns)
		if len(rec) < want {
			it.err = &RowWidthError{SourceNumber: it.number + it.skipped + 1, Got: len(rec), Want: want}
			return false
		}

		it.number++
		row := &Row{Number: it.number, SourceNumber: it.number + it.skipped, table: it.tc}
		row.Cells = buildCells(it.tc, row, rec)
		it.current = row
		return true
	}
}

// Row returns the row produced by the most recent successful Next call.
func (it *RowIterator) Row() *Row { return it.current }

// Comments returns every comment-prefixed line seen so far, in order.
func (it *RowIterator) Comments() []string { return it.comment }

// Err returns the fatal error that stopped iteration, if any (io.EOF is
// not reported as an error).
func (it *RowIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func countResolvedNonVirtual(cols []ResolvedColumn) int {
	n := 0
	for _, c := range cols {
		if !c.Virtual {
			n++
		}
	}
	return n
}

// buildCells interprets every column's value first, then expands
// aboutUrl/propertyUrl/valueUrl templates in a second pass once row.Cells
// holds every column's post-processed value — so a template may reference
// any sibling column, including one that appears later in the schema.
func buildCells(tc *tableContext, row *Row, rec []string) []Cell {
	cells := make([]Cell, 0, len(tc.columns))
	for i, col := range tc.columns {
		var raw string
		fieldIdx := i + tc.dialect.SkipColumns
		if fieldIdx < len(rec) {
			raw = applyTrim(rec[fieldIdx], tc.dialect.Trim)
		}
		cells = append(cells, interpretCellValue(row, col, raw))
	}
	row.Cells = cells
	for i := range row.Cells {
		expandCellTemplates(tc, &row.Cells[i])
	}
	return row.Cells
}
