package csvw

import (
	"context"
	"strings"
	"testing"
)

func TestTableRows_BasicIteration(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id", "datatype": "integer"}, {"name": "name"}]}
	}`)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader("id,name\n1,alice\n2,bob\n"), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	var rows []*Row
	for it.Next() {
		rows = append(rows, it.Row())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	if rows[0].Number != 1 || rows[0].SourceNumber != 2 {
		t.Errorf("row 0 numbers = %d/%d, want 1/2", rows[0].Number, rows[0].SourceNumber)
	}
	if rows[1].Number != 2 || rows[1].SourceNumber != 3 {
		t.Errorf("row 1 numbers = %d/%d, want 2/3", rows[1].Number, rows[1].SourceNumber)
	}
	lit, ok := rows[0].Cells[0].Value.(Literal)
	if !ok || lit.Lexical != "1" || lit.Datatype.Value != xsdNamespace+"integer" {
		t.Errorf("cell 0,0 value = %#v, want integer literal 1", rows[0].Cells[0].Value)
	}
	if rows[0].Cells[1].StringValue != "alice" {
		t.Errorf("cell 0,1 = %q, want alice", rows[0].Cells[1].StringValue)
	}
}

func TestTableRows_SkipsCommentsAndCountsSourceNumber(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"dialect": {"commentPrefix": "#"},
		"tableSchema": {"columns": [{"name": "id"}]}
	}`)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader("id\n#a note\n1\n"), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !it.Next() {
		t.Fatalf("expected a data row, err=%v", it.Err())
	}
	row := it.Row()
	if row.Number != 1 {
		t.Errorf("row number = %d, want 1", row.Number)
	}
	if row.SourceNumber != 3 {
		t.Errorf("source number = %d, want 3 (comment row counted)", row.SourceNumber)
	}
	if len(it.Comments()) != 1 || it.Comments()[0] != "a note" {
		t.Errorf("comments = %v", it.Comments())
	}
	if it.Next() {
		t.Error("expected only one data row")
	}
}

func TestTableRows_CommentBeforeHeaderCountsTowardSourceNumber(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"dialect": {"commentPrefix": "#"},
		"tableSchema": {"columns": [{"name": "name"}]}
	}`)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader("#hello\nname\nAlice\n"), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !it.Next() {
		t.Fatalf("expected a data row, err=%v", it.Err())
	}
	row := it.Row()
	if row.Number != 1 {
		t.Errorf("row number = %d, want 1", row.Number)
	}
	if row.SourceNumber != 3 {
		t.Errorf("source number = %d, want 3 (leading comment row counted)", row.SourceNumber)
	}
}

func TestTableRows_ShortRowProducesRowWidthError(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}
	}`)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader("a,b,c\n1,2\n"), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if it.Next() {
		t.Fatal("expected Next to fail on short row")
	}
	var rwe *RowWidthError
	if err := it.Err(); err == nil {
		t.Fatal("expected RowWidthError")
	} else if e, ok := err.(*RowWidthError); !ok {
		t.Fatalf("expected *RowWidthError, got %T: %v", err, err)
	} else {
		rwe = e
	}
	if rwe.Got != 2 || rwe.Want != 3 {
		t.Errorf("RowWidthError = %+v, want Got=2 Want=3", rwe)
	}
}

func TestTableRows_SkipBlankRows(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"dialect": {"skipBlankRows": true},
		"tableSchema": {"columns": [{"name": "id"}]}
	}`)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader("id\n1\n\n2\n"), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	var got []string
	for it.Next() {
		got = append(got, it.Row().Cells[0].StringValue)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration error: %v", err)
	}
	if !equalStrings(got, []string{"1", "2"}) {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestRow_Fragment(t *testing.T) {
	r := &Row{SourceNumber: 5}
	if got := r.Fragment(); got != "#row=5" {
		t.Errorf("Fragment() = %q, want #row=5", got)
	}
}

func TestCell_IsNull(t *testing.T) {
	c := &Cell{Value: nil}
	if !c.IsNull() {
		t.Error("expected nil value to be null")
	}
	c2 := &Cell{Value: "x"}
	if c2.IsNull() {
		t.Error("expected non-nil value to not be null")
	}
	c3 := &Cell{Value: []interface{}{nil, nil}}
	if !c3.IsNull() {
		t.Error("expected all-nil list to be null")
	}
	c4 := &Cell{Value: []interface{}{nil, "x"}}
	if c4.IsNull() {
		t.Error("expected mixed list to not be null")
	}
}
