package csvw

import (
	"context"
	"strings"
	"testing"
)

func firstCell(t *testing.T, metadataJSON, csvData string) Cell {
	t.Helper()
	m := mustParse(t, metadataJSON)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader(csvData), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !it.Next() {
		t.Fatalf("expected a data row, err=%v", it.Err())
	}
	return it.Row().Cells[0]
}

func TestCell_NullValue(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id", "null": "NA"}]}
	}`, "id\nNA\n")
	if !c.IsNull() {
		t.Errorf("expected NA to interpret as null, got %#v", c.Value)
	}
}

func TestCell_DefaultSubstitution(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id", "default": "unknown"}]}
	}`, "id\n\n")
	lit, ok := c.Value.(Literal)
	if !ok || lit.Lexical != "unknown" {
		t.Errorf("expected default substitution, got %#v", c.Value)
	}
}

func TestCell_SeparatorSplitsList(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "tags", "separator": "|"}]}
	}`, "tags\na|b|c\n")
	list, ok := c.Value.([]interface{})
	if !ok || len(list) != 3 {
		t.Fatalf("expected 3-item list, got %#v", c.Value)
	}
	for i, want := range []string{"a", "b", "c"} {
		lit, ok := list[i].(Literal)
		if !ok || lit.Lexical != want {
			t.Errorf("item %d = %#v, want %q", i, list[i], want)
		}
	}
}

func TestCell_RequiredNullProducesError(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id", "required": true}]}
	}`, "id\n\n")
	if len(c.Errors) == 0 {
		t.Error("expected a required-but-null error")
	}
}

func TestCell_AboutPropertyValueURLExpansion(t *testing.T) {
	c := firstCell(t, `{
		"url": "http://example.org/data.csv",
		"tableSchema": {
			"columns": [
				{"name": "id", "aboutUrl": "http://example.org/row/{id}", "propertyUrl": "http://example.org/vocab/id"}
			]
		}
	}`, "id\n42\n")
	if c.AboutURL != "http://example.org/row/42" {
		t.Errorf("AboutURL = %q", c.AboutURL)
	}
	if c.PropertyURL != "http://example.org/vocab/id" {
		t.Errorf("PropertyURL = %q", c.PropertyURL)
	}
}

func TestCell_IntegerDatatypeOutOfRangeGetsError(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "age", "datatype": "positiveInteger"}]}
	}`, "age\n-3\n")
	if len(c.Errors) == 0 {
		t.Error("expected range violation error for negative positiveInteger")
	}
}

func TestCell_DoubledGroupCharIsRejected(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "amount", "datatype": {"base": "decimal", "format": {"groupChar": ".", "decimalChar": ","}}}]}
	}`, "amount\n1..234,50\n")
	if len(c.Errors) == 0 {
		t.Error("expected an error for a doubled groupChar")
	}
}

func TestCell_DateFormatProducesCanonicalLexical(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "d", "datatype": {"base": "date", "format": "dd/MM/yyyy"}}]}
	}`, "d\n04/07/1776\n")
	lit, ok := c.Value.(Literal)
	if !ok || lit.Lexical != "1776-07-04" {
		t.Errorf("got %#v, want canonical 1776-07-04", c.Value)
	}
}

func TestCell_AboutURLForwardReferencesSiblingColumn(t *testing.T) {
	c := firstCell(t, `{
		"url": "http://example.org/data.csv",
		"tableSchema": {
			"columns": [
				{"name": "about", "aboutUrl": "http://example.org/p/{id}"},
				{"name": "id"}
			]
		}
	}`, "about,id\nx,42\n")
	if c.AboutURL != "http://example.org/p/42" {
		t.Errorf("AboutURL = %q, want the forward-referenced id column's value resolved", c.AboutURL)
	}
}

func TestCell_BooleanCustomFormat(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "flag", "datatype": {"base": "boolean", "format": "Y,N"}}]}
	}`, "flag\nY\n")
	lit, ok := c.Value.(Literal)
	if !ok || lit.Lexical != "true" {
		t.Errorf("got %#v, want boolean true", c.Value)
	}
}

func TestCell_ColumnAndCellFragments(t *testing.T) {
	c := firstCell(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id"}]}
	}`, "id\n1\n")
	if got := c.ColumnFragment(); got != "#col=1" {
		t.Errorf("ColumnFragment() = %q, want #col=1", got)
	}
	if got := c.CellFragment(); got != "#cell=2,1" {
		t.Errorf("CellFragment() = %q, want #cell=2,1", got)
	}
}

func TestPreNormalize_CollapsesWhitespaceForNonString(t *testing.T) {
	got := preNormalize("a\tb\r\nc", "integer")
	if got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestPreNormalize_PreservesStringLikeBases(t *testing.T) {
	got := preNormalize("a\tb", "string")
	if got != "a\tb" {
		t.Errorf("got %q, want unchanged for string base", got)
	}
}
