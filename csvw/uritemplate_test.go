package csvw

import "testing"

func TestExpandURITemplate_SimpleExpansion(t *testing.T) {
	got := expandURITemplate("http://example.org/{id}", map[string]string{"id": "42"})
	if got != "http://example.org/42" {
		t.Errorf("got %q", got)
	}
}

func TestExpandURITemplate_PercentEncodesReservedBySimpleOp(t *testing.T) {
	got := expandURITemplate("http://example.org/{name}", map[string]string{"name": "a b/c"})
	want := "http://example.org/a%20b%2Fc"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandURITemplate_ReservedOpPreservesSlash(t *testing.T) {
	got := expandURITemplate("http://example.org/{+path}", map[string]string{"path": "a/b"})
	want := "http://example.org/a/b"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandURITemplate_FragmentOp(t *testing.T) {
	got := expandURITemplate("http://example.org/doc{#frag}", map[string]string{"frag": "section1"})
	want := "http://example.org/doc#section1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandURITemplate_MissingVarExpandsEmpty(t *testing.T) {
	got := expandURITemplate("http://example.org/{missing}/x", map[string]string{})
	if got != "http://example.org//x" {
		t.Errorf("got %q", got)
	}
}

func TestExpandURITemplate_MultipleVarsInOneExpression(t *testing.T) {
	got := expandURITemplate("{a,b}", map[string]string{"a": "1", "b": "2"})
	if got != "1,2" {
		t.Errorf("got %q", got)
	}
}

func TestCellTemplateVars_PositionalVariables(t *testing.T) {
	m := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}`)
	tc := &tableContext{m: m, dialect: DefaultDialect()}
	row := &Row{Number: 3, SourceNumber: 5, table: tc}
	col := m.ResolveColumn(m.Schemas[m.Tables[0].SchemaIdx].ColumnIdx[0])
	row.Cells = []Cell{{Column: col, Value: Literal{Lexical: "42"}, Row: row}}
	vars := cellTemplateVars(row, col)
	if vars["_row"] != "3" || vars["_sourceRow"] != "5" {
		t.Errorf("positional vars = %+v", vars)
	}
	if vars["_name"] != "id" {
		t.Errorf("_name = %q, want id", vars["_name"])
	}
	if vars["id"] != "42" {
		t.Errorf("vars[id] = %q, want 42", vars["id"])
	}
}

func TestCellTemplateVars_SeesEveryColumnRegardlessOfPosition(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "about", "aboutUrl": "http://ex/p/{id}"}, {"name": "id"}]}
	}`)
	tc := &tableContext{m: m, dialect: DefaultDialect()}
	row := &Row{Number: 1, SourceNumber: 2, table: tc}
	cols := []ResolvedColumn{
		m.ResolveColumn(m.Schemas[m.Tables[0].SchemaIdx].ColumnIdx[0]),
		m.ResolveColumn(m.Schemas[m.Tables[0].SchemaIdx].ColumnIdx[1]),
	}
	row.Cells = []Cell{
		{Column: cols[0], Value: Literal{Lexical: "x"}, Row: row},
		{Column: cols[1], Value: Literal{Lexical: "42"}, Row: row},
	}
	vars := cellTemplateVars(row, cols[0])
	if vars["id"] != "42" {
		t.Errorf("vars[id] = %q, want 42 (forward-referenced column)", vars["id"])
	}
}
