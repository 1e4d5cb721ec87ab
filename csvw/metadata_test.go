package csvw

import (
	"context"
	"strings"
	"testing"
)

func mustParse(t *testing.T, jsonStr string, opts ...Option) *Metadata {
	t.Helper()
	m, err := Parse(context.Background(), strings.NewReader(jsonStr), opts...)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestParse_SingleTable(t *testing.T) {
	m := mustParse(t, `{
		"@context": "http://www.w3.org/ns/csvw",
		"url": "data.csv",
		"tableSchema": {
			"columns": [
				{"name": "id", "datatype": "integer"},
				{"name": "name"}
			]
		}
	}`)
	if len(m.TableGroup.TableIdx) != 1 {
		t.Fatalf("expected 1 table, got %d", len(m.TableGroup.TableIdx))
	}
	tbl := m.Tables[m.TableGroup.TableIdx[0]]
	if tbl.URL != "data.csv" {
		t.Errorf("table URL = %q", tbl.URL)
	}
	schema := m.Schemas[tbl.SchemaIdx]
	if len(schema.ColumnIdx) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(schema.ColumnIdx))
	}
	rc := m.ResolveColumn(schema.ColumnIdx[0])
	if rc.Datatype.Base != "integer" {
		t.Errorf("column 0 datatype = %q, want integer", rc.Datatype.Base)
	}
	rc1 := m.ResolveColumn(schema.ColumnIdx[1])
	if rc1.Datatype.Base != "string" {
		t.Errorf("column 1 datatype = %q, want string (default)", rc1.Datatype.Base)
	}
}

func TestParse_TableGroup(t *testing.T) {
	m := mustParse(t, `{
		"@context": "http://www.w3.org/ns/csvw",
		"tables": [
			{"url": "a.csv", "tableSchema": {"columns": [{"name": "x"}]}},
			{"url": "b.csv", "tableSchema": {"columns": [{"name": "y"}]}}
		]
	}`)
	if len(m.TableGroup.TableIdx) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(m.TableGroup.TableIdx))
	}
}

func TestParse_DatatypeCustomAbsoluteIRIIsKept(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "x", "datatype": "http://example.org/datatypes/my-type"}]}
	}`)
	rc := m.ResolveColumn(m.Schemas[m.Tables[0].SchemaIdx].ColumnIdx[0])
	if rc.Datatype.Base != "http://example.org/datatypes/my-type" {
		t.Errorf("datatype base = %q, want the custom absolute IRI kept as-is", rc.Datatype.Base)
	}
}

func TestParse_DatatypeUnresolvableNameFallsBackToString(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "x", "datatype": "not-a-real-type"}]}
	}`)
	rc := m.ResolveColumn(m.Schemas[m.Tables[0].SchemaIdx].ColumnIdx[0])
	if rc.Datatype.Base != "string" {
		t.Errorf("datatype base = %q, want string fallback for a non-built-in, non-absolute-IRI name", rc.Datatype.Base)
	}
}

func TestParse_MissingTablesFails(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader(`{"@context": "http://www.w3.org/ns/csvw"}`))
	if err == nil {
		t.Fatal("expected error for metadata with neither url nor tables")
	}
}

func TestInheritedProperties_ColumnOverridesSchema(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"lang": "fr",
		"tableSchema": {
			"lang": "de",
			"columns": [
				{"name": "a", "lang": "en"},
				{"name": "b"}
			]
		}
	}`)
	schema := m.Schemas[m.Tables[0].SchemaIdx]
	ra := m.ResolveColumn(schema.ColumnIdx[0])
	if ra.Lang != "en" {
		t.Errorf("column a lang = %q, want en (column override)", ra.Lang)
	}
	rb := m.ResolveColumn(schema.ColumnIdx[1])
	if rb.Lang != "de" {
		t.Errorf("column b lang = %q, want de (schema level)", rb.Lang)
	}
}

func TestInheritedProperties_FallsThroughToTableGroup(t *testing.T) {
	m := mustParse(t, `{
		"lang": "es",
		"tables": [
			{"url": "a.csv", "tableSchema": {"columns": [{"name": "x"}]}}
		]
	}`)
	schema := m.Schemas[m.Tables[0].SchemaIdx]
	rx := m.ResolveColumn(schema.ColumnIdx[0])
	if rx.Lang != "es" {
		t.Errorf("column x lang = %q, want es (table group level)", rx.Lang)
	}
}

func TestValidate_DuplicateColumnName(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id"}, {"name": "id"}]}
	}`)
	errs := m.Validate()
	found := false
	for _, e := range errs {
		if strings.Contains(e, "duplicate column name") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate column name error, got %v", errs)
	}
}

func TestValidate_DuplicateTableURL(t *testing.T) {
	m := mustParse(t, `{
		"tables": [
			{"url": "a.csv", "tableSchema": {"columns": [{"name": "x"}]}},
			{"url": "a.csv", "tableSchema": {"columns": [{"name": "y"}]}}
		]
	}`)
	errs := m.Validate()
	found := false
	for _, e := range errs {
		if strings.Contains(e, "duplicate table url") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate table url error, got %v", errs)
	}
}

func TestValidate_UnrecognizedPropertyNameRejected(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"bogusProperty": "x",
		"tableSchema": {"columns": [{"name": "id"}]}
	}`)
	errs := m.Validate()
	found := false
	for _, e := range errs {
		if strings.Contains(e, `invalid property "bogusProperty"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected invalid property error for bogusProperty, got %v", errs)
	}
}

func TestValidate_AnnotationPropertyNameAccepted(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"dc:description": "a table",
		"tableSchema": {"columns": [{"name": "id"}]}
	}`)
	errs := m.Validate()
	for _, e := range errs {
		if strings.Contains(e, "invalid property") {
			t.Errorf("annotation property should not be rejected, got %v", errs)
		}
	}
}

func TestNormalize_NotesWrapBareStringInValueObject(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"notes": ["hello"],
		"tableSchema": {"columns": [{"name": "id"}]}
	}`)
	if len(m.TableGroup.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(m.TableGroup.Notes))
	}
	obj, ok := m.TableGroup.Notes[0].(map[string]interface{})
	if !ok {
		t.Fatalf("expected note to normalize into a value object, got %#v", m.TableGroup.Notes[0])
	}
	if _, ok := obj["http://www.w3.org/ns/csvw#value"]; !ok {
		t.Errorf("normalized note missing @value, got %#v", obj)
	}
}

func TestNormalize_AnnotationPropertyNameExpandsToFullIRI(t *testing.T) {
	m := mustParse(t, `{
		"@context": ["http://www.w3.org/ns/csvw", {"dc": "http://purl.org/dc/elements/1.1/"}],
		"url": "data.csv",
		"dc:description": "a table",
		"tableSchema": {"columns": [{"name": "id"}]}
	}`)
	tbl := m.Tables[m.TableGroup.TableIdx[0]]
	for k := range tbl.Extra {
		if k == "http://purl.org/dc/elements/1.1/description" {
			return
		}
	}
	t.Errorf("expected dc:description to expand to a full IRI, got %#v", tbl.Extra)
}

func TestForeignKey_LegacyColumnsAccepted(t *testing.T) {
	m := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {
			"columns": [{"name": "ref"}],
			"foreignKeys": [
				{"columns": "ref", "reference": {"resource": "data.csv", "columns": "ref"}}
			]
		}
	}`)
	schema := m.Schemas[m.Tables[0].SchemaIdx]
	if len(schema.ForeignKeys) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(schema.ForeignKeys))
	}
	fk := schema.ForeignKeys[0]
	if !equalStrings(fk.ColumnReference, []string{"ref"}) {
		t.Errorf("columnReference = %v, want [ref]", fk.ColumnReference)
	}
	if !equalStrings(fk.ReferenceColumnReference, []string{"ref"}) {
		t.Errorf("reference.columnReference = %v, want [ref]", fk.ReferenceColumnReference)
	}
}

func TestResolvedDialect_FallsBackToDefault(t *testing.T) {
	m := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "x"}]}}`)
	d := m.ResolvedDialect(0)
	if d.Delimiter != "," || d.HeaderRowCount != 1 {
		t.Errorf("unexpected default dialect: %+v", d)
	}
}
