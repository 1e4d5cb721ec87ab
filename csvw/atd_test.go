package csvw

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestOrderedObject_MarshalPreservesInsertionOrder(t *testing.T) {
	o := newObject()
	o.set("@type", "Table")
	o.set("@id", "t1")
	o.set("url", "data.csv")
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)
	want := `{"@type":"Table","@id":"t1","url":"data.csv"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestOrderedObject_SetDropsEmptyValues(t *testing.T) {
	o := newObject()
	o.set("a", "")
	o.set("b", false)
	o.set("c", []interface{}{})
	o.set("d", nil)
	o.set("e", "kept")
	if len(*o) != 1 {
		t.Fatalf("expected only non-empty value to survive, got %+v", *o)
	}
	if (*o)[0].Key != "e" {
		t.Errorf("got key %q, want e", (*o)[0].Key)
	}
}

func TestToAnnotatedTableGroup_IDAndTypeLead(t *testing.T) {
	m := mustParse(t, `{
		"@id": "http://example.org/group",
		"tables": [
			{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}
		]
	}`)
	data, err := json.Marshal(m.ToAnnotatedTableGroup())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, `{"@id":"http://example.org/group","@type":"TableGroup"`) {
		t.Errorf("expected @id/@type to lead, got %s", got)
	}
	if !strings.Contains(got, `"tables":[`) {
		t.Errorf("expected nested tables array, got %s", got)
	}
}

func TestToAnnotatedRow_CellsCarryPropertyAndValue(t *testing.T) {
	m := mustParse(t, `{
		"url": "http://example.org/data.csv",
		"tableSchema": {"columns": [{"name": "id", "propertyUrl": "http://example.org/vocab/id"}]}
	}`)
	tbl := m.Tables[0]
	it, err := tbl.Rows(context.Background(), strings.NewReader("id\n7\n"), 0)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !it.Next() {
		t.Fatalf("expected a data row, err=%v", it.Err())
	}
	annotated := ToAnnotatedRow(it.Row())
	data, err := json.Marshal(annotated)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["rownum"].(float64) != 1 {
		t.Errorf("rownum = %v", decoded["rownum"])
	}
	describes, ok := decoded["describes"].([]interface{})
	if !ok || len(describes) != 1 {
		t.Fatalf("describes = %v", decoded["describes"])
	}
	cell := describes[0].(map[string]interface{})
	if _, ok := cell["http://example.org/vocab/id"]; !ok {
		t.Errorf("expected cell keyed by propertyUrl, got %v", cell)
	}
}

func TestLiteralJSON_PlainStringVsTypedLiteral(t *testing.T) {
	if got := literalJSON(Literal{Lexical: "hello"}); got != "hello" {
		t.Errorf("got %#v, want plain string", got)
	}
	typed := literalJSON(Literal{Lexical: "1", Datatype: IRI{Value: xsdNamespace + "integer"}})
	o, ok := typed.(*OrderedObject)
	if !ok {
		t.Fatalf("expected *OrderedObject for typed literal, got %#v", typed)
	}
	data, _ := json.Marshal(o)
	if !strings.Contains(string(data), `"@type":"`+xsdNamespace+`integer"`) {
		t.Errorf("got %s", data)
	}
}
