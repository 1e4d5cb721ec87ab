package csvw

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// kv is one key/value pair of an OrderedObject.
type kv struct {
	Key string
	Val interface{}
}

// OrderedObject is a JSON object that preserves insertion order on
// marshal, used for the annotated data model so @id/@type consistently
// lead each node the way a hand-written JSON-LD document would, instead of
// encoding/json's alphabetical map key order.
type OrderedObject []kv

// MarshalJSON writes the pairs in insertion order.
func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pair := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(pair.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func newObject() *OrderedObject { return &OrderedObject{} }

// set appends key/val, dropping nulls, empty strings, empty slices and
// false booleans so the annotated form never carries an explicit absence
// marker.
func (o *OrderedObject) set(key string, val interface{}) {
	switch v := val.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case []interface{}:
		if len(v) == 0 {
			return
		}
	case bool:
		if !v {
			return
		}
	}
	*o = append(*o, kv{key, val})
}

// ToAnnotatedTableGroup builds the annotated TableGroup (CSVW §6) as a
// stable-ordered JSON object: @id, @type, then own properties, then the
// nested tables collection.
func (m *Metadata) ToAnnotatedTableGroup() *OrderedObject {
	o := newObject()
	o.set("@id", m.TableGroup.ID)
	o.set("@type", "TableGroup")
	o.set("notes", m.TableGroup.Notes)
	var tables []interface{}
	for _, idx := range m.TableGroup.TableIdx {
		tables = append(tables, m.toAnnotatedTable(idx))
	}
	o.set("tables", tables)
	return o
}

func (m *Metadata) toAnnotatedTable(idx int) *OrderedObject {
	t := &m.Tables[idx]
	o := newObject()
	o.set("@id", t.ID)
	o.set("@type", "Table")
	o.set("url", t.URL)
	if t.SchemaIdx >= 0 {
		o.set("tableSchema", m.toAnnotatedSchema(t.SchemaIdx))
	}
	o.set("notes", t.Notes)
	o.set("suppressOutput", t.SuppressOutput)
	return o
}

func (m *Metadata) toAnnotatedSchema(idx int) *OrderedObject {
	s := &m.Schemas[idx]
	o := newObject()
	o.set("@id", s.ID)
	o.set("@type", "Schema")
	var cols []interface{}
	for _, cIdx := range s.ColumnIdx {
		cols = append(cols, m.toAnnotatedColumn(cIdx))
	}
	o.set("columns", cols)
	if len(s.PrimaryKey) > 0 {
		o.set("primaryKey", toInterfaceSlice(s.PrimaryKey))
	}
	return o
}

func (m *Metadata) toAnnotatedColumn(idx int) *OrderedObject {
	c := &m.Columns[idx]
	rc := m.ResolveColumn(idx)
	o := newObject()
	o.set("@id", c.ID)
	o.set("@type", "Column")
	o.set("name", c.Name)
	if titles := titlesToJSON(c.Titles); titles != nil {
		o.set("titles", titles)
	}
	o.set("virtual", c.Virtual)
	o.set("suppressOutput", c.SuppressOutput)
	o.set("datatype", rc.Datatype.Base)
	return o
}

func titlesToJSON(nl naturalLanguageValue) interface{} {
	if len(nl) == 0 {
		return nil
	}
	out := map[string]interface{}{}
	for lang, vals := range nl {
		out[lang] = toInterfaceSlice(vals)
	}
	return out
}

// ToAnnotatedRow builds one data row's annotated form: its row URL
// (table URL plus its RFC 7111 #row= fragment), row/source numbers, and
// the cells it describes.
func ToAnnotatedRow(row *Row) *OrderedObject {
	o := newObject()
	o.set("@type", "Row")
	o.set("url", row.table.tableURL+row.Fragment())
	o.set("rownum", row.Number)
	o.set("sourcenum", row.SourceNumber)
	var cells []interface{}
	for i := range row.Cells {
		cells = append(cells, ToAnnotatedCell(&row.Cells[i]))
	}
	o.set("describes", cells)
	return o
}

// ToAnnotatedCell builds one cell's annotated form: the about-resource as
// @id and the property/value pair, keyed by the cell's propertyUrl or, when
// it has none, by the column name.
func ToAnnotatedCell(c *Cell) *OrderedObject {
	o := newObject()
	o.set("@id", c.AboutURL)
	if c.PropertyURL != "" {
		o.set(c.PropertyURL, cellValueToJSON(c))
	} else if c.Column.Name != "" {
		o.set(c.Column.Name, cellValueToJSON(c))
	}
	if len(c.Errors) > 0 {
		o.set("@errors", toInterfaceSlice(c.Errors))
	}
	return o
}

func cellValueToJSON(c *Cell) interface{} {
	if c.ValueURL != "" {
		return map[string]interface{}{"@id": c.ValueURL}
	}
	return literalJSON(c.Value)
}

func literalJSON(v interface{}) interface{} {
	switch vv := v.(type) {
	case nil:
		return nil
	case Literal:
		if vv.Lang == "" && vv.Datatype.Value == "" {
			return vv.Lexical
		}
		o := newObject()
		o.set("@value", vv.Lexical)
		if vv.Lang != "" {
			o.set("@language", vv.Lang)
		} else {
			o.set("@type", vv.Datatype.Value)
		}
		return o
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, item := range vv {
			out[i] = literalJSON(item)
		}
		return out
	default:
		return fmt.Sprint(vv)
	}
}
