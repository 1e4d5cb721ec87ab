package csvw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// MetaKind identifies a metadata node's class.
type MetaKind uint8

const (
	MetaTableGroup MetaKind = iota
	MetaTable
	MetaSchema
	MetaColumn
	MetaDialect
	MetaTransformation
)

func (k MetaKind) String() string {
	switch k {
	case MetaTableGroup:
		return "TableGroup"
	case MetaTable:
		return "Table"
	case MetaSchema:
		return "Schema"
	case MetaColumn:
		return "Column"
	case MetaDialect:
		return "Dialect"
	case MetaTransformation:
		return "Transformation"
	default:
		return "Unknown"
	}
}

var columnNamePattern = regexp.MustCompile(`^(_col|[A-Za-z0-9]|%[0-9A-Fa-f]{2})([A-Za-z0-9._]|%[0-9A-Fa-f]{2})*$`)

// InheritedProperties holds the inheritable property slots: a nil pointer
// means "not set at this node", so resolution walks to the parent.
type InheritedProperties struct {
	AboutURL      *string
	PropertyURL   *string
	ValueURL      *string
	Datatype      *Datatype
	Default       *string
	Lang          *string
	Null          *[]string
	Ordered       *bool
	Required      *bool
	Separator     *string
	TextDirection *string
}

// Datatype describes a column's value type: a built-in name or absolute
// IRI, an optional format, and length/bounds facets.
type Datatype struct {
	Base         string
	Format       interface{}
	Length       *int
	MinLength    *int
	MaxLength    *int
	Minimum      string
	Maximum      string
	MinInclusive string
	MaxInclusive string
	MinExclusive string
	MaxExclusive string
}

// ForeignKey references a set of columns in a target schema, identified
// either by the URL of the resource Table or by a schema's @id.
type ForeignKey struct {
	ColumnReference          []string
	ReferenceResource        string
	ReferenceSchemaID        string
	ReferenceColumnReference []string
}

// TableGroup is the root metadata node: an ordered sequence of Tables plus
// group-level schema/dialect/transformation defaults.
type TableGroup struct {
	ID             string
	TableIdx       []int
	SchemaIdx      int
	DialectIdx     int
	TransformIdx   []int
	Notes          []interface{}
	TableDirection string
	Inherited      InheritedProperties
	// Extra holds every raw property name not recognized as a structural or
	// inherited CSVW property, keyed as found (JSON-LD annotation names are
	// expanded to full IRIs by normalize). Validate rejects whatever is
	// left that is not a JSON-LD annotation (per isAnnotationPropertyName).
	Extra map[string]interface{}
	m     *Metadata
}

// Table describes one tabular resource: its URL, schema, dialect, and
// transformations.
type Table struct {
	URL            string
	SchemaIdx      int
	DialectIdx     int
	TransformIdx   []int
	Notes          []interface{}
	SuppressOutput bool
	TableDirection string
	ID             string
	Inherited      InheritedProperties
	Extra          map[string]interface{}
	m              *Metadata
	index          int
}

// Schema is a table's column/key description.
type Schema struct {
	ParentKind  MetaKind
	ParentIdx   int
	ID          string
	ColumnIdx   []int
	PrimaryKey  []string
	ForeignKeys []ForeignKey
	Inherited   InheritedProperties
	Extra       map[string]interface{}
	m           *Metadata
}

// Column is one schema column: position, name, titles, and its own
// inherited-property overrides.
type Column struct {
	SchemaIdx      int
	Number         int
	Name           string
	Titles         naturalLanguageValue
	Virtual        bool
	SuppressOutput bool
	ID             string
	Inherited      InheritedProperties
	Extra          map[string]interface{}
	m              *Metadata
}

// Dialect is the CSV-parsing parameter set. Field defaults match
// DefaultDialect.
type Dialect struct {
	CommentPrefix    string
	Delimiter        string
	DoubleQuote      bool
	Encoding         string
	Header           bool
	HeaderRowCount   int
	LineTerminators  []string
	QuoteChar        string
	SkipBlankRows    bool
	SkipColumns      int
	SkipInitialSpace bool
	SkipRows         int
	Trim             string
}

// DefaultDialect returns the documented CSVW dialect defaults.
func DefaultDialect() Dialect {
	return Dialect{
		CommentPrefix:   "#",
		Delimiter:       ",",
		DoubleQuote:     true,
		Encoding:        "utf-8",
		Header:          true,
		HeaderRowCount:  1,
		LineTerminators: []string{"\r\n", "\n"},
		QuoteChar:       `"`,
		SkipColumns:     0,
		SkipRows:        0,
		Trim:            "true",
	}
}

// Transformation describes a named conversion of a table to another format.
type Transformation struct {
	TableIdx     int
	URL          string
	TargetFormat string
	ScriptFormat string
	Source       string
	Titles       naturalLanguageValue
}

// Metadata is the arena holding every node of a parsed TableGroup: parents
// hold child indices and children hold a parent index, so there are no
// reference cycles in ownership.
type Metadata struct {
	TableGroup TableGroup
	Tables     []Table
	Schemas    []Schema
	Columns    []Column
	Dialects   []Dialect
	Transforms []Transformation

	diag *Diagnostics
	vctx *ValueContext
	opts *Options
}

// Parse reads a CSVW metadata JSON document and builds its TableGroup.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*Metadata, error) {
	o := newOptions(opts...)
	if ctx != nil {
		o.Context = ctx
	}
	var raw interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("csvw: invalid metadata JSON: %w", err)
	}
	return ParseValue(raw, o)
}

// ParseValue builds a TableGroup from an already-decoded JSON value
// (map[string]interface{}), as produced by encoding/json.Decode.
func ParseValue(raw interface{}, o *Options) (*Metadata, error) {
	root, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &MetadataTypeError{Path: "<root>"}
	}
	vctx, err := NewValueContext(root["@context"], o)
	if err != nil {
		return nil, err
	}
	m := &Metadata{diag: o.Diagnostics, vctx: vctx, opts: o}
	m.TableGroup = TableGroup{SchemaIdx: -1, DialectIdx: -1, m: m}

	kind, err := inferKind(root, typeHintOf(root))
	if err != nil {
		return nil, err
	}
	switch kind {
	case MetaTableGroup:
		if err := m.buildTableGroup(root); err != nil {
			return nil, err
		}
	case MetaTable:
		if err := m.buildSingleTable(root); err != nil {
			return nil, err
		}
	default:
		return nil, &MetadataTypeError{Path: "<root>", Type: kind.String()}
	}

	m.normalize()

	if o.StrictValidation {
		if errs := m.Validate(); len(errs) > 0 {
			return nil, &MetadataValidationError{Messages: errs}
		}
	}
	return m, nil
}

// inferKind picks a node class by explicit type hint, then by the key-set
// heuristic: tables ⇒ TableGroup; dialect/tableSchema/transformations ⇒
// Table; targetFormat/scriptFormat/source ⇒ Transformation; columns/
// primaryKey/foreignKeys ⇒ Schema; name/virtual/titles ⇒ Column; dialect
// atoms ⇒ Dialect.
func inferKind(raw map[string]interface{}, typeHint string) (MetaKind, error) {
	if typeHint != "" {
		switch typeHint {
		case "TableGroup":
			return MetaTableGroup, nil
		case "Table":
			return MetaTable, nil
		case "Schema":
			return MetaSchema, nil
		case "Column":
			return MetaColumn, nil
		case "Dialect":
			return MetaDialect, nil
		case "Transformation":
			return MetaTransformation, nil
		default:
			return 0, &MetadataTypeError{Path: "<root>", Type: typeHint}
		}
	}
	switch {
	case has(raw, "tables"):
		return MetaTableGroup, nil
	case has(raw, "dialect"), has(raw, "tableSchema"), has(raw, "transformations"):
		return MetaTable, nil
	case has(raw, "targetFormat"), has(raw, "scriptFormat"), has(raw, "source"):
		return MetaTransformation, nil
	case has(raw, "columns"), has(raw, "primaryKey"), has(raw, "foreignKeys"):
		return MetaSchema, nil
	case has(raw, "name"), has(raw, "virtual"), has(raw, "titles"):
		return MetaColumn, nil
	}
	for _, k := range []string{"commentPrefix", "delimiter", "encoding", "header", "doubleQuote",
		"headerRowCount", "lineTerminators", "quoteChar", "skipBlankRows", "skipColumns",
		"skipInitialSpace", "skipRows", "trim"} {
		if has(raw, k) {
			return MetaDialect, nil
		}
	}
	return 0, &MetadataTypeError{Path: "<root>"}
}

func has(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}

func typeHintOf(raw map[string]interface{}) string {
	t, _ := raw["@type"].(string)
	return t
}

func (m *Metadata) buildTableGroup(raw map[string]interface{}) error {
	tg := &m.TableGroup
	tg.ID, _ = raw["@id"].(string)
	if dir, ok := raw["tableDirection"].(string); ok {
		if validDirection(dir) {
			tg.TableDirection = dir
		} else {
			m.diag.Warnf("invalid tableDirection %q, using default", dir)
			tg.TableDirection = "default"
		}
	} else {
		tg.TableDirection = "default"
	}
	if notes, ok := raw["notes"].([]interface{}); ok {
		tg.Notes = notes
	}
	tg.Inherited = m.parseInherited(raw)
	tg.Extra = extraProperties(raw, tableGroupPropertyNames)

	if dialectRaw, ok := raw["dialect"]; ok {
		idx, err := m.buildDialect(dialectRaw)
		if err != nil {
			return err
		}
		tg.DialectIdx = idx
	}
	if schemaRaw, ok := raw["tableSchema"]; ok {
		idx, err := m.buildSchema(schemaRaw, MetaTableGroup, 0)
		if err != nil {
			return err
		}
		tg.SchemaIdx = idx
	}
	if transRaw, ok := raw["transformations"].([]interface{}); ok {
		for _, t := range transRaw {
			idx, err := m.buildTransformation(t, -1)
			if err != nil {
				return err
			}
			tg.TransformIdx = append(tg.TransformIdx, idx)
		}
	}

	tablesRaw, ok := raw["tables"].([]interface{})
	if !ok || len(tablesRaw) == 0 {
		return &MetadataValidationError{Messages: []string{"tables: required property missing or empty"}}
	}
	for _, tr := range tablesRaw {
		idx, err := m.buildTable(tr)
		if err != nil {
			return err
		}
		tg.TableIdx = append(tg.TableIdx, idx)
	}
	return nil
}

func (m *Metadata) buildSingleTable(raw map[string]interface{}) error {
	m.TableGroup.TableDirection = "default"
	idx, err := m.buildTable(raw)
	if err != nil {
		return err
	}
	m.TableGroup.TableIdx = []int{idx}
	return nil
}

func (m *Metadata) buildTable(raw interface{}) (int, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return 0, &MetadataTypeError{Path: "tables[]"}
	}
	t := Table{SchemaIdx: -1, DialectIdx: -1, m: m}
	url, _ := obj["url"].(string)
	if url == "" {
		return 0, &MetadataValidationError{Messages: []string{"table: required property 'url' missing"}}
	}
	t.URL = m.vctx.Resolve(url)
	t.ID, _ = obj["@id"].(string)
	if v, ok := obj["suppressOutput"]; ok {
		t.SuppressOutput = truthy(v)
	}
	if dir, ok := obj["tableDirection"].(string); ok {
		if validDirection(dir) {
			t.TableDirection = dir
		} else {
			m.diag.Warnf("invalid tableDirection %q, using default", dir)
			t.TableDirection = "default"
		}
	} else {
		t.TableDirection = "default"
	}
	if notes, ok := obj["notes"].([]interface{}); ok {
		t.Notes = notes
	}
	t.Inherited = m.parseInherited(obj)
	t.Extra = extraProperties(obj, tablePropertyNames)

	idx := len(m.Tables)
	t.index = idx
	m.Tables = append(m.Tables, t)

	if dialectRaw, ok := obj["dialect"]; ok {
		dIdx, err := m.buildDialect(dialectRaw)
		if err != nil {
			return 0, err
		}
		m.Tables[idx].DialectIdx = dIdx
	}
	if schemaRaw, ok := obj["tableSchema"]; ok {
		sIdx, err := m.buildSchema(schemaRaw, MetaTable, idx)
		if err != nil {
			return 0, err
		}
		m.Tables[idx].SchemaIdx = sIdx
	}
	if transRaw, ok := obj["transformations"].([]interface{}); ok {
		for _, tr := range transRaw {
			tIdx, err := m.buildTransformation(tr, idx)
			if err != nil {
				return 0, err
			}
			m.Tables[idx].TransformIdx = append(m.Tables[idx].TransformIdx, tIdx)
		}
	}
	return idx, nil
}

func (m *Metadata) buildSchema(raw interface{}, parentKind MetaKind, parentIdx int) (int, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		if s, ok := raw.(string); ok {
			m.diag.Warnf("tableSchema as remote URL %q is not loaded during Parse; fetch and merge separately", s)
			obj = map[string]interface{}{}
		} else {
			return 0, &MetadataTypeError{Path: "tableSchema"}
		}
	}
	schema := Schema{ParentKind: parentKind, ParentIdx: parentIdx, m: m}
	schema.ID, _ = obj["@id"].(string)
	schema.Inherited = m.parseInherited(obj)
	schema.Extra = extraProperties(obj, schemaPropertyNames)
	if pk, ok := obj["primaryKey"]; ok {
		schema.PrimaryKey = normalizeColumnReference(pk)
	}
	idx := len(m.Schemas)
	m.Schemas = append(m.Schemas, schema)

	if colsRaw, ok := obj["columns"].([]interface{}); ok {
		number := 1
		seenVirtual := false
		for _, c := range colsRaw {
			cIdx, virtual, err := m.buildColumn(c, idx, number)
			if err != nil {
				return 0, err
			}
			if virtual {
				seenVirtual = true
			} else if seenVirtual {
				m.diag.Warnf("non-virtual column after virtual column at position %d", number)
			}
			m.Schemas[idx].ColumnIdx = append(m.Schemas[idx].ColumnIdx, cIdx)
			number++
		}
	}
	if fks, ok := obj["foreignKeys"].([]interface{}); ok {
		for _, fk := range fks {
			parsed, err := m.buildForeignKey(fk)
			if err != nil {
				m.diag.Warnf("invalid foreignKey: %v", err)
				continue
			}
			m.Schemas[idx].ForeignKeys = append(m.Schemas[idx].ForeignKeys, parsed)
		}
	}
	return idx, nil
}

func (m *Metadata) buildColumn(raw interface{}, schemaIdx, number int) (int, bool, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return 0, false, &MetadataTypeError{Path: "columns[]"}
	}
	col := Column{SchemaIdx: schemaIdx, Number: number, m: m}
	col.Name, _ = obj["name"].(string)
	if col.Name != "" {
		if strings.HasPrefix(col.Name, "_col") || !columnNamePattern.MatchString(col.Name) {
			m.diag.Warnf("invalid or reserved column name %q, dropping", col.Name)
			col.Name = ""
		}
	}
	col.ID, _ = obj["@id"].(string)
	col.Titles = normalizeNaturalLanguage(obj["titles"], m.diag)
	if v, ok := obj["virtual"]; ok {
		col.Virtual = truthy(v)
	}
	if v, ok := obj["suppressOutput"]; ok {
		col.SuppressOutput = truthy(v)
	}
	col.Inherited = m.parseInherited(obj)
	col.Extra = extraProperties(obj, columnPropertyNames)
	idx := len(m.Columns)
	m.Columns = append(m.Columns, col)
	return idx, col.Virtual, nil
}

func (m *Metadata) buildForeignKey(raw interface{}) (ForeignKey, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return ForeignKey{}, fmt.Errorf("foreignKey entry is not an object")
	}
	var fk ForeignKey
	if cr, ok := obj["columnReference"]; ok {
		fk.ColumnReference = normalizeColumnReference(cr)
	} else if cols, ok := obj["columns"]; ok {
		m.diag.Warnf("foreignKey uses legacy 'columns'; normalizing to columnReference")
		fk.ColumnReference = normalizeColumnReference(cols)
	}
	refRaw, ok := obj["reference"].(map[string]interface{})
	if !ok {
		return fk, fmt.Errorf("missing 'reference'")
	}
	hasResource, hasSchemaRef := false, false
	if res, ok := refRaw["resource"].(string); ok {
		fk.ReferenceResource = m.vctx.Resolve(res)
		hasResource = true
	}
	if sref, ok := refRaw["schemaReference"].(string); ok {
		fk.ReferenceSchemaID = sref
		hasSchemaRef = true
	}
	if hasResource && hasSchemaRef {
		return fk, fmt.Errorf("reference must not have both 'resource' and 'schemaReference'")
	}
	if cr, ok := refRaw["columnReference"]; ok {
		fk.ReferenceColumnReference = normalizeColumnReference(cr)
	} else if cols, ok := refRaw["columns"]; ok {
		fk.ReferenceColumnReference = normalizeColumnReference(cols)
	}
	return fk, nil
}

func (m *Metadata) buildDialect(raw interface{}) (int, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return 0, &MetadataTypeError{Path: "dialect"}
	}
	d := DefaultDialect()
	if v, ok := obj["commentPrefix"].(string); ok {
		if len([]rune(v)) == 1 {
			d.CommentPrefix = v
		} else {
			m.diag.Warnf("dialect.commentPrefix must be one character, using default")
		}
	}
	if v, ok := obj["delimiter"].(string); ok {
		if len([]rune(v)) == 1 {
			d.Delimiter = v
		} else {
			m.diag.Warnf("dialect.delimiter must be one character, using default")
		}
	}
	if v, ok := obj["quoteChar"]; ok {
		if v == nil {
			d.QuoteChar = ""
		} else if s, ok := v.(string); ok && len([]rune(s)) == 1 {
			d.QuoteChar = s
		} else {
			m.diag.Warnf("dialect.quoteChar must be one character, using default")
		}
	}
	if v, ok := obj["doubleQuote"]; ok {
		d.DoubleQuote = truthy(v)
	}
	if v, ok := obj["encoding"].(string); ok {
		d.Encoding = v
	}
	headerExplicit := false
	if v, ok := obj["header"]; ok {
		d.Header = truthy(v)
		headerExplicit = true
	}
	if v, ok := obj["headerRowCount"]; ok {
		d.HeaderRowCount = intOf(v)
	} else if headerExplicit {
		if d.Header {
			d.HeaderRowCount = 1
		} else {
			d.HeaderRowCount = 0
		}
	}
	if v, ok := obj["lineTerminators"]; ok {
		d.LineTerminators = stringListOf(v)
	}
	if v, ok := obj["skipBlankRows"]; ok {
		d.SkipBlankRows = truthy(v)
	}
	if v, ok := obj["skipColumns"]; ok {
		d.SkipColumns = intOf(v)
	}
	if v, ok := obj["skipInitialSpace"]; ok {
		d.SkipInitialSpace = truthy(v)
	}
	if v, ok := obj["skipRows"]; ok {
		d.SkipRows = intOf(v)
	}
	if v, ok := obj["trim"]; ok {
		switch vv := v.(type) {
		case bool:
			if vv {
				d.Trim = "true"
			} else {
				d.Trim = "false"
			}
		case string:
			if vv == "true" || vv == "false" || vv == "start" || vv == "end" {
				d.Trim = vv
			} else {
				m.diag.Warnf("invalid dialect.trim %q, using default", vv)
			}
		}
	} else if d.SkipInitialSpace {
		d.Trim = "start"
	}
	idx := len(m.Dialects)
	m.Dialects = append(m.Dialects, d)
	return idx, nil
}

func (m *Metadata) buildTransformation(raw interface{}, tableIdx int) (int, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return 0, &MetadataTypeError{Path: "transformations[]"}
	}
	tr := Transformation{TableIdx: tableIdx}
	tr.URL, _ = obj["url"].(string)
	tr.TargetFormat, _ = obj["targetFormat"].(string)
	tr.ScriptFormat, _ = obj["scriptFormat"].(string)
	tr.Source, _ = obj["source"].(string)
	if tr.URL == "" || tr.TargetFormat == "" || tr.ScriptFormat == "" {
		return 0, &MetadataValidationError{Messages: []string{
			"transformation: required properties 'url', 'targetFormat', 'scriptFormat' must all be present"}}
	}
	tr.Titles = normalizeNaturalLanguage(obj["titles"], m.diag)
	idx := len(m.Transforms)
	m.Transforms = append(m.Transforms, tr)
	return idx, nil
}

func (m *Metadata) parseInherited(obj map[string]interface{}) InheritedProperties {
	var ip InheritedProperties
	if v, ok := obj["aboutUrl"].(string); ok {
		ip.AboutURL = &v
	}
	if v, ok := obj["propertyUrl"].(string); ok {
		ip.PropertyURL = &v
	}
	if v, ok := obj["valueUrl"].(string); ok {
		ip.ValueURL = &v
	}
	if v, ok := obj["datatype"]; ok {
		ip.Datatype = m.parseDatatype(v)
	}
	if v, ok := obj["default"].(string); ok {
		ip.Default = &v
	}
	if v, ok := obj["lang"].(string); ok {
		if isValidLangTag(v) {
			ip.Lang = &v
		} else {
			m.diag.Warnf("invalid lang %q, dropping", v)
		}
	}
	if v, ok := obj["null"]; ok {
		nulls := stringListOf(v)
		ip.Null = &nulls
	}
	if v, ok := obj["ordered"]; ok {
		b := truthy(v)
		ip.Ordered = &b
	}
	if v, ok := obj["required"]; ok {
		b := truthy(v)
		ip.Required = &b
	}
	if v, ok := obj["separator"].(string); ok {
		ip.Separator = &v
	}
	if v, ok := obj["textDirection"].(string); ok {
		if validDirection(v) {
			ip.TextDirection = &v
		} else {
			m.diag.Warnf("invalid textDirection %q, dropping", v)
		}
	}
	return ip
}

// resolveDatatypeBase validates a datatype "base" that is not one of the
// built-in XSD/CSVW names: per the requirement that such a base must be an
// absolute IRI naming a custom datatype, it is kept as-is when it validates
// as one, and otherwise dropped to "string" with a warning.
func (m *Metadata) resolveDatatypeBase(base string) string {
	if base == "" {
		return "string"
	}
	if _, ok := lookupDatatype(base); ok {
		return base
	}
	if err := ValidateIRI(base); err != nil {
		m.diag.Warnf("unknown datatype base %q is not a built-in name or a valid absolute IRI, using string: %v", base, err)
		return "string"
	}
	if parsed, err := url.Parse(base); err != nil || !parsed.IsAbs() {
		m.diag.Warnf("unknown datatype base %q is not a built-in name or a valid absolute IRI, using string", base)
		return "string"
	}
	return base
}

func (m *Metadata) parseDatatype(raw interface{}) *Datatype {
	switch v := raw.(type) {
	case string:
		return &Datatype{Base: m.resolveDatatypeBase(v)}
	case map[string]interface{}:
		dt := &Datatype{}
		base, _ := v["base"].(string)
		dt.Base = m.resolveDatatypeBase(base)
		dt.Format = v["format"]
		if l, ok := v["length"]; ok {
			n := intOf(l)
			dt.Length = &n
		}
		if l, ok := v["minLength"]; ok {
			n := intOf(l)
			dt.MinLength = &n
		}
		if l, ok := v["maxLength"]; ok {
			n := intOf(l)
			dt.MaxLength = &n
		}
		dt.Minimum = stringOrNumber(v["minimum"])
		dt.Maximum = stringOrNumber(v["maximum"])
		dt.MinInclusive = stringOrNumber(v["minInclusive"])
		dt.MaxInclusive = stringOrNumber(v["maxInclusive"])
		dt.MinExclusive = stringOrNumber(v["minExclusive"])
		dt.MaxExclusive = stringOrNumber(v["maxExclusive"])
		if dt.Length != nil {
			if dt.MinLength != nil && *dt.MinLength != *dt.Length {
				m.diag.Warnf("datatype.minLength conflicts with length, dropping minLength")
				dt.MinLength = nil
			}
			if dt.MaxLength != nil && *dt.MaxLength != *dt.Length {
				m.diag.Warnf("datatype.maxLength conflicts with length, dropping maxLength")
				dt.MaxLength = nil
			}
		}
		return dt
	default:
		return &Datatype{Base: "string"}
	}
}

// normalize runs the whole graph's JSON-LD annotation content (notes and
// ":"-named extra properties) through the registered context so bare
// strings wrap into value objects, "@id" resolves, "@type" vocab-expands,
// and annotation property names expand to full IRIs.
func (m *Metadata) normalize() {
	ctx := context.Background()
	if m.opts != nil && m.opts.Context != nil {
		ctx = m.opts.Context
	}
	m.TableGroup.Notes = m.normalizeNotes(ctx, m.TableGroup.Notes)
	m.TableGroup.Extra = m.normalizeExtra(ctx, m.TableGroup.Extra)
	for i := range m.Tables {
		m.Tables[i].Notes = m.normalizeNotes(ctx, m.Tables[i].Notes)
		m.Tables[i].Extra = m.normalizeExtra(ctx, m.Tables[i].Extra)
	}
	for i := range m.Schemas {
		m.Schemas[i].Extra = m.normalizeExtra(ctx, m.Schemas[i].Extra)
	}
	for i := range m.Columns {
		m.Columns[i].Extra = m.normalizeExtra(ctx, m.Columns[i].Extra)
	}
}

// normalizeNotes runs every "notes" entry through JSON-LD value-object
// expansion, leaving an entry unchanged (with a diagnostic) if it is not a
// valid value object (for instance mixing "@type" and "@language").
func (m *Metadata) normalizeNotes(ctx context.Context, notes []interface{}) []interface{} {
	if len(notes) == 0 {
		return notes
	}
	out := make([]interface{}, len(notes))
	for i, n := range notes {
		out[i] = m.normalizeAnnotationValue(ctx, n)
	}
	return out
}

// normalizeExtra expands every ":"-named annotation key to a full IRI (via
// the registered prefixes) and its value through JSON-LD normalization.
// Keys that are not annotation names (no ":") are left as-is for Validate
// to reject.
func (m *Metadata) normalizeExtra(ctx context.Context, extra map[string]interface{}) map[string]interface{} {
	if len(extra) == 0 {
		return extra
	}
	out := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		if !isAnnotationPropertyName(k) {
			out[k] = v
			continue
		}
		key := m.vctx.ExpandTerm(k)
		out[key] = m.normalizeAnnotationValue(ctx, v)
	}
	return out
}

// normalizeAnnotationValue expands a single annotation value through
// json-gold. On expansion failure (e.g. a value object illegally carrying
// both "@type" and "@language") it records a diagnostic and returns the
// value unchanged.
func (m *Metadata) normalizeAnnotationValue(ctx context.Context, v interface{}) interface{} {
	expanded, err := m.vctx.ExpandAnnotation(ctx, v)
	if err != nil {
		m.diag.Warnf("annotation normalization failed, leaving value as-is: %v", err)
		return v
	}
	return expanded
}

// Validate runs the documented validation rules and returns every violation
// found; an empty result means the graph is valid.
func (m *Metadata) Validate() []string {
	var errs []string
	errs = append(errs, checkPropertyNames("table group", m.TableGroup.Extra)...)
	if len(m.TableGroup.TableIdx) == 0 {
		errs = append(errs, "tables: required property missing or empty")
	}
	seenURLs := map[string]bool{}
	for _, tIdx := range m.TableGroup.TableIdx {
		t := &m.Tables[tIdx]
		errs = append(errs, checkPropertyNames(fmt.Sprintf("table %q", t.URL), t.Extra)...)
		if t.URL == "" {
			errs = append(errs, "table: required property 'url' missing")
			continue
		}
		if seenURLs[t.URL] {
			errs = append(errs, fmt.Sprintf("duplicate table url %q", t.URL))
		}
		seenURLs[t.URL] = true
		if t.SchemaIdx >= 0 {
			errs = append(errs, m.validateSchema(t.SchemaIdx)...)
		}
	}
	for i := range m.Transforms {
		tr := &m.Transforms[i]
		if tr.URL == "" || tr.TargetFormat == "" || tr.ScriptFormat == "" {
			errs = append(errs, "transformation: required properties 'url', 'targetFormat', 'scriptFormat' must all be present")
		}
	}
	return errs
}

// checkPropertyNames reports every key of extra that is not a recognized
// JSON-LD annotation name (one containing ":"): anything else is a CSVW
// property name validation does not recognize.
func checkPropertyNames(where string, extra map[string]interface{}) []string {
	var errs []string
	for name := range extra {
		if !isAnnotationPropertyName(name) {
			errs = append(errs, fmt.Sprintf("invalid property %q on %s", name, where))
		}
	}
	return errs
}

func (m *Metadata) validateSchema(schemaIdx int) []string {
	var errs []string
	schema := &m.Schemas[schemaIdx]
	errs = append(errs, checkPropertyNames("schema", schema.Extra)...)
	if strings.HasPrefix(schema.ID, "_:") {
		errs = append(errs, "@id must not begin with '_:'")
	}
	seenNames := map[string]bool{}
	for _, cIdx := range schema.ColumnIdx {
		col := &m.Columns[cIdx]
		errs = append(errs, checkPropertyNames(fmt.Sprintf("column %q", col.Name), col.Extra)...)
		if col.Name == "" {
			continue
		}
		if seenNames[col.Name] {
			errs = append(errs, fmt.Sprintf("duplicate column name %q", col.Name))
		}
		seenNames[col.Name] = true
	}
	for _, name := range schema.PrimaryKey {
		if !seenNames[name] {
			errs = append(errs, fmt.Sprintf("primaryKey references unknown column %q", name))
		}
	}
	for _, fk := range schema.ForeignKeys {
		for _, name := range fk.ColumnReference {
			if !seenNames[name] {
				errs = append(errs, fmt.Sprintf("foreignKey references unknown column %q", name))
			}
		}
		switch {
		case fk.ReferenceResource != "" && fk.ReferenceSchemaID != "":
			errs = append(errs, "foreignKey reference must not have both 'resource' and 'schemaReference'")
		case fk.ReferenceResource != "":
			if !m.hasTableWithURL(fk.ReferenceResource) {
				errs = append(errs, fmt.Sprintf("invalid property 'foreignKeys': table referenced by %s not found", fk.ReferenceResource))
			}
		case fk.ReferenceSchemaID != "":
			if !m.hasSchemaWithID(fk.ReferenceSchemaID) {
				errs = append(errs, fmt.Sprintf("invalid property 'foreignKeys': schema referenced by %s not found", fk.ReferenceSchemaID))
			}
		default:
			errs = append(errs, "foreignKey reference must have 'resource' or 'schemaReference'")
		}
	}
	return errs
}

func (m *Metadata) hasTableWithURL(url string) bool {
	count := 0
	for _, idx := range m.TableGroup.TableIdx {
		if m.Tables[idx].URL == url {
			count++
		}
	}
	return count == 1
}

func (m *Metadata) hasSchemaWithID(id string) bool {
	count := 0
	for _, idx := range m.TableGroup.TableIdx {
		t := &m.Tables[idx]
		if t.SchemaIdx >= 0 && m.Schemas[t.SchemaIdx].ID == id {
			count++
		}
	}
	return count == 1
}

// inheritedChain returns the ancestor InheritedProperties for a column,
// nearest first: column, schema, table (if any), table group.
func (m *Metadata) inheritedChain(colIdx int) []*InheritedProperties {
	col := &m.Columns[colIdx]
	schema := &m.Schemas[col.SchemaIdx]
	chain := []*InheritedProperties{&col.Inherited, &schema.Inherited}
	if schema.ParentKind == MetaTable {
		table := &m.Tables[schema.ParentIdx]
		chain = append(chain, &table.Inherited)
	}
	chain = append(chain, &m.TableGroup.Inherited)
	return chain
}

func resolveStringProp(chain []*InheritedProperties, get func(*InheritedProperties) *string, def string) string {
	for _, ip := range chain {
		if v := get(ip); v != nil {
			return *v
		}
	}
	return def
}

func resolveBoolProp(chain []*InheritedProperties, get func(*InheritedProperties) *bool, def bool) bool {
	for _, ip := range chain {
		if v := get(ip); v != nil {
			return *v
		}
	}
	return def
}

func resolveStringListProp(chain []*InheritedProperties, get func(*InheritedProperties) *[]string, def []string) []string {
	for _, ip := range chain {
		if v := get(ip); v != nil {
			return *v
		}
	}
	return def
}

func resolveDatatypeProp(chain []*InheritedProperties) Datatype {
	for _, ip := range chain {
		if ip.Datatype != nil {
			return *ip.Datatype
		}
	}
	return Datatype{Base: "string"}
}

// ResolvedColumn is a Column with every inherited property resolved, built
// once per column for use by the cell interpreter and URI-template
// expansion.
type ResolvedColumn struct {
	Column
	AboutURL      string
	PropertyURL   string
	ValueURL      string
	Datatype      Datatype
	Default       string
	Lang          string
	Null          []string
	Ordered       bool
	Required      bool
	Separator     string
	HasSeparator  bool
	TextDirection string
}

// ResolveColumn computes a column's effective inherited properties by
// walking column → schema → table → table group.
func (m *Metadata) ResolveColumn(colIdx int) ResolvedColumn {
	chain := m.inheritedChain(colIdx)
	rc := ResolvedColumn{Column: m.Columns[colIdx]}
	rc.AboutURL = resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.AboutURL }, "")
	rc.PropertyURL = resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.PropertyURL }, "")
	rc.ValueURL = resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.ValueURL }, "")
	rc.Datatype = resolveDatatypeProp(chain)
	rc.Default = resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.Default }, "")
	rc.Lang = resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.Lang }, "und")
	rc.Null = resolveStringListProp(chain, func(ip *InheritedProperties) *[]string { return ip.Null }, []string{""})
	rc.Ordered = resolveBoolProp(chain, func(ip *InheritedProperties) *bool { return ip.Ordered }, false)
	rc.Required = resolveBoolProp(chain, func(ip *InheritedProperties) *bool { return ip.Required }, false)
	sep := resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.Separator }, "")
	for _, ip := range chain {
		if ip.Separator != nil {
			rc.HasSeparator = true
			break
		}
	}
	rc.Separator = sep
	rc.TextDirection = resolveStringProp(chain, func(ip *InheritedProperties) *string { return ip.TextDirection }, "ltr")
	return rc
}

// ResolvedDialect returns the table's own dialect, falling back to the
// table group's, falling back to DefaultDialect.
func (m *Metadata) ResolvedDialect(tableIdx int) Dialect {
	t := &m.Tables[tableIdx]
	if t.DialectIdx >= 0 {
		return m.Dialects[t.DialectIdx]
	}
	if m.TableGroup.DialectIdx >= 0 {
		return m.Dialects[m.TableGroup.DialectIdx]
	}
	return DefaultDialect()
}

// --- value coercion helpers ---

func truthy(v interface{}) bool {
	switch vv := v.(type) {
	case bool:
		return vv
	case string:
		return vv == "true" || vv == "1"
	case json.Number:
		return vv.String() == "1"
	case float64:
		return vv == 1
	default:
		return false
	}
}

func intOf(v interface{}) int {
	switch vv := v.(type) {
	case json.Number:
		n, _ := vv.Int64()
		return int(n)
	case float64:
		return int(vv)
	case string:
		n, _ := strconv.Atoi(vv)
		return n
	default:
		return 0
	}
}

func stringListOf(v interface{}) []string {
	switch vv := v.(type) {
	case string:
		return []string{vv}
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringOrNumber(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case json.Number:
		return vv.String()
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64)
	default:
		return fmt.Sprint(vv)
	}
}
