package csvw

import "strings"

// csvwNamespace is the metadata vocabulary namespace used to expand the
// bare "@context" string and to qualify JSON-LD annotation property terms.
const csvwNamespace = "http://www.w3.org/ns/csvw"

const xsdNamespace = "http://www.w3.org/2001/XMLSchema#"

// DatatypeKind classifies a built-in datatype's processing family, driving
// the cell interpreter's per-item dispatch in C6.
type DatatypeKind uint8

const (
	KindString DatatypeKind = iota
	KindNumeric
	KindBoolean
	KindDateTime
	KindDuration
	KindBinary
	KindOther
	KindUnsupported
)

func (k DatatypeKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "datetime"
	case KindDuration:
		return "duration"
	case KindBinary:
		return "binary"
	case KindOther:
		return "other"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// builtinDatatype describes one entry of the CSVW built-in datatype lattice:
// its canonical IRI, processing kind, and immediate supertype (for subtype
// compatibility checks).
type builtinDatatype struct {
	Name     string
	IRI      string
	Kind     DatatypeKind
	Super    string
	Ordered  bool
}

// builtinDatatypes is the CSVW §5.11.1 name table, mapping each built-in
// name to its canonical XSD or CSVW-namespace IRI.
var builtinDatatypes = map[string]builtinDatatype{
	"string":             {"string", xsdNamespace + "string", KindString, "", false},
	"normalizedString":   {"normalizedString", xsdNamespace + "normalizedString", KindString, "string", false},
	"token":              {"token", xsdNamespace + "token", KindString, "normalizedString", false},
	"language":           {"language", xsdNamespace + "language", KindString, "token", false},
	"Name":               {"Name", xsdNamespace + "Name", KindString, "token", false},
	"NCName":             {"NCName", xsdNamespace + "NCName", KindString, "Name", false},
	"boolean":            {"boolean", xsdNamespace + "boolean", KindBoolean, "", false},
	"decimal":            {"decimal", xsdNamespace + "decimal", KindNumeric, "", true},
	"integer":            {"integer", xsdNamespace + "integer", KindNumeric, "decimal", true},
	"long":               {"long", xsdNamespace + "long", KindNumeric, "integer", true},
	"int":                {"int", xsdNamespace + "int", KindNumeric, "long", true},
	"short":              {"short", xsdNamespace + "short", KindNumeric, "int", true},
	"byte":               {"byte", xsdNamespace + "byte", KindNumeric, "short", true},
	"nonNegativeInteger":  {"nonNegativeInteger", xsdNamespace + "nonNegativeInteger", KindNumeric, "integer", true},
	"positiveInteger":     {"positiveInteger", xsdNamespace + "positiveInteger", KindNumeric, "nonNegativeInteger", true},
	"unsignedLong":        {"unsignedLong", xsdNamespace + "unsignedLong", KindNumeric, "nonNegativeInteger", true},
	"unsignedInt":         {"unsignedInt", xsdNamespace + "unsignedInt", KindNumeric, "unsignedLong", true},
	"unsignedShort":       {"unsignedShort", xsdNamespace + "unsignedShort", KindNumeric, "unsignedInt", true},
	"unsignedByte":        {"unsignedByte", xsdNamespace + "unsignedByte", KindNumeric, "unsignedShort", true},
	"nonPositiveInteger":  {"nonPositiveInteger", xsdNamespace + "nonPositiveInteger", KindNumeric, "integer", true},
	"negativeInteger":     {"negativeInteger", xsdNamespace + "negativeInteger", KindNumeric, "nonPositiveInteger", true},
	"double":              {"double", xsdNamespace + "double", KindNumeric, "", true},
	"float":               {"float", xsdNamespace + "float", KindNumeric, "", true},
	"number":              {"number", xsdNamespace + "double", KindNumeric, "", true},
	"date":                {"date", xsdNamespace + "date", KindDateTime, "", true},
	"dateTime":            {"dateTime", xsdNamespace + "dateTime", KindDateTime, "", true},
	"dateTimeStamp":       {"dateTimeStamp", xsdNamespace + "dateTimeStamp", KindDateTime, "dateTime", true},
	"time":                {"time", xsdNamespace + "time", KindDateTime, "", true},
	"gDay":                {"gDay", xsdNamespace + "gDay", KindDateTime, "", false},
	"gMonth":              {"gMonth", xsdNamespace + "gMonth", KindDateTime, "", false},
	"gMonthDay":           {"gMonthDay", xsdNamespace + "gMonthDay", KindDateTime, "", false},
	"gYear":               {"gYear", xsdNamespace + "gYear", KindDateTime, "", true},
	"gYearMonth":          {"gYearMonth", xsdNamespace + "gYearMonth", KindDateTime, "", true},
	"duration":            {"duration", xsdNamespace + "duration", KindDuration, "", false},
	"dayTimeDuration":     {"dayTimeDuration", xsdNamespace + "dayTimeDuration", KindDuration, "duration", false},
	"yearMonthDuration":   {"yearMonthDuration", xsdNamespace + "yearMonthDuration", KindDuration, "duration", false},
	"hexBinary":           {"hexBinary", xsdNamespace + "hexBinary", KindBinary, "", false},
	"base64Binary":        {"base64Binary", xsdNamespace + "base64Binary", KindBinary, "", false},
	"anyURI":              {"anyURI", xsdNamespace + "anyURI", KindOther, "", false},
	"QName":               {"QName", xsdNamespace + "QName", KindOther, "", false},
	"json":                {"json", csvwNamespace + "#json", KindOther, "", false},
	"xml":                 {"xml", xsdNamespace + "anyAtomicType", KindOther, "", false},
	"html":                {"html", xsdNamespace + "anyAtomicType", KindOther, "", false},
	"anyAtomicType":       {"anyAtomicType", xsdNamespace + "anyAtomicType", KindOther, "", false},
	"any":                 {"any", xsdNamespace + "anyAtomicType", KindOther, "", false},

	"anyType":      {"anyType", xsdNamespace + "anyType", KindUnsupported, "", false},
	"anySimpleType": {"anySimpleType", xsdNamespace + "anySimpleType", KindUnsupported, "", false},
	"ENTITIES":     {"ENTITIES", xsdNamespace + "ENTITIES", KindUnsupported, "", false},
	"IDREFS":       {"IDREFS", xsdNamespace + "IDREFS", KindUnsupported, "", false},
	"NMTOKENS":     {"NMTOKENS", xsdNamespace + "NMTOKENS", KindUnsupported, "", false},
	"ENTITY":       {"ENTITY", xsdNamespace + "ENTITY", KindUnsupported, "", false},
	"ID":           {"ID", xsdNamespace + "ID", KindUnsupported, "", false},
	"IDREF":        {"IDREF", xsdNamespace + "IDREF", KindUnsupported, "", false},
	"NOTATION":     {"NOTATION", xsdNamespace + "NOTATION", KindUnsupported, "", false},
}

// stringLikeBases is the set of bases exempt from pre-normalize whitespace
// folding (C6 step 1) and treated as "keep raw lexical form" throughout.
var stringLikeBases = map[string]bool{
	"string": true, "json": true, "xml": true, "html": true, "anyAtomicType": true, "any": true,
}

// lookupDatatype resolves a base name (or absolute IRI) to its builtin
// entry. ok is false for an unrecognized name that is not an absolute IRI,
// which is treated as invalid.
func lookupDatatype(base string) (builtinDatatype, bool) {
	if dt, ok := builtinDatatypes[base]; ok {
		return dt, true
	}
	if strings.Contains(base, "://") {
		return builtinDatatype{Name: base, IRI: base, Kind: KindOther}, true
	}
	return builtinDatatype{}, false
}

// isOrderedDatatype reports whether base supports minimum/maximum/
// minInclusive/maxInclusive/minExclusive/maxExclusive facets
// (bounds apply only to ordered types).
func isOrderedDatatype(base string) bool {
	dt, ok := lookupDatatype(base)
	return ok && dt.Ordered
}

// isSubtype reports whether child is base or a descendant of base in the
// built-in lattice, used by parseNumeric to recognize integer-family
// datatypes.
func isSubtype(child, base string) bool {
	for name := child; name != ""; {
		if name == base {
			return true
		}
		dt, ok := builtinDatatypes[name]
		if !ok {
			return false
		}
		name = dt.Super
	}
	return false
}
