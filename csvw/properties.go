package csvw

import "strings"

// naturalLanguageValue is the normalized storage form for a natural-language
// property: a language tag to ordered value list map.
type naturalLanguageValue map[string][]string

// normalizeNaturalLanguage converts a raw JSON value (string,
// array-of-strings, or language-tag map) into the canonical
// language-tag→[]string form. An unrecognized language tag falls back to
// "und".
func normalizeNaturalLanguage(raw interface{}, diag *Diagnostics) naturalLanguageValue {
	out := naturalLanguageValue{}
	switch v := raw.(type) {
	case nil:
		return out
	case string:
		out["und"] = append(out["und"], v)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out["und"] = append(out["und"], s)
			}
		}
	case map[string]interface{}:
		for lang, val := range v {
			tag := lang
			if !isValidLangTag(tag) {
				diag.Warnf("invalid language tag %q, using und", lang)
				tag = "und"
			}
			switch vv := val.(type) {
			case string:
				out[tag] = append(out[tag], vv)
			case []interface{}:
				for _, item := range vv {
					if s, ok := item.(string); ok {
						out[tag] = append(out[tag], s)
					}
				}
			}
		}
	}
	return out
}

// mergeNaturalLanguage concatenates A's values then B's values not already
// present for each language key; afterwards it drops "und" values that
// duplicate a value under any other language, using case-folded comparison.
func mergeNaturalLanguage(a, b naturalLanguageValue) naturalLanguageValue {
	out := naturalLanguageValue{}
	for lang, vals := range a {
		out[lang] = append(out[lang], vals...)
	}
	for lang, vals := range b {
		for _, v := range vals {
			if !containsString(out[lang], v) {
				out[lang] = append(out[lang], v)
			}
		}
	}
	if und, ok := out["und"]; ok {
		filtered := und[:0:0]
		for _, v := range und {
			dup := false
			for lang, vals := range out {
				if lang == "und" {
					continue
				}
				if containsFold(vals, v) {
					dup = true
					break
				}
			}
			if !dup {
				filtered = append(filtered, v)
			}
		}
		if len(filtered) == 0 {
			delete(out, "und")
		} else {
			out["und"] = filtered
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// normalizeColumnReference accepts a string or array of strings (or a
// legacy "columns" key already routed here) and returns the canonical
// ordered name list.
func normalizeColumnReference(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// validDirection reports whether v is a recognized tableDirection/
// textDirection value.
func validDirection(v string) bool {
	switch v {
	case "rtl", "ltr", "default", "auto":
		return true
	default:
		return false
	}
}

// isAnnotationPropertyName reports whether name is a JSON-LD annotation
// term rather than a recognized CSVW property (any property name
// containing ":" is a JSON-LD annotation).
func isAnnotationPropertyName(name string) bool {
	return strings.Contains(name, ":")
}

// inheritedPropertyNames is the set of property names parseInherited
// consumes, shared by every node kind that carries inherited properties.
var inheritedPropertyNames = map[string]bool{
	"aboutUrl": true, "propertyUrl": true, "valueUrl": true, "datatype": true,
	"default": true, "lang": true, "null": true, "ordered": true,
	"required": true, "separator": true, "textDirection": true,
}

// recognizedPropertyNames unions the JSON-LD keywords common to every node
// with the inherited-property set and a node kind's own structural
// properties, producing the set buildTableGroup/buildTable/buildSchema/
// buildColumn check raw keys against.
func recognizedPropertyNames(own ...string) map[string]bool {
	out := map[string]bool{"@id": true, "@type": true, "@context": true}
	for k := range inheritedPropertyNames {
		out[k] = true
	}
	for _, k := range own {
		out[k] = true
	}
	return out
}

var tableGroupPropertyNames = recognizedPropertyNames(
	"tableDirection", "notes", "dialect", "tableSchema", "transformations", "tables",
)

var tablePropertyNames = recognizedPropertyNames(
	"url", "suppressOutput", "tableDirection", "notes", "dialect", "tableSchema", "transformations",
)

var schemaPropertyNames = recognizedPropertyNames("primaryKey", "foreignKeys", "columns")

var columnPropertyNames = recognizedPropertyNames("name", "titles", "virtual", "suppressOutput")

// extraProperties returns every key of obj not in recognized, the set
// metadata construction routes to a node's Extra map: a ":"-named key is a
// JSON-LD annotation property (per isAnnotationPropertyName) carried
// through to normalize/emit, anything else is an unrecognized CSVW
// property for Validate to reject.
func extraProperties(obj map[string]interface{}, recognized map[string]bool) map[string]interface{} {
	var out map[string]interface{}
	for k, v := range obj {
		if recognized[k] {
			continue
		}
		if out == nil {
			out = map[string]interface{}{}
		}
		out[k] = v
	}
	return out
}
