package csvw

import (
	"fmt"
	"strings"
)

// interpretCellValue runs one raw field value through the value half of
// the cell pipeline: pre-normalization, default substitution, list
// splitting, and per-item null/datatype/facet processing. aboutUrl/
// propertyUrl/valueUrl template expansion happens separately, once every
// column's value in the row is known (see expandCellTemplates) — a
// template may reference any sibling column regardless of position.
func interpretCellValue(row *Row, col ResolvedColumn, raw string) Cell {
	cell := Cell{Column: col, StringValue: raw, Row: row}

	pre := preNormalize(raw, col.Datatype.Base)
	if pre == "" {
		pre = col.Default
	}

	var rawItems []string
	switch {
	case col.HasSeparator && pre == "":
		rawItems = nil
	case col.HasSeparator:
		rawItems = strings.Split(pre, col.Separator)
	default:
		rawItems = []string{pre}
	}

	items := make([]interface{}, 0, len(rawItems))
	for _, raw := range rawItems {
		val, errMsg := interpretItem(raw, col)
		if errMsg != "" {
			cell.Errors = append(cell.Errors, errMsg)
		}
		items = append(items, val)
	}

	if col.HasSeparator {
		cell.Value = items
	} else if len(items) > 0 {
		cell.Value = items[0]
	}

	if col.Required && cell.IsNull() {
		cell.Errors = append(cell.Errors, fmt.Sprintf("%s is a required column and must not be null", col.Name))
	}
	return cell
}

// expandCellTemplates resolves a cell's aboutUrl/propertyUrl/valueUrl
// templates against the row's post-processed column values. row.Cells
// must already hold every column's interpreted value (interpretCellValue
// run for the whole row) before this is called.
func expandCellTemplates(tc *tableContext, cell *Cell) {
	col := cell.Column
	vars := cellTemplateVars(cell.Row, col)
	base := tc.tableURL
	if col.AboutURL != "" {
		cell.AboutURL = resolveIRI(base, expandURITemplate(col.AboutURL, vars))
	}
	if col.PropertyURL != "" {
		cell.PropertyURL = resolveIRI(base, expandURITemplate(col.PropertyURL, vars))
	}
	if col.ValueURL != "" && !(cell.IsNull() && !col.Virtual) {
		cell.ValueURL = resolveIRI(base, expandURITemplate(col.ValueURL, vars))
	}
}

// cellMappedValue returns a cell's post-processed string value used in
// template expansion: a single value's canonical lexical form, or list
// items joined by the column's separator (falling back to ",").
func cellMappedValue(c *Cell) string {
	switch v := c.Value.(type) {
	case Literal:
		return v.Lexical
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if lit, ok := item.(Literal); ok {
				parts = append(parts, lit.Lexical)
			}
		}
		sep := c.Column.Separator
		if sep == "" {
			sep = ","
		}
		return strings.Join(parts, sep)
	default:
		return ""
	}
}

// preNormalize applies the line-ending/whitespace folding all non-string
// datatypes receive before default substitution: CR, tab, and BEL collapse
// to a plain space, and (except for normalizedString, which keeps internal
// whitespace) runs of whitespace collapse to one and the ends are trimmed.
func preNormalize(s, base string) string {
	if stringLikeBases[base] {
		return s
	}
	s = strings.NewReplacer("\r", " ", "\t", " ", "\x07", " ").Replace(s)
	if base != "normalizedString" {
		s = strings.Join(strings.Fields(s), " ")
	}
	return s
}

// interpretItem processes one list item (or the sole item of a
// non-separator cell): per-item trimming and default re-substitution for
// non-string bases, null-value matching, length-facet checking, and
// datatype dispatch. It returns the interpreted value and a non-empty
// message when the value failed validation (the cell still gets a
// best-effort literal so downstream consumers are never handed nil
// unexpectedly for a non-null cell).
func interpretItem(item string, col ResolvedColumn) (interface{}, string) {
	base := col.Datatype.Base
	if !stringLikeBases[base] {
		item = strings.TrimSpace(item)
		if item == "" {
			item = col.Default
		}
	}
	if containsString(col.Null, item) {
		return nil, ""
	}

	info, ok := lookupDatatype(base)
	if !ok {
		return Literal{Lexical: item, Lang: col.Lang}, fmt.Sprintf("%s is not a valid datatype name", base)
	}
	if info.Kind == KindUnsupported {
		return Literal{Lexical: item}, fmt.Sprintf("%s uses unsupported datatype %s", item, base)
	}

	if info.Kind == KindString || info.Kind == KindBinary {
		if reason := checkLengthFacets(item, col.Datatype); reason != "" {
			return Literal{Lexical: item, Lang: col.Lang}, fmt.Sprintf("%s is not a valid %s: %s", item, base, reason)
		}
	}

	val, reason := dispatchDatatype(item, col)
	if reason != "" {
		return val, fmt.Sprintf("%s is not a valid %s", item, reason)
	}
	return val, ""
}

// dispatchDatatype converts item's lexical form into an RDF-ready Literal
// per the datatype's processing kind. reason is non-empty (naming the
// failing constraint) when the value is lexically or facet-invalid; the
// literal returned is still the best-effort lexical form.
func dispatchDatatype(item string, col ResolvedColumn) (interface{}, string) {
	dt := col.Datatype
	info, _ := lookupDatatype(dt.Base)
	switch info.Kind {
	case KindNumeric:
		return parseNumeric(item, dt)
	case KindBoolean:
		return parseBoolean(item, dt)
	case KindDateTime:
		return parseDateTimeValue(item, dt)
	case KindDuration:
		return parseDuration(item, dt)
	case KindBinary:
		return Literal{Lexical: item, Datatype: IRI{Value: info.IRI}}, ""
	default:
		if dt.Base == "json" {
			canonical, err := canonicalizeJSONLiteralString(item)
			if err != nil {
				return Literal{Lexical: item}, "json"
			}
			return Literal{Lexical: canonical, Datatype: IRI{Value: info.IRI}}, ""
		}
		if pattern, ok := dt.Format.(string); ok && pattern != "" {
			if !matchFormatLiteral(item, pattern) {
				return Literal{Lexical: item, Lang: col.Lang}, dt.Base
			}
		}
		if dt.Base == "string" || dt.Base == "" {
			return Literal{Lexical: item, Lang: col.Lang}, ""
		}
		return Literal{Lexical: item, Datatype: IRI{Value: info.IRI}}, ""
	}
}

func allNil(items []interface{}) bool {
	for _, it := range items {
		if it != nil {
			return false
		}
	}
	return true
}
