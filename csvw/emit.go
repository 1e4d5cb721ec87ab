package csvw

import (
	"context"
)

// EmitRowTriples converts one interpreted row into RDF triples: cells
// without an explicit aboutUrl share a single per-row blank node subject,
// minted from the table's blank node generator the first time the row
// needs one, cells with an aboutUrl use it directly, and a cell
// contributes no triple when its value is null or its column is
// suppressed.
func EmitRowTriples(row *Row) []Triple {
	var defaultSubject Term
	var triples []Triple
	for i := range row.Cells {
		c := &row.Cells[i]
		if c.Column.SuppressOutput || c.PropertyURL == "" {
			continue
		}
		if c.IsNull() {
			continue
		}
		subject := defaultSubject
		if c.AboutURL != "" {
			subject = IRI{Value: c.AboutURL}
		} else if subject == nil {
			defaultSubject = row.table.bnodes.next()
			subject = defaultSubject
		}
		pred := IRI{Value: c.PropertyURL}
		for _, obj := range cellObjects(c) {
			triples = append(triples, Triple{S: subject, P: pred, O: obj})
		}
	}
	return triples
}

func cellObjects(c *Cell) []Term {
	if c.ValueURL != "" {
		return []Term{IRI{Value: c.ValueURL}}
	}
	switch v := c.Value.(type) {
	case Literal:
		return []Term{v}
	case []interface{}:
		var out []Term
		for _, item := range v {
			if lit, ok := item.(Literal); ok {
				out = append(out, lit)
			}
		}
		return out
	default:
		return nil
	}
}

// EmitTableGroupNotes runs the table group's notes and any JSON-LD
// annotation properties through json-gold's ToRDF, producing the N-Quads
// text for whatever graph they describe. Table/row/cell triples (built by
// EmitRowTriples) are kept as typed Triple values rather than routed
// through json-gold, since their subjects/predicates/objects are already
// resolved IRIs and literals with no further JSON-LD context to apply.
func EmitTableGroupNotes(ctx context.Context, vctx *ValueContext, notes []interface{}) (string, error) {
	if len(notes) == 0 {
		return "", nil
	}
	doc := map[string]interface{}{
		"@context": vctx.contextDocument(),
		"@graph":   notes,
	}
	return vctx.proc.ToRDF(ctx, doc, JSONLDOptions{Context: ctx, BaseIRI: vctx.Base(), DocumentLoader: vctx.loader})
}
