package csvw

import (
	"context"
	"fmt"
)

// ValueContext carries the base URL, default language, and registered
// prefixes that metadata parsing and IRI expansion/compaction resolve
// against. Per-table rebasing (a table's link properties resolve against
// its own URL, not the table group's) happens via tableContext.tableURL in
// cell.go rather than by cloning the ValueContext.
type ValueContext struct {
	base     string
	lang     string
	prefixes map[string]string
	proc     JSONLDProcessor
	loader   DocumentLoader
}

// NewValueContext constructs a ValueContext from metadata's @context value
// (the bare CSVW namespace string, an object, or an array containing it)
// plus the options base URL and default language.
func NewValueContext(raw interface{}, opts *Options) (*ValueContext, error) {
	vc := &ValueContext{
		base:     opts.BaseURL,
		lang:     opts.DefaultLang,
		prefixes: map[string]string{},
		proc:     NewJSONLDProcessor(),
		loader:   opts.DocumentLoader,
	}
	if vc.lang == "" {
		vc.lang = "und"
	}

	switch v := raw.(type) {
	case nil:
		return vc, nil
	case string:
		if v != csvwNamespace {
			return nil, fmt.Errorf("csvw: unrecognized @context %q", v)
		}
		return vc, nil
	case []interface{}:
		found := false
		for _, item := range v {
			if s, ok := item.(string); ok && s == csvwNamespace {
				found = true
				continue
			}
			if obj, ok := item.(map[string]interface{}); ok {
				vc.applyContextObject(obj)
			}
		}
		if !found {
			return nil, fmt.Errorf("csvw: @context array missing %s", csvwNamespace)
		}
		return vc, nil
	case map[string]interface{}:
		vc.applyContextObject(v)
		return vc, nil
	default:
		return nil, fmt.Errorf("csvw: invalid @context value %T", raw)
	}
}

func (vc *ValueContext) applyContextObject(obj map[string]interface{}) {
	if base, ok := obj["@base"].(string); ok && base != "" {
		vc.base = resolveIRI(vc.base, base)
	}
	if lang, ok := obj["@language"].(string); ok && lang != "" {
		vc.lang = lang
	}
	for key, val := range obj {
		if key == "@base" || key == "@language" || key == "@vocab" {
			continue
		}
		if s, ok := val.(string); ok {
			vc.prefixes[key] = s
		}
	}
}

// Base returns the current base URL.
func (vc *ValueContext) Base() string { return vc.base }

// Lang returns the default language tag ("und" unless overridden).
func (vc *ValueContext) Lang() string { return vc.lang }

// Resolve resolves a possibly-relative IRI against the context's base URL.
// With no base URL the IRI is returned unchanged.
func (vc *ValueContext) Resolve(iri string) string {
	if iri == "" || vc.base == "" {
		return iri
	}
	return resolveIRI(vc.base, iri)
}

// ExpandTerm expands a prefixed name ("dc:description") using the
// registered prefixes, falling back to the input unchanged when no prefix
// matches (it may already be an absolute IRI or a bare CSVW property name).
func (vc *ValueContext) ExpandTerm(term string) string {
	for prefix, iri := range vc.prefixes {
		if after, ok := cutPrefix(term, prefix+":"); ok {
			return iri + after
		}
	}
	return term
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// ExpandAnnotation runs a JSON-LD annotation property value (any metadata
// value under a ":"-bearing key, or a "notes" entry) through json-gold
// expansion so its @id/@type/@value forms follow real JSON-LD semantics.
func (vc *ValueContext) ExpandAnnotation(ctx context.Context, value interface{}) (interface{}, error) {
	doc := map[string]interface{}{
		"@context": vc.contextDocument(),
		"value":    value,
	}
	expanded, err := vc.proc.Expand(ctx, doc, JSONLDOptions{
		Context:        ctx,
		BaseIRI:        vc.base,
		DocumentLoader: vc.loader,
	})
	if err != nil {
		return nil, fmt.Errorf("csvw: annotation expansion failed: %w", err)
	}
	list, ok := expanded.([]interface{})
	if !ok || len(list) == 0 {
		return value, nil
	}
	node, ok := list[0].(map[string]interface{})
	if !ok {
		return value, nil
	}
	return node["http://www.w3.org/ns/csvw#value"], nil
}

func (vc *ValueContext) contextDocument() map[string]interface{} {
	doc := map[string]interface{}{
		"value": "http://www.w3.org/ns/csvw#value",
	}
	if vc.lang != "" && vc.lang != "und" {
		doc["@language"] = vc.lang
	}
	for prefix, iri := range vc.prefixes {
		doc[prefix] = iri
	}
	return doc
}
