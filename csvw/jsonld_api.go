package csvw

import (
	"context"
	"encoding/json"
	"fmt"

	ld "github.com/piprate/json-gold/ld"
)

// jsonLiteralPlaceholderIRI tags a literal so json-gold's ToRDF preserves it
// as a datatype-carrying string instead of trying to interpret its shape.
const jsonLiteralPlaceholderIRI = "urn:json:literal"

// JSONLDOptions configures JSON-LD context processing used by the value
// context (C1) to expand @context documents and JSON-LD annotation
// properties (any metadata property name containing ":", per the
// validation rule: a property name containing ":" is a JSON-LD term).
type JSONLDOptions struct {
	// Context cancels JSON-LD work when done.
	Context context.Context
	// BaseIRI resolves relative IRIs during expansion.
	BaseIRI string
	// ProcessingMode selects "json-ld-1.0" or "json-ld-1.1" semantics.
	ProcessingMode string
	// ExpandContext supplies an external context for expansion, used when
	// a metadata node's own @context is absent.
	ExpandContext interface{}
	// DocumentLoader resolves remote contexts (e.g. a prefix mapping
	// document referenced from @context).
	DocumentLoader DocumentLoader
}

// DocumentLoader resolves remote JSON-LD contexts and metadata documents.
// It is the file/HTTP collaborator left to the caller to supply.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, iri string) (RemoteDocument, error)
}

// RemoteDocument is a fetched JSON-LD or CSVW metadata document.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// JSONLDProcessor exposes the subset of JSON-LD algorithms the value
// context and the notes emitter (emit.go) depend on.
type JSONLDProcessor interface {
	// Expand runs JSON-LD expansion, used to resolve compact IRIs and
	// JSON-LD annotation properties against a CSVW @context.
	Expand(ctx context.Context, input interface{}, opts JSONLDOptions) (interface{}, error)
	// Compact runs JSON-LD compaction against the given context.
	Compact(ctx context.Context, input interface{}, context interface{}, opts JSONLDOptions) (interface{}, error)
	// ToRDF converts an expanded JSON-LD document to N-Quads text, used by
	// the optional RDF emission path (emit.go) for the `json` datatype
	// and for any `notes`/annotation properties carried through to RDF.
	ToRDF(ctx context.Context, input interface{}, opts JSONLDOptions) (string, error)
}

type defaultJSONLDProcessor struct{}

// NewJSONLDProcessor returns the default json-gold-backed processor.
func NewJSONLDProcessor() JSONLDProcessor { return &defaultJSONLDProcessor{} }

func (p *defaultJSONLDProcessor) Expand(ctx context.Context, input interface{}, opts JSONLDOptions) (interface{}, error) {
	if err := checkDecodeContext(ctx); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newJSONGoldOptions(ctx, opts)
	return proc.Expand(input, goldOpts)
}

func (p *defaultJSONLDProcessor) Compact(ctx context.Context, input interface{}, context interface{}, opts JSONLDOptions) (interface{}, error) {
	if err := checkDecodeContext(ctx); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newJSONGoldOptions(ctx, opts)
	return proc.Compact(input, context, goldOpts)
}

func (p *defaultJSONLDProcessor) ToRDF(ctx context.Context, input interface{}, opts JSONLDOptions) (string, error) {
	if err := checkDecodeContext(ctx); err != nil {
		return "", err
	}
	prepared, err := replaceJSONLiteralValues(input)
	if err != nil {
		return "", err
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newJSONGoldOptions(ctx, opts)
	result, err := proc.ToRDF(prepared, goldOpts)
	if err != nil {
		return "", err
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return "", fmt.Errorf("csvw: unexpected ToRDF result %T", result)
	}
	if err := canonicalizeJSONLiteralDataset(dataset); err != nil {
		return "", err
	}
	serializer := &ld.NQuadRDFSerializer{}
	serialized, err := serializer.Serialize(dataset)
	if err != nil {
		return "", err
	}
	nquads, ok := serialized.(string)
	if !ok {
		return "", fmt.Errorf("csvw: unexpected N-Quads result %T", serialized)
	}
	return nquads, nil
}

type jsonGoldDocumentLoader struct {
	ctx   context.Context
	inner DocumentLoader
}

func (l jsonGoldDocumentLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	if l.inner == nil {
		return ld.NewDefaultDocumentLoader(nil).LoadDocument(iri)
	}
	remote, err := l.inner.LoadDocument(l.ctx, iri)
	if err != nil {
		return nil, err
	}
	return &ld.RemoteDocument{
		DocumentURL: remote.DocumentURL,
		Document:    remote.Document,
		ContextURL:  remote.ContextURL,
	}, nil
}

func newJSONGoldOptions(ctx context.Context, opts JSONLDOptions) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.BaseIRI)
	if opts.ProcessingMode != "" {
		goldOpts.ProcessingMode = opts.ProcessingMode
	}
	if opts.ExpandContext != nil {
		goldOpts.ExpandContext = opts.ExpandContext
	}
	if opts.DocumentLoader != nil {
		goldOpts.DocumentLoader = jsonGoldDocumentLoader{ctx: ctx, inner: opts.DocumentLoader}
	}
	return goldOpts
}

// canonicalizeJSONLiteralDataset rewrites placeholder-typed literals back to
// rdf:JSON and canonicalizes their lexical form using JCS, so two cells
// with equivalent but differently-formatted `json`-datatype values produce
// identical triples.
func canonicalizeJSONLiteralDataset(dataset *ld.RDFDataset) error {
	if dataset == nil {
		return nil
	}
	for _, quads := range dataset.Graphs {
		for _, quad := range quads {
			if quad == nil || quad.Object == nil {
				continue
			}
			literal, ok := quad.Object.(ld.Literal)
			if !ok {
				continue
			}
			if literal.Datatype == jsonLiteralPlaceholderIRI {
				literal.Datatype = ld.RDFJSONLiteral
			}
			if literal.Datatype == ld.RDFJSONLiteral {
				canonical, err := canonicalizeJSONLiteralString(literal.Value)
				if err != nil {
					return err
				}
				literal.Value = canonical
				quad.Object = literal
			}
		}
	}
	return nil
}

func canonicalizeJSONLiteralString(raw string) (string, error) {
	normalized, err := canonicalizeJSONText([]byte(raw))
	if err != nil {
		return "", fmt.Errorf("csvw: invalid json literal: %w", err)
	}
	return string(normalized), nil
}

func canonicalizeJSONLiteralValue(value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	canonical, err := canonicalizeJSONText(data)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}

// replaceJSONLiteralValues swaps @type:"@json" value objects for a
// placeholder datatype IRI carrying the canonical JSON text, which survives
// json-gold's ToRDF unchanged as an opaque literal.
func replaceJSONLiteralValues(input interface{}) (interface{}, error) {
	switch value := input.(type) {
	case map[string]interface{}:
		if jsonType, ok := value["@type"]; ok && jsonTypeIncludes(jsonType, "@json", ld.RDFJSONLiteral) {
			if jsonValue, ok := value["@value"]; ok {
				canonical, err := canonicalizeJSONLiteralValue(jsonValue)
				if err != nil {
					return nil, err
				}
				value["@value"] = canonical
				value["@type"] = jsonLiteralPlaceholderIRI
			}
		}
		for key, item := range value {
			prepared, err := replaceJSONLiteralValues(item)
			if err != nil {
				return nil, err
			}
			value[key] = prepared
		}
		return value, nil
	case []interface{}:
		for i, item := range value {
			prepared, err := replaceJSONLiteralValues(item)
			if err != nil {
				return nil, err
			}
			value[i] = prepared
		}
		return value, nil
	default:
		return input, nil
	}
}

func jsonTypeIncludes(raw interface{}, values ...string) bool {
	switch v := raw.(type) {
	case string:
		for _, value := range values {
			if v == value {
				return true
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				for _, value := range values {
					if s == value {
						return true
					}
				}
			}
		}
	}
	return false
}
