package csvw

import (
	"context"
	"fmt"
	"net/http"
)

// Diagnostics collects non-fatal warnings produced during parsing,
// normalization, and merge. It replaces a process-wide debug sink: every
// operation that would otherwise print a warning records it here instead.
type Diagnostics struct {
	Warnings []string
}

// Warnf appends a formatted warning. A nil *Diagnostics silently discards,
// so callers never need a nil check before warning.
func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	if d == nil {
		return
	}
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Options configures metadata parsing, fetch, and row iteration. Built up
// via functional Option values.
type Options struct {
	Context         context.Context
	BaseURL         string
	DefaultLang     string
	Diagnostics     *Diagnostics
	StrictValidation bool
	DocumentLoader  DocumentLoader
	HTTPClient      *http.Client
	MaxLineBytes    int
}

// Option mutates an Options value during construction.
type Option func(*Options)

// DefaultOptions returns an Options populated with CSVW's documented
// defaults (default language "und", background context).
func DefaultOptions() *Options {
	return &Options{
		Context:     context.Background(),
		DefaultLang: "und",
	}
}

func newOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OptContext sets the context used for cancellation-aware operations.
func OptContext(ctx context.Context) Option {
	return func(o *Options) { o.Context = ctx }
}

// OptBaseURL sets the base URL metadata links and table URLs resolve
// against.
func OptBaseURL(base string) Option {
	return func(o *Options) { o.BaseURL = base }
}

// OptDefaultLang overrides the "und" default language.
func OptDefaultLang(lang string) Option {
	return func(o *Options) { o.DefaultLang = lang }
}

// OptDiagnostics routes warnings to the given collector instead of
// discarding them.
func OptDiagnostics(d *Diagnostics) Option {
	return func(o *Options) { o.Diagnostics = d }
}

// OptStrictValidation causes Parse to return MetadataValidationError
// immediately instead of only surfacing it from an explicit Validate call.
func OptStrictValidation(strict bool) Option {
	return func(o *Options) { o.StrictValidation = strict }
}

// OptDocumentLoader overrides how linked metadata and @context documents
// are fetched.
func OptDocumentLoader(loader DocumentLoader) Option {
	return func(o *Options) { o.DocumentLoader = loader }
}

// OptHTTPClient overrides the HTTP client used by OpenLinkedMetadata and the
// HTTP document loader it creates.
func OptHTTPClient(client *http.Client) Option {
	return func(o *Options) { o.HTTPClient = client }
}

// OptMaxLineBytes records a CSV record byte limit in Options.MaxLineBytes.
// Nothing in this package reads that field: Table.Rows and
// ExtractEmbeddedMetadata take their limit as an argument.
func OptMaxLineBytes(n int) Option {
	return func(o *Options) { o.MaxLineBytes = n }
}
