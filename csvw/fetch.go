package csvw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/cachecontrol"
)

// httpDocumentLoader is the default DocumentLoader: it fetches over HTTP(S)
// with the CSVW-documented Accept header, and caches a response in memory
// for as long as its Cache-Control/Expires headers say it is fresh.
type httpDocumentLoader struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	doc     RemoteDocument
	expires time.Time
}

// NewHTTPDocumentLoader returns a DocumentLoader backed by client (or
// http.DefaultClient if nil).
func NewHTTPDocumentLoader(client *http.Client) DocumentLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpDocumentLoader{client: client, cache: map[string]cacheEntry{}}
}

func (l *httpDocumentLoader) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	l.mu.Lock()
	if entry, ok := l.cache[iri]; ok && time.Now().Before(entry.expires) {
		l.mu.Unlock()
		return entry.doc, nil
	}
	l.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("csvw: building request for %s: %w", iri, err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json;q=0.9, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("csvw: fetching %s: %w", iri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return RemoteDocument{}, fmt.Errorf("csvw: fetching %s: status %d", iri, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("csvw: reading %s: %w", iri, err)
	}
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return RemoteDocument{}, fmt.Errorf("csvw: %s is not valid JSON: %w", iri, err)
	}

	finalURL := iri
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	remote := RemoteDocument{
		DocumentURL: finalURL,
		Document:    doc,
		ContextURL:  linkHeaderRel(resp.Header.Get("Link"), "http://www.w3.org/ns/json-ld#context"),
	}

	if reasons, expires, ccErr := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{}); ccErr == nil && len(reasons) == 0 {
		l.mu.Lock()
		l.cache[iri] = cacheEntry{doc: remote, expires: expires}
		l.mu.Unlock()
	}
	return remote, nil
}

// linkHeaderRel extracts the URI-reference of the first Link header entry
// carrying the given rel value, or "" if none matches.
func linkHeaderRel(header, rel string) string {
	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if v, ok := strings.CutPrefix(param, "rel="); ok {
				if strings.Trim(v, `"`) == rel {
					return target
				}
			}
		}
	}
	return ""
}

// DiscoverLinkedMetadata implements the linked-metadata discovery order: a
// Link header on the tabular data response with rel="describedby", then
// "{tableURL}-metadata.json", then "metadata.json" alongside it. It returns
// the describedby target as found, or else the first candidate whose HEAD
// request answers with a status below 400, or "" if none does. No document
// is fetched or parsed here, so a location whose content is not valid
// metadata is still returned.
func DiscoverLinkedMetadata(ctx context.Context, client *http.Client, tableURL string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if describedBy, err := linkedViaHeader(ctx, client, tableURL); err == nil && describedBy != "" {
		return describedBy, nil
	}

	candidates := []string{tableURL + "-metadata.json"}
	if i := strings.LastIndex(tableURL, "/"); i >= 0 {
		candidates = append(candidates, tableURL[:i+1]+"metadata.json")
	}
	for _, candidate := range candidates {
		if probeExists(ctx, client, candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func linkedViaHeader(ctx context.Context, client *http.Client, tableURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, tableURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if loc := linkHeaderRel(resp.Header.Get("Link"), "describedby"); loc != "" {
		return resolveIRI(tableURL, loc), nil
	}
	return "", nil
}

func probeExists(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}

// OpenLinkedMetadata discovers and parses the metadata document linked to
// a tabular data file's URL, per DiscoverLinkedMetadata, or reports nil if
// none is linked (the caller should then fall back to embedded metadata
// extraction alone).
func OpenLinkedMetadata(ctx context.Context, tableURL string, o *Options) (*Metadata, error) {
	loc, err := DiscoverLinkedMetadata(ctx, o.HTTPClient, tableURL)
	if err != nil {
		return nil, err
	}
	if loc == "" {
		return nil, nil
	}
	loader := o.DocumentLoader
	if loader == nil {
		loader = NewHTTPDocumentLoader(o.HTTPClient)
	}
	doc, err := loader.LoadDocument(ctx, loc)
	if err != nil {
		return nil, err
	}
	return ParseValue(doc.Document, o)
}
