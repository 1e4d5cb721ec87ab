package csvw

import (
	"io"
	"strings"
)

// EmbeddedColumn is one column title list recovered from a CSV header row.
type EmbeddedColumn struct {
	Titles []string
}

// EmbeddedMetadata is the metadata minimally inferable from a CSV file
// itself: its URL, per-column header titles, and any comment lines
// preceding the header.
type EmbeddedMetadata struct {
	URL      string
	Columns  []EmbeddedColumn
	Comments []string
}

// sanitizeUTF8Reader replaces invalid UTF-8 byte sequences with the Unicode
// replacement character before any CSV tokenizing happens, so a malformed
// upload never produces a field value that later fails to round-trip
// through JSON or RDF serialization.
func sanitizeUTF8Reader(r io.Reader) io.Reader {
	data, err := io.ReadAll(r)
	if err != nil {
		return r
	}
	return strings.NewReader(strings.ToValidUTF8(string(data), "�"))
}

// applyTrim applies a dialect trim mode ("true", "false", "start", "end")
// to one field value. "true" is the default and strips both ends.
func applyTrim(s, mode string) string {
	switch mode {
	case "false":
		return s
	case "start":
		return strings.TrimLeft(s, " \t")
	case "end":
		return strings.TrimRight(s, " \t")
	default:
		return strings.TrimSpace(s)
	}
}

func isCommentRecord(rec []string, d Dialect) (string, bool) {
	if d.CommentPrefix == "" || len(rec) == 0 {
		return "", false
	}
	first := applyTrim(rec[0], d.Trim)
	if !strings.HasPrefix(first, d.CommentPrefix) {
		return "", false
	}
	rec = append([]string(nil), rec...)
	rec[0] = strings.TrimPrefix(first, d.CommentPrefix)
	return strings.TrimSpace(strings.Join(rec, d.Delimiter)), true
}

func isBlankRecord(rec []string, d Dialect) bool {
	for _, f := range rec {
		if applyTrim(f, d.Trim) != "" {
			return false
		}
	}
	return true
}

// ExtractEmbeddedMetadata reads up to skipRows + headerRowCount leading
// records of a tabular data file according to dialect d, collecting any
// comment-prefixed lines and the column titles found in the header rows
// (multiple header rows produce a title per row, in source order). Only the
// leading records are parsed, but r itself is read to the end (the UTF-8
// sanitizing step buffers the whole input), so the data rows need a fresh
// reader (or a fresh Table.Rows call) over the full file.
func ExtractEmbeddedMetadata(r io.Reader, d Dialect, tableURL string, maxLineBytes int) (*EmbeddedMetadata, error) {
	tok := newCSVTokenizer(sanitizeUTF8Reader(r), d, maxLineBytes)
	em := &EmbeddedMetadata{URL: tableURL}

	skipped := 0
	for skipped < d.SkipRows {
		rec, err := tok.ReadRecord()
		if err != nil {
			if err == io.EOF {
				return em, nil
			}
			return em, err
		}
		if comment, ok := isCommentRecord(rec, d); ok {
			em.Comments = append(em.Comments, comment)
		}
		skipped++
	}

	for h := 0; h < d.HeaderRowCount; h++ {
		rec, err := tok.ReadRecord()
		if err != nil {
			if err == io.EOF {
				return em, nil
			}
			return em, err
		}
		if comment, ok := isCommentRecord(rec, d); ok {
			em.Comments = append(em.Comments, comment)
			h--
			continue
		}
		for i, cell := range rec {
			if i < d.SkipColumns {
				continue
			}
			colIdx := i - d.SkipColumns
			for len(em.Columns) <= colIdx {
				em.Columns = append(em.Columns, EmbeddedColumn{})
			}
			trimmed := applyTrim(cell, d.Trim)
			if trimmed != "" {
				em.Columns[colIdx].Titles = append(em.Columns[colIdx].Titles, trimmed)
			}
		}
	}
	return em, nil
}

// ToMetadata builds a minimal single-table Metadata from the embedded
// column titles, suitable for merging under a user-supplied metadata
// document (RFC: user-supplied metadata wins on conflict — see Metadata.Merge).
func (em *EmbeddedMetadata) ToMetadata(o *Options) (*Metadata, error) {
	cols := make([]interface{}, len(em.Columns))
	for i, c := range em.Columns {
		var titles interface{}
		switch len(c.Titles) {
		case 0:
		case 1:
			titles = c.Titles[0]
		default:
			titles = toInterfaceSlice(c.Titles)
		}
		col := map[string]interface{}{}
		if titles != nil {
			col["titles"] = titles
		}
		cols[i] = col
	}
	raw := map[string]interface{}{
		"url": em.URL,
		"tableSchema": map[string]interface{}{
			"columns": cols,
		},
	}
	return ParseValue(raw, o)
}

func toInterfaceSlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
