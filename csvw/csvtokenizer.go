package csvw

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

// csvTokenizer reads dialect-configured CSV records from a byte stream: a
// delimiter, an optional quote character with doubling or backslash
// escaping, and one or more (possibly multi-byte) line terminators. It
// accumulates a full logical record — which may span several physical
// lines when a field is quoted — the way a statement-oriented lexer
// accumulates a full statement before handing it back to its caller.
type csvTokenizer struct {
	r           *bufio.Reader
	delimiter   byte
	quote       byte
	doubleQuote bool
	terminators [][]byte
	maxBytes    int
	atEOF       bool
}

func newCSVTokenizer(r io.Reader, d Dialect, maxBytes int) *csvTokenizer {
	terms := d.LineTerminators
	if len(terms) == 0 {
		terms = []string{"\r\n", "\n"}
	}
	sorted := append([]string(nil), terms...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	tb := make([][]byte, len(sorted))
	for i, t := range sorted {
		tb[i] = []byte(t)
	}
	return &csvTokenizer{
		r:           bufio.NewReaderSize(r, 64*1024),
		delimiter:   byteOrZero(d.Delimiter),
		quote:       byteOrZero(d.QuoteChar),
		doubleQuote: d.DoubleQuote,
		terminators: tb,
		maxBytes:    maxBytes,
	}
}

func byteOrZero(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func (t *csvTokenizer) matchTerminator() (int, bool) {
	for _, term := range t.terminators {
		peek, err := t.r.Peek(len(term))
		if err == nil && string(peek) == string(term) {
			return len(term), true
		}
	}
	return 0, false
}

// ReadRecord returns the next logical record's fields, or io.EOF once the
// stream is exhausted. A record's unquoted fields never contain the
// delimiter or a terminator; quoted fields may contain either.
func (t *csvTokenizer) ReadRecord() ([]string, error) {
	if t.atEOF {
		return nil, io.EOF
	}
	var fields []string
	var field strings.Builder
	inQuotes := false
	sawAny := false
	total := 0

	for {
		if !inQuotes {
			if n, ok := t.matchTerminator(); ok {
				t.r.Discard(n)
				fields = append(fields, field.String())
				return fields, nil
			}
		}
		b, err := t.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				t.atEOF = true
				if !sawAny && field.Len() == 0 && len(fields) == 0 {
					return nil, io.EOF
				}
				fields = append(fields, field.String())
				return fields, nil
			}
			return nil, err
		}
		sawAny = true
		total++
		if t.maxBytes > 0 && total > t.maxBytes {
			return nil, ErrLineTooLong
		}

		switch {
		case inQuotes:
			if t.quote != 0 && b == t.quote {
				if t.doubleQuote {
					next, err := t.r.Peek(1)
					if err == nil && len(next) == 1 && next[0] == t.quote {
						field.WriteByte(t.quote)
						t.r.Discard(1)
						continue
					}
				}
				inQuotes = false
				continue
			}
			if b == '\\' && !t.doubleQuote && t.quote != 0 {
				next, err := t.r.ReadByte()
				if err == nil {
					field.WriteByte(next)
					continue
				}
			}
			field.WriteByte(b)
		case t.quote != 0 && b == t.quote && field.Len() == 0:
			inQuotes = true
		case t.delimiter != 0 && b == t.delimiter:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(b)
		}
	}
}
