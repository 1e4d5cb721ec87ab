package csvw

import (
	"io"
	"strings"
	"testing"
)

func TestCSVTokenizer_SimpleFields(t *testing.T) {
	tok := newCSVTokenizer(strings.NewReader("a,b,c\n1,2,3\n"), DefaultDialect(), 0)
	rec, err := tok.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !equalStrings(rec, want) {
		t.Errorf("got %v, want %v", rec, want)
	}
	rec, err = tok.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if !equalStrings(rec, []string{"1", "2", "3"}) {
		t.Errorf("got %v", rec)
	}
	if _, err := tok.ReadRecord(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestCSVTokenizer_QuotedFieldWithDelimiterAndNewline(t *testing.T) {
	input := "\"a,b\",\"line1\nline2\"\n"
	tok := newCSVTokenizer(strings.NewReader(input), DefaultDialect(), 0)
	rec, err := tok.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	want := []string{"a,b", "line1\nline2"}
	if !equalStrings(rec, want) {
		t.Errorf("got %v, want %v", rec, want)
	}
}

func TestCSVTokenizer_DoubledQuoteEscaping(t *testing.T) {
	input := `"she said ""hi"""` + "\n"
	tok := newCSVTokenizer(strings.NewReader(input), DefaultDialect(), 0)
	rec, err := tok.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	want := `she said "hi"`
	if rec[0] != want {
		t.Errorf("got %q, want %q", rec[0], want)
	}
}

func TestCSVTokenizer_CustomDelimiterAndTerminator(t *testing.T) {
	d := DefaultDialect()
	d.Delimiter = "|"
	d.LineTerminators = []string{";;"}
	tok := newCSVTokenizer(strings.NewReader("a|b;;c|d;;"), d, 0)
	rec, err := tok.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if !equalStrings(rec, []string{"a", "b"}) {
		t.Errorf("got %v", rec)
	}
	rec, err = tok.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if !equalStrings(rec, []string{"c", "d"}) {
		t.Errorf("got %v", rec)
	}
}

func TestCSVTokenizer_MaxBytesExceeded(t *testing.T) {
	tok := newCSVTokenizer(strings.NewReader(strings.Repeat("a", 100)+"\n"), DefaultDialect(), 10)
	_, err := tok.ReadRecord()
	if err != ErrLineTooLong {
		t.Errorf("got %v, want ErrLineTooLong", err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
