package csvw

import (
	"strings"
	"testing"
)

func TestExtractEmbeddedMetadata_SimpleHeader(t *testing.T) {
	input := "id,name,age\n1,alice,30\n"
	em, err := ExtractEmbeddedMetadata(strings.NewReader(input), DefaultDialect(), "data.csv", 0)
	if err != nil {
		t.Fatalf("ExtractEmbeddedMetadata: %v", err)
	}
	if len(em.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(em.Columns))
	}
	want := []string{"id", "name", "age"}
	for i, c := range em.Columns {
		if len(c.Titles) != 1 || c.Titles[0] != want[i] {
			t.Errorf("column %d titles = %v, want [%s]", i, c.Titles, want[i])
		}
	}
}

func TestExtractEmbeddedMetadata_CommentsAndSkipRows(t *testing.T) {
	d := DefaultDialect()
	d.CommentPrefix = "#"
	d.SkipRows = 1
	input := "# a leading comment\nid,name\n1,alice\n"
	em, err := ExtractEmbeddedMetadata(strings.NewReader(input), d, "data.csv", 0)
	if err != nil {
		t.Fatalf("ExtractEmbeddedMetadata: %v", err)
	}
	if len(em.Comments) != 1 || em.Comments[0] != "a leading comment" {
		t.Errorf("comments = %v", em.Comments)
	}
	if len(em.Columns) != 2 || em.Columns[0].Titles[0] != "id" {
		t.Errorf("columns = %+v", em.Columns)
	}
}

func TestExtractEmbeddedMetadata_CommentWithinHeaderRows(t *testing.T) {
	d := DefaultDialect()
	d.CommentPrefix = "#"
	d.HeaderRowCount = 1
	input := "#ignored\nid,name\n1,alice\n"
	em, err := ExtractEmbeddedMetadata(strings.NewReader(input), d, "data.csv", 0)
	if err != nil {
		t.Fatalf("ExtractEmbeddedMetadata: %v", err)
	}
	if len(em.Comments) != 1 {
		t.Fatalf("expected 1 comment absorbed while scanning header rows, got %v", em.Comments)
	}
	if len(em.Columns) != 2 {
		t.Fatalf("expected header row still consumed after comment, got %+v", em.Columns)
	}
}

func TestExtractEmbeddedMetadata_SkipColumns(t *testing.T) {
	d := DefaultDialect()
	d.SkipColumns = 1
	input := "rownum,id,name\n1,1,alice\n"
	em, err := ExtractEmbeddedMetadata(strings.NewReader(input), d, "data.csv", 0)
	if err != nil {
		t.Fatalf("ExtractEmbeddedMetadata: %v", err)
	}
	if len(em.Columns) != 2 {
		t.Fatalf("expected 2 columns after skipping 1, got %d: %+v", len(em.Columns), em.Columns)
	}
	if em.Columns[0].Titles[0] != "id" {
		t.Errorf("first column title = %v, want id", em.Columns[0].Titles)
	}
}

func TestApplyTrim(t *testing.T) {
	cases := []struct {
		in, mode, want string
	}{
		{"  a  ", "true", "a"},
		{"  a  ", "false", "  a  "},
		{"  a  ", "start", "a  "},
		{"  a  ", "end", "  a"},
	}
	for _, c := range cases {
		if got := applyTrim(c.in, c.mode); got != c.want {
			t.Errorf("applyTrim(%q, %q) = %q, want %q", c.in, c.mode, got, c.want)
		}
	}
}

func TestIsCommentRecord(t *testing.T) {
	d := DefaultDialect()
	d.CommentPrefix = "#"
	if _, ok := isCommentRecord([]string{"id", "name"}, d); ok {
		t.Error("expected non-comment record to not match")
	}
	comment, ok := isCommentRecord([]string{"# a note", "extra"}, d)
	if !ok {
		t.Fatal("expected comment record to match")
	}
	if comment != "a note,extra" {
		t.Errorf("comment = %q", comment)
	}
}

func TestIsBlankRecord(t *testing.T) {
	d := DefaultDialect()
	if !isBlankRecord([]string{"", "  ", ""}, d) {
		t.Error("expected all-whitespace record to be blank")
	}
	if isBlankRecord([]string{"", "x"}, d) {
		t.Error("expected record with a non-blank field to not be blank")
	}
}

func TestSanitizeUTF8Reader(t *testing.T) {
	bad := string([]byte{0x68, 0x69, 0xff, 0xfe})
	out := sanitizeUTF8Reader(strings.NewReader(bad))
	buf := make([]byte, 64)
	n, _ := out.Read(buf)
	got := string(buf[:n])
	if !strings.HasPrefix(got, "hi") {
		t.Errorf("got %q, want prefix hi", got)
	}
	if strings.Contains(got, string([]byte{0xff})) {
		t.Errorf("expected invalid byte replaced, got %q", got)
	}
}

func TestEmbeddedMetadata_ToMetadata(t *testing.T) {
	em := &EmbeddedMetadata{
		URL: "data.csv",
		Columns: []EmbeddedColumn{
			{Titles: []string{"id"}},
			{Titles: []string{"name"}},
		},
	}
	m, err := em.ToMetadata(DefaultOptions())
	if err != nil {
		t.Fatalf("ToMetadata: %v", err)
	}
	if len(m.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(m.Tables))
	}
	schema := m.Schemas[m.Tables[0].SchemaIdx]
	if len(schema.ColumnIdx) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(schema.ColumnIdx))
	}
}
