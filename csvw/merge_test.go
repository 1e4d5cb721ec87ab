package csvw

import "testing"

func TestMerge_NewTableIsAppended(t *testing.T) {
	a := mustParse(t, `{"tables": [{"url": "a.csv", "tableSchema": {"columns": [{"name": "x"}]}}]}`)
	b := mustParse(t, `{"tables": [{"url": "b.csv", "tableSchema": {"columns": [{"name": "y"}]}}]}`)
	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged.TableGroup.TableIdx) != 2 {
		t.Fatalf("expected 2 tables after merge, got %d", len(merged.TableGroup.TableIdx))
	}
}

func TestMerge_SameURLMergesColumnsByPosition(t *testing.T) {
	// Embedded metadata (no datatype) merged under user-supplied metadata
	// (has datatype) for the same table URL.
	user := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id", "datatype": "integer"}]}
	}`)
	embedded := mustParse(t, `{
		"url": "data.csv",
		"tableSchema": {"columns": [{"name": "id", "titles": "id"}]}
	}`)
	merged, err := user.Merge(embedded)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged.TableGroup.TableIdx) != 1 {
		t.Fatalf("expected the two tables to merge into one, got %d", len(merged.TableGroup.TableIdx))
	}
	tbl := merged.Tables[merged.TableGroup.TableIdx[0]]
	schema := merged.Schemas[tbl.SchemaIdx]
	if len(schema.ColumnIdx) != 1 {
		t.Fatalf("expected column merge by matching name, got %d columns", len(schema.ColumnIdx))
	}
	rc := merged.ResolveColumn(schema.ColumnIdx[0])
	if rc.Datatype.Base != "integer" {
		t.Errorf("expected user-supplied datatype to win, got %q", rc.Datatype.Base)
	}
}

func TestMerge_IncompatibleColumnsFails(t *testing.T) {
	a := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}`)
	b := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "other"}]}}`)
	if _, err := a.Merge(b); err == nil {
		t.Fatal("expected MergeError for incompatible non-virtual columns")
	}
}

func TestMerge_NilOtherReturnsSelf(t *testing.T) {
	a := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}`)
	merged, err := a.Merge(nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged != a {
		t.Error("expected Merge(nil) to return the receiver unchanged")
	}
}

func TestMerge_ImportedTableHasCorrectIndex(t *testing.T) {
	a := mustParse(t, `{"tables": [{"url": "a.csv", "tableSchema": {"columns": [{"name": "x"}]}}]}`)
	b := mustParse(t, `{"tables": [{"url": "b.csv", "tableSchema": {"columns": [{"name": "y"}]}}]}`)
	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for i, tbl := range merged.Tables {
		if tbl.index != i {
			t.Errorf("table %d has stale index %d", i, tbl.index)
		}
		if merged.ResolvedDialect(tbl.index).Delimiter != "," {
			t.Errorf("table %d: ResolvedDialect via index produced unexpected dialect", i)
		}
	}
}

func TestVerifyCompatible_ColumnCountMismatch(t *testing.T) {
	a := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}, {"name": "name"}]}}`)
	b := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}`)
	if err := a.VerifyCompatible(b); err == nil {
		t.Fatal("expected column count mismatch error")
	}
}

func TestVerifyCompatible_OK(t *testing.T) {
	a := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}`)
	b := mustParse(t, `{"url": "data.csv", "tableSchema": {"columns": [{"name": "id"}]}}`)
	if err := a.VerifyCompatible(b); err != nil {
		t.Errorf("expected compatible schemas, got %v", err)
	}
}
