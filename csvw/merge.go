package csvw

import (
	"fmt"
	"strings"
)

// Merge combines this metadata (A) with other (B, arriving later — e.g.
// embedded metadata merged on top of user-supplied metadata) and returns a
// new Metadata. A wins on scalar conflicts; arrays concatenate or merge by
// key; natural-language maps merge per language.
func (m *Metadata) Merge(other *Metadata) (*Metadata, error) {
	if other == nil {
		return m, nil
	}
	r := &Metadata{diag: m.diag, vctx: m.vctx, opts: m.opts}
	r.TableGroup = m.TableGroup
	r.Tables = append([]Table(nil), m.Tables...)
	r.Schemas = append([]Schema(nil), m.Schemas...)
	r.Columns = append([]Column(nil), m.Columns...)
	r.Dialects = append([]Dialect(nil), m.Dialects...)
	r.Transforms = append([]Transformation(nil), m.Transforms...)
	r.TableGroup.m = r
	for i := range r.Tables {
		r.Tables[i].m = r
	}
	for i := range r.Schemas {
		r.Schemas[i].m = r
	}
	for i := range r.Columns {
		r.Columns[i].m = r
	}
	r.TableGroup.TableIdx = append([]int(nil), m.TableGroup.TableIdx...)

	r.TableGroup.Notes = append(append([]interface{}{}, m.TableGroup.Notes...), other.TableGroup.Notes...)
	if r.TableGroup.SchemaIdx < 0 && other.TableGroup.SchemaIdx >= 0 {
		idx, err := r.importSchema(other, other.TableGroup.SchemaIdx, MetaTableGroup, 0)
		if err != nil {
			return nil, err
		}
		r.TableGroup.SchemaIdx = idx
	}
	if r.TableGroup.DialectIdx < 0 && other.TableGroup.DialectIdx >= 0 {
		r.TableGroup.DialectIdx = r.importDialect(other, other.TableGroup.DialectIdx)
	}

	byURL := map[string]int{}
	for _, idx := range r.TableGroup.TableIdx {
		byURL[r.Tables[idx].URL] = idx
	}

	for _, oIdx := range other.TableGroup.TableIdx {
		ot := other.Tables[oIdx]
		if mIdx, ok := byURL[ot.URL]; ok {
			merged, err := r.mergeTableInto(mIdx, other, oIdx)
			if err != nil {
				return nil, err
			}
			r.Tables[mIdx] = merged
		} else {
			newIdx, err := r.importTable(other, oIdx)
			if err != nil {
				return nil, err
			}
			r.TableGroup.TableIdx = append(r.TableGroup.TableIdx, newIdx)
			byURL[ot.URL] = newIdx
		}
	}
	return r, nil
}

func (r *Metadata) importDialect(other *Metadata, idx int) int {
	if idx < 0 {
		return -1
	}
	newIdx := len(r.Dialects)
	r.Dialects = append(r.Dialects, other.Dialects[idx])
	return newIdx
}

func (r *Metadata) importColumn(other *Metadata, idx, schemaIdx int) int {
	src := other.Columns[idx]
	src.SchemaIdx = schemaIdx
	src.m = r
	newIdx := len(r.Columns)
	r.Columns = append(r.Columns, src)
	return newIdx
}

func (r *Metadata) importSchema(other *Metadata, idx int, parentKind MetaKind, parentIdx int) (int, error) {
	src := other.Schemas[idx]
	newSchema := Schema{
		ParentKind:  parentKind,
		ParentIdx:   parentIdx,
		ID:          src.ID,
		PrimaryKey:  append([]string(nil), src.PrimaryKey...),
		ForeignKeys: append([]ForeignKey(nil), src.ForeignKeys...),
		Inherited:   src.Inherited,
		Extra:       src.Extra,
		m:           r,
	}
	newIdx := len(r.Schemas)
	r.Schemas = append(r.Schemas, newSchema)
	for _, cIdx := range src.ColumnIdx {
		nc := r.importColumn(other, cIdx, newIdx)
		r.Schemas[newIdx].ColumnIdx = append(r.Schemas[newIdx].ColumnIdx, nc)
	}
	return newIdx, nil
}

func (r *Metadata) importTable(other *Metadata, idx int) (int, error) {
	src := other.Tables[idx]
	nt := src
	nt.m = r
	nt.SchemaIdx, nt.DialectIdx, nt.TransformIdx = -1, -1, nil
	newIdx := len(r.Tables)
	nt.index = newIdx
	r.Tables = append(r.Tables, nt)

	if src.DialectIdx >= 0 {
		r.Tables[newIdx].DialectIdx = r.importDialect(other, src.DialectIdx)
	}
	if src.SchemaIdx >= 0 {
		sIdx, err := r.importSchema(other, src.SchemaIdx, MetaTable, newIdx)
		if err != nil {
			return 0, err
		}
		r.Tables[newIdx].SchemaIdx = sIdx
	}
	for _, trIdx := range src.TransformIdx {
		t := other.Transforms[trIdx]
		t.TableIdx = newIdx
		newTrIdx := len(r.Transforms)
		r.Transforms = append(r.Transforms, t)
		r.Tables[newIdx].TransformIdx = append(r.Tables[newIdx].TransformIdx, newTrIdx)
	}
	return newIdx, nil
}

func (r *Metadata) mergeTableInto(aIdx int, other *Metadata, bIdx int) (Table, error) {
	merged := r.Tables[aIdx]
	b := other.Tables[bIdx]
	merged.Notes = append(append([]interface{}{}, merged.Notes...), b.Notes...)
	if merged.ID == "" {
		merged.ID = b.ID
	}
	if merged.DialectIdx < 0 && b.DialectIdx >= 0 {
		merged.DialectIdx = r.importDialect(other, b.DialectIdx)
	}
	for _, bTrIdx := range b.TransformIdx {
		bt := other.Transforms[bTrIdx]
		found := false
		for _, aTrIdx := range merged.TransformIdx {
			at := r.Transforms[aTrIdx]
			if at.TargetFormat == bt.TargetFormat && at.ScriptFormat == bt.ScriptFormat {
				found = true
				break
			}
		}
		if !found {
			nt := bt
			nt.TableIdx = aIdx
			newIdx := len(r.Transforms)
			r.Transforms = append(r.Transforms, nt)
			merged.TransformIdx = append(merged.TransformIdx, newIdx)
		}
	}
	if merged.SchemaIdx < 0 && b.SchemaIdx >= 0 {
		sIdx, err := r.importSchema(other, b.SchemaIdx, MetaTable, aIdx)
		if err != nil {
			return Table{}, err
		}
		merged.SchemaIdx = sIdx
	} else if merged.SchemaIdx >= 0 && b.SchemaIdx >= 0 {
		if err := r.mergeSchemas(merged.SchemaIdx, other, b.SchemaIdx); err != nil {
			return Table{}, err
		}
	}
	return merged, nil
}

func (r *Metadata) mergeSchemas(aIdx int, other *Metadata, bIdx int) error {
	a := &r.Schemas[aIdx]
	b := other.Schemas[bIdx]
	if a.ID == "" {
		a.ID = b.ID
	}
	matchedB := make([]bool, len(b.ColumnIdx))
	for ai, aCIdx := range a.ColumnIdx {
		if ai >= len(b.ColumnIdx) {
			break
		}
		bCIdx := b.ColumnIdx[ai]
		aCol := &r.Columns[aCIdx]
		bCol := other.Columns[bCIdx]
		switch {
		case columnsCompatible(*aCol, bCol):
			mergeColumnInto(aCol, bCol)
			matchedB[ai] = true
		case aCol.Virtual || bCol.Virtual:
			// leave in place; bCol is appended below as a distinct column.
		default:
			return &MergeError{Reason: fmt.Sprintf("incompatible columns at index %d", ai)}
		}
	}
	for bi, bCIdx := range b.ColumnIdx {
		if bi < len(matchedB) && matchedB[bi] {
			continue
		}
		newIdx := r.importColumn(other, bCIdx, aIdx)
		r.Columns[newIdx].Number = len(a.ColumnIdx) + 1
		a.ColumnIdx = append(a.ColumnIdx, newIdx)
	}
	if len(a.PrimaryKey) == 0 && len(b.PrimaryKey) > 0 {
		a.PrimaryKey = append([]string(nil), b.PrimaryKey...)
	}
	a.ForeignKeys = append(a.ForeignKeys, b.ForeignKeys...)
	return nil
}

func columnsCompatible(a, b Column) bool {
	if a.Name != "" && b.Name != "" {
		return a.Name == b.Name
	}
	return titlesIntersect(a.Titles, b.Titles)
}

func titlesIntersect(a, b naturalLanguageValue) bool {
	for langA, valsA := range a {
		for langB, valsB := range b {
			if !(strings.EqualFold(langA, "und") || strings.EqualFold(langB, "und") || strings.EqualFold(langA, langB)) {
				continue
			}
			for _, va := range valsA {
				for _, vb := range valsB {
					if va == vb {
						return true
					}
				}
			}
		}
	}
	return false
}

func mergeColumnInto(a *Column, b Column) {
	if a.Name == "" {
		a.Name = b.Name
	}
	a.Titles = mergeNaturalLanguage(a.Titles, b.Titles)
	ai, bi := &a.Inherited, b.Inherited
	if ai.AboutURL == nil {
		ai.AboutURL = bi.AboutURL
	}
	if ai.PropertyURL == nil {
		ai.PropertyURL = bi.PropertyURL
	}
	if ai.ValueURL == nil {
		ai.ValueURL = bi.ValueURL
	}
	if ai.Datatype == nil {
		ai.Datatype = bi.Datatype
	}
	if ai.Default == nil {
		ai.Default = bi.Default
	}
	if ai.Lang == nil {
		ai.Lang = bi.Lang
	}
	if ai.Null == nil {
		ai.Null = bi.Null
	}
	if ai.Ordered == nil {
		ai.Ordered = bi.Ordered
	}
	if ai.Required == nil {
		ai.Required = bi.Required
	}
	if ai.Separator == nil {
		ai.Separator = bi.Separator
	}
	if ai.TextDirection == nil {
		ai.TextDirection = bi.TextDirection
	}
}

func countNonVirtual(m *Metadata, s Schema) int {
	n := 0
	for _, idx := range s.ColumnIdx {
		if !m.Columns[idx].Virtual {
			n++
		}
	}
	return n
}

// VerifyCompatible checks embedded metadata (m) against user-supplied
// metadata (other) for every table present in both: URLs must already
// match by construction, non-virtual column counts must agree, and each
// positional column pair must share a name or an intersecting title.
func (m *Metadata) VerifyCompatible(other *Metadata) error {
	for _, aIdx := range m.TableGroup.TableIdx {
		a := m.Tables[aIdx]
		var bTable *Table
		for _, bIdx := range other.TableGroup.TableIdx {
			if other.Tables[bIdx].URL == a.URL {
				t := other.Tables[bIdx]
				bTable = &t
				break
			}
		}
		if bTable == nil || a.SchemaIdx < 0 || bTable.SchemaIdx < 0 {
			continue
		}
		aSchema := m.Schemas[a.SchemaIdx]
		bSchema := other.Schemas[bTable.SchemaIdx]
		if countNonVirtual(m, aSchema) != countNonVirtual(other, bSchema) {
			return &MergeError{Reason: fmt.Sprintf("table %s: column count mismatch (%d vs %d)",
				a.URL, countNonVirtual(m, aSchema), countNonVirtual(other, bSchema))}
		}
		for i := 0; i < len(aSchema.ColumnIdx) && i < len(bSchema.ColumnIdx); i++ {
			ac := m.Columns[aSchema.ColumnIdx[i]]
			bc := other.Columns[bSchema.ColumnIdx[i]]
			if !columnsCompatible(ac, bc) {
				return &MergeError{Reason: fmt.Sprintf("table %s: column %d name/title mismatch", a.URL, i)}
			}
		}
	}
	return nil
}
