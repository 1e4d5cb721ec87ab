package csvw

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a programmatic error classification. Every error kind below
// is reachable through Code(err), so callers can branch without a type
// switch.
type ErrorCode string

const (
	// ErrCodeMetadataType indicates an unresolvable or unknown node type.
	ErrCodeMetadataType ErrorCode = "METADATA_TYPE"
	// ErrCodeMetadataValidation indicates one or more validation rules failed.
	ErrCodeMetadataValidation ErrorCode = "METADATA_VALIDATION"
	// ErrCodeMerge indicates two metadata graphs could not be merged.
	ErrCodeMerge ErrorCode = "MERGE"
	// ErrCodeDialect indicates an invalid dialect atom.
	ErrCodeDialect ErrorCode = "DIALECT"
	// ErrCodeRowWidth indicates a data row had fewer fields than required.
	ErrCodeRowWidth ErrorCode = "ROW_WIDTH"
	// ErrCodeCell indicates a per-cell datatype/format/facet failure.
	ErrCodeCell ErrorCode = "CELL"
	// ErrCodeLineTooLong indicates a physical line exceeded a configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeIO indicates an I/O error reading metadata or CSV input.
	ErrCodeIO ErrorCode = "IO"
)

// ErrLineTooLong indicates a CSV record exceeded the maxLineBytes limit
// passed to Table.Rows or ExtractEmbeddedMetadata.
var ErrLineTooLong = errors.New("csvw: line exceeds configured limit")

// Code classifies an error for programmatic handling. It returns "" for a
// nil error.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLineTooLong) {
		return ErrCodeLineTooLong
	}
	var typeErr *MetadataTypeError
	if errors.As(err, &typeErr) {
		return ErrCodeMetadataType
	}
	var valErr *MetadataValidationError
	if errors.As(err, &valErr) {
		return ErrCodeMetadataValidation
	}
	var mergeErr *MergeError
	if errors.As(err, &mergeErr) {
		return ErrCodeMerge
	}
	var dialectErr *DialectError
	if errors.As(err, &dialectErr) {
		return ErrCodeDialect
	}
	var widthErr *RowWidthError
	if errors.As(err, &widthErr) {
		return ErrCodeRowWidth
	}
	var cellErr *CellError
	if errors.As(err, &cellErr) {
		return ErrCodeCell
	}
	return ErrCodeIO
}

// MetadataTypeError reports an unknown or unresolvable metadata node type:
// the type-inference heuristic found no match, or an
// explicit @type names something this implementation does not recognize.
type MetadataTypeError struct {
	// Path locates the offending node, e.g. "tables[0].tableSchema".
	Path string
	// Type is the @type value, or "" if key-set inference also failed.
	Type string
}

func (e *MetadataTypeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("csvw: %s: unknown metadata type %q", e.Path, e.Type)
	}
	return fmt.Sprintf("csvw: %s: cannot infer metadata node type", e.Path)
}

// MetadataValidationError groups every rule violation found by
// Metadata.Validate into one multi-line error, matching the documented
// "grouped multi-line error at validate!" propagation policy.
type MetadataValidationError struct {
	Messages []string
}

func (e *MetadataValidationError) Error() string {
	if len(e.Messages) == 1 {
		return "csvw: invalid metadata: " + e.Messages[0]
	}
	return fmt.Sprintf("csvw: invalid metadata (%d errors):\n  %s", len(e.Messages), strings.Join(e.Messages, "\n  "))
}

// MergeError reports an incompatible merge: mismatched node kinds, a
// column-count mismatch, or unresolvable column alignment during merge.
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string { return "csvw: merge failed: " + e.Reason }

// DialectError reports an invalid dialect atom, e.g. a multi-character
// delimiter. This is recoverable: the caller downgrades it to
// a warning and substitutes Default, which is why both values are carried.
type DialectError struct {
	Property string
	Value    string
	Default  string
}

func (e *DialectError) Error() string {
	return fmt.Sprintf("csvw: dialect property %q has invalid value %q", e.Property, e.Value)
}

// RowWidthError reports a data row with fewer fields than its table's
// non-virtual columns require. Fatal during row iteration.
type RowWidthError struct {
	SourceNumber int
	Got          int
	Want         int
}

func (e *RowWidthError) Error() string {
	return fmt.Sprintf("csvw: row %d: got %d fields, want at least %d", e.SourceNumber, e.Got, e.Want)
}

// CellError reports a per-cell datatype/format/facet failure. It is never
// fatal: the cell interpreter records it on Cell.Errors and still emits a
// fallback plain literal.
type CellError struct {
	Column string
	Value  string
	Reason string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s is not a valid %s", e.Value, e.Reason)
}
