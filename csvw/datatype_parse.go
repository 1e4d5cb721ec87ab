package csvw

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// parseNumeric interprets a numeric lexical form against a datatype's
// groupChar/decimalChar format (default ","/"."), a trailing "%" or "‰"
// scaling suffix, and the subtype's integer/bounds constraints. Only the
// groupChar and decimalChar entries of an object format are read; a
// "pattern" entry is not applied, so values are not checked against it.
func parseNumeric(item string, dt Datatype) (interface{}, string) {
	groupChar, decimalChar := ",", "."
	if fmtObj, ok := dt.Format.(map[string]interface{}); ok {
		if g, ok := fmtObj["groupChar"].(string); ok && g != "" {
			groupChar = g
		}
		if d, ok := fmtObj["decimalChar"].(string); ok && d != "" {
			decimalChar = d
		}
	}
	s := item
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		scale = 0.01
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "‰"):
		scale = 0.001
		s = strings.TrimSuffix(s, "‰")
	}
	if groupChar != "" && strings.Contains(s, groupChar+groupChar) {
		return Literal{Lexical: item}, dt.Base
	}
	s = strings.ReplaceAll(s, groupChar, "")
	if decimalChar != "." {
		s = strings.ReplaceAll(s, decimalChar, ".")
	}
	switch s {
	case "NaN":
		return Literal{Lexical: item, Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
	case "INF", "+INF":
		return Literal{Lexical: item, Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
	case "-INF":
		return Literal{Lexical: item, Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Literal{Lexical: item}, dt.Base
	}
	f *= scale

	isInteger := isSubtype(dt.Base, "integer")
	if isInteger && scale == 1.0 && !strings.Contains(s, ".") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Literal{Lexical: item}, dt.Base
		}
		if reason := checkIntegerRange(dt.Base, n); reason != "" {
			return Literal{Lexical: item}, reason
		}
		if reason := checkNumericBounds(dt, float64(n)); reason != "" {
			return Literal{Lexical: item}, reason
		}
		return Literal{Lexical: strconv.FormatInt(n, 10), Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
	}
	if isInteger {
		return Literal{Lexical: item}, dt.Base
	}
	if reason := checkNumericBounds(dt, f); reason != "" {
		return Literal{Lexical: item}, reason
	}
	return Literal{Lexical: strconv.FormatFloat(f, 'g', -1, 64), Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
}

func checkIntegerRange(base string, n int64) string {
	switch base {
	case "nonNegativeInteger", "unsignedLong":
		if n < 0 {
			return base
		}
	case "positiveInteger":
		if n <= 0 {
			return base
		}
	case "nonPositiveInteger":
		if n > 0 {
			return base
		}
	case "negativeInteger":
		if n >= 0 {
			return base
		}
	case "byte":
		if n < -128 || n > 127 {
			return base
		}
	case "unsignedByte":
		if n < 0 || n > 255 {
			return base
		}
	case "short":
		if n < -32768 || n > 32767 {
			return base
		}
	case "unsignedShort":
		if n < 0 || n > 65535 {
			return base
		}
	case "int":
		if n < -2147483648 || n > 2147483647 {
			return base
		}
	case "unsignedInt":
		if n < 0 || n > 4294967295 {
			return base
		}
	}
	return ""
}

func checkNumericBounds(dt Datatype, f float64) string {
	if !isOrderedDatatype(dt.Base) {
		return ""
	}
	parse := func(s string) (float64, bool) {
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}
	if v, ok := parse(dt.MinInclusive); ok && f < v {
		return dt.Base
	}
	if v, ok := parse(dt.MaxInclusive); ok && f > v {
		return dt.Base
	}
	if v, ok := parse(dt.MinExclusive); ok && f <= v {
		return dt.Base
	}
	if v, ok := parse(dt.MaxExclusive); ok && f >= v {
		return dt.Base
	}
	if v, ok := parse(dt.Minimum); ok && f < v {
		return dt.Base
	}
	if v, ok := parse(dt.Maximum); ok && f > v {
		return dt.Base
	}
	return ""
}

func lookupIRI(base string) string {
	dt, ok := lookupDatatype(base)
	if !ok {
		return xsdNamespace + "string"
	}
	return dt.IRI
}

var booleanTrue = map[string]bool{"true": true, "1": true}
var booleanFalse = map[string]bool{"false": true, "0": true}

// parseBoolean interprets a lexical form against the datatype's format
// ("Y,N" style true,false pair) or the XSD defaults.
func parseBoolean(item string, dt Datatype) (interface{}, string) {
	if pair, ok := dt.Format.(string); ok && strings.Contains(pair, ",") {
		parts := strings.SplitN(pair, ",", 2)
		switch item {
		case parts[0]:
			return Literal{Lexical: "true", Datatype: IRI{Value: xsdNamespace + "boolean"}}, ""
		case parts[1]:
			return Literal{Lexical: "false", Datatype: IRI{Value: xsdNamespace + "boolean"}}, ""
		default:
			return Literal{Lexical: item}, "boolean"
		}
	}
	switch {
	case booleanTrue[item]:
		return Literal{Lexical: "true", Datatype: IRI{Value: xsdNamespace + "boolean"}}, ""
	case booleanFalse[item]:
		return Literal{Lexical: "false", Datatype: IRI{Value: xsdNamespace + "boolean"}}, ""
	default:
		return Literal{Lexical: item}, "boolean"
	}
}

var dateTimeDefaultLayouts = map[string][]string{
	"date":        {"2006-01-02"},
	"dateTime":    {"2006-01-02T15:04:05.999999999Z07:00", "2006-01-02T15:04:05Z07:00"},
	"dateTimeStamp": {"2006-01-02T15:04:05.999999999Z07:00", "2006-01-02T15:04:05Z07:00"},
	"time":        {"15:04:05.999999999Z07:00", "15:04:05Z07:00"},
	"gYear":       {"2006"},
	"gYearMonth":  {"2006-01"},
}

// canonicalDateTimeLayout returns the Go time layout a parsed value is
// reformatted against so a custom input format still yields the XSD
// canonical lexical form (e.g. "dd/MM/yyyy" input still produces
// "YYYY-MM-DD" output).
func canonicalDateTimeLayout(base string) string {
	if layouts := dateTimeDefaultLayouts[base]; layouts != nil {
		return layouts[0]
	}
	return dateTimeDefaultLayouts["dateTime"][0]
}

var patternTokens = strings.NewReplacer(
	"yyyy", "2006", "yy", "06",
	"MM", "01", "M", "1",
	"dd", "02", "d", "2",
	"HH", "15", "hh", "03",
	"mm", "04", "ss", "05",
	"X", "Z07:00", "XXX", "Z07:00",
)

// parseDateTimeValue interprets a date/time/dateTime-family lexical form
// against a custom "format" pattern (translated to a Go time layout) or the
// kind's default ISO-8601 profile; gDay/gMonth/gMonthDay (no Go layout
// equivalent) get a structural regex check instead.
func parseDateTimeValue(item string, dt Datatype) (interface{}, string) {
	switch dt.Base {
	case "gDay":
		return checkFixedDatePattern(item, `^---\d{2}(Z|[+-]\d{2}:\d{2})?$`, dt.Base)
	case "gMonth":
		return checkFixedDatePattern(item, `^--\d{2}(Z|[+-]\d{2}:\d{2})?$`, dt.Base)
	case "gMonthDay":
		return checkFixedDatePattern(item, `^--\d{2}-\d{2}(Z|[+-]\d{2}:\d{2})?$`, dt.Base)
	}

	if pattern, ok := dt.Format.(string); ok && pattern != "" {
		layout := patternTokens.Replace(pattern)
		parsed, err := time.Parse(layout, item)
		if err != nil {
			return Literal{Lexical: item}, dt.Base
		}
		canonical := parsed.Format(canonicalDateTimeLayout(dt.Base))
		return Literal{Lexical: canonical, Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
	}

	layouts := dateTimeDefaultLayouts[dt.Base]
	if layouts == nil {
		layouts = dateTimeDefaultLayouts["dateTime"]
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, item); err == nil {
			return Literal{Lexical: item, Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
		}
	}
	return Literal{Lexical: item}, dt.Base
}

func checkFixedDatePattern(item, pattern, base string) (interface{}, string) {
	if !regexp.MustCompile(pattern).MatchString(item) {
		return Literal{Lexical: item}, base
	}
	return Literal{Lexical: item, Datatype: IRI{Value: lookupIRI(base)}}, ""
}

var durationPattern = regexp.MustCompile(`^-?P(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)
var dayTimeDurationPattern = regexp.MustCompile(`^-?P(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)
var yearMonthDurationPattern = regexp.MustCompile(`^-?P(\d+Y)?(\d+M)?$`)

// parseDuration structurally validates an ISO-8601 duration lexical form;
// Go's time package has no xsd:duration equivalent, so the lexical form is
// the value and only well-formedness is checked.
func parseDuration(item string, dt Datatype) (interface{}, string) {
	var ok bool
	switch dt.Base {
	case "dayTimeDuration":
		ok = dayTimeDurationPattern.MatchString(item)
	case "yearMonthDuration":
		ok = yearMonthDurationPattern.MatchString(item)
	default:
		ok = durationPattern.MatchString(item)
	}
	if !ok || item == "P" || item == "-P" {
		return Literal{Lexical: item}, dt.Base
	}
	return Literal{Lexical: item, Datatype: IRI{Value: lookupIRI(dt.Base)}}, ""
}

// matchFormatLiteral applies a datatype.format regular expression to
// string-kind values (format is a regexp per CSVW §5.11.2 for non-numeric,
// non-date kinds).
func matchFormatLiteral(item, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return true
	}
	return re.MatchString(item)
}

// checkLengthFacets validates length/minLength/maxLength against the
// pre-datatype-dispatch string value, counted in Unicode code points.
func checkLengthFacets(item string, dt Datatype) string {
	n := len([]rune(item))
	if dt.Length != nil && n != *dt.Length {
		return fmt.Sprintf("length %d (expected %d)", n, *dt.Length)
	}
	if dt.MinLength != nil && n < *dt.MinLength {
		return fmt.Sprintf("length %d (minLength %d)", n, *dt.MinLength)
	}
	if dt.MaxLength != nil && n > *dt.MaxLength {
		return fmt.Sprintf("length %d (maxLength %d)", n, *dt.MaxLength)
	}
	return ""
}
