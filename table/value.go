package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================================
// VALUE — Dynamically-typed cell scalar
// ============================================================================
// Cells arrive from the parser as raw text. Inference and filtering always
// re-parse from the string form; Number values only appear after chart
// coercion or when a caller builds rows programmatically.
// ============================================================================

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Value is a closed variant over Null | Text(string) | Number(float64).
// The zero Value is Null. Values are comparable and usable as map keys.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Text wraps a raw string cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is absent or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindText && v.text == "")
}

// String returns the raw string form. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return FormatNumber(v.num)
	default:
		return ""
	}
}

// Float parses v with ParseFloat. Number values are returned as-is and
// Null yields NaN.
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return ParseFloat(v.text)
	default:
		return math.NaN()
	}
}

// Equal reports exact equality: same variant and same content.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.text == o.text && v.num == o.num
}

// MarshalJSON encodes Null as null, Text as a string and Number as a
// number. Non-finite numbers have no JSON form and encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, strings and numbers. Any other JSON literal
// (true, false) is kept as its raw text.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*v = Null()
	case strings.HasPrefix(s, `"`):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = Text(text)
	case s == "true" || s == "false":
		*v = Text(s)
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("unsupported cell value %s", s)
		}
		*v = Number(f)
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML encoders.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case KindText:
		return v.text, nil
	case KindNumber:
		return v.num, nil
	default:
		return nil, nil
	}
}

// ============================================================================
// NUMERIC PARSING
// ============================================================================

// ParseFloat is a permissive float parser: it skips leading whitespace and
// parses the longest numeric prefix, ignoring trailing garbage.
// "12px" → 12, " .5" → 0.5, "1e3x" → 1000, "-Infinity" → -Inf.
// Returns NaN when no numeric prefix exists.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, isSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	intDigits := scanDigits(s, i)
	i += intDigits
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = scanDigits(s, i+1)
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return math.NaN()
	}

	// Exponent only counts when at least one digit follows.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if n := scanDigits(s, j); n > 0 {
			i = j + n
		}
	}

	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		// ErrRange still carries ±Inf or 0.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// Coerce converts any cell to a number for plotting: ParseFloat on the
// string form, with NaN replaced by 0.
func Coerce(v Value) float64 {
	f := v.Float()
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// FormatNumber renders f in its shortest plain decimal form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func scanDigits(s string, from int) int {
	n := 0
	for from+n < len(s) && s[from+n] >= '0' && s[from+n] <= '9' {
		n++
	}
	return n
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
