package schema

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/spektr-org/tabula/table"
)

// DisplayDateLayout is the layout date cells are rendered with.
const DisplayDateLayout = "2006-01-02"

// FormatValue renders a cell for display according to its column kind.
// Numbers get thousands separators and at most three fraction digits,
// dates are printed as DisplayDateLayout, anything else as its raw string.
// Null renders as "".
func FormatValue(v table.Value, kind Kind) string {
	if v.IsNull() {
		return ""
	}

	switch kind {
	case KindNumber:
		f := v.Float()
		if math.IsNaN(f) {
			return "NaN"
		}
		p := message.NewPrinter(language.English)
		return p.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
	case KindDate:
		t, ok := ParseDate(v.String())
		if !ok {
			return "Invalid Date"
		}
		return t.Format(DisplayDateLayout)
	default:
		return v.String()
	}
}
