package carbon

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats f rounded to precision decimals with thousand separators.
// Example: FormatFloat(1081.9087, 2) returns "1,081.91".
func FormatFloat(f float64, precision int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if precision < 0 {
		precision = 0
	}

	const base = 10
	multiplier := math.Pow(base, float64(precision))
	rounded := math.Round(math.Abs(f)*multiplier) / multiplier

	sign := ""
	if f < 0 && rounded != 0 {
		sign = "-"
	}

	formatted := strconv.FormatFloat(rounded, 'f', precision, 64)
	intPart, fracPart, hasFrac := strings.Cut(formatted, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Beyond int64: fall back to the ungrouped representation.
		return sign + formatted
	}
	if !hasFrac {
		return sign + FormatNumber(n)
	}
	return sign + FormatNumber(n) + "." + fracPart
}

// FormatTons renders an estimate in the requested unit, e.g. "1,081.91 t CO2".
func FormatTons(tons float64, unit string, precision int) (string, error) {
	v, err := ConvertTons(tons, unit)
	if err != nil {
		return "", err
	}
	return FormatFloat(v, precision) + " " + UnitLabel(unit), nil
}

// FormatLarge formats large counts with abbreviated notation.
//
// Values below LargeNumberThreshold use comma-separated integers.
// Example: FormatLarge(1500000000) returns "~1.5 billion".
func FormatLarge(n float64) string {
	if n >= BillionThreshold {
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	}
	if n >= LargeNumberThreshold {
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	}
	return FormatNumber(int64(math.Round(n)))
}
