package dashboard

import (
	"shopstats/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format selects how a metric value is displayed.
type Format string

const (
	FormatInt      Format = "int"      // 3,900
	FormatCurrency Format = "currency" // $59.76
	FormatPercent  Format = "percent"  // 27.0%
	FormatChange   Format = "change"   // +4.1%
	FormatRating   Format = "rating"   // 3.7/5
	FormatYears    Format = "years"    // 44.1 yrs
	FormatDecimal  Format = "decimal"  // 25.4
	FormatText     Format = "text"
)

var printer = message.NewPrinter(language.English)

// Display renders v according to f.
func Display(f Format, v float64) string {
	switch f {
	case FormatInt:
		return printer.Sprintf("%d", int64(v))
	case FormatCurrency:
		return printer.Sprintf("$%.2f", v)
	case FormatPercent:
		return printer.Sprintf("%.1f%%", v)
	case FormatChange:
		return printer.Sprintf("%+.1f%%", v)
	case FormatRating:
		return printer.Sprintf("%.1f/5", v)
	case FormatYears:
		return printer.Sprintf("%.1f yrs", v)
	}
	return printer.Sprintf("%.1f", v)
}

func displayScalar(f Format, s models.Scalar) string {
	if s.NoData {
		return models.NoDataLabel
	}
	return Display(f, s.Value)
}
