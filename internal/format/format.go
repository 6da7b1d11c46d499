// Package format renders raw parameter values as display strings keyed
// off the parameter's unit.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/leonali030/policyengine-app/internal/model"
)

const (
	unitCurrencyGBP = "currency-GBP"
	unitCurrencyUSD = "currency-USD"
	unitPercent     = "percent"
	unitFraction    = "/1"
)

var (
	gbPrinter = message.NewPrinter(language.BritishEnglish)
	usPrinter = message.NewPrinter(language.AmericanEnglish)
)

// Value renders a raw parameter value according to the parameter's unit.
// It never fails for a well-typed value; unrecognized units fall back to
// a locale-aware numeric rendering.
func Value(param *model.ParameterMetadata, v model.Value) string {
	if param.IsBoolean() {
		if v.Truthy() {
			return "Yes"
		}
		return "No"
	}

	switch param.Unit {
	case unitCurrencyGBP:
		return gbPrinter.Sprintf("£%v", number.Decimal(v.Float(), number.MaxFractionDigits(2)))
	case unitCurrencyUSD:
		return usPrinter.Sprintf("$%v", number.Decimal(v.Float(), number.MaxFractionDigits(2)))
	case unitPercent, unitFraction:
		// Fractional rates are stored as 0..1 and displayed as percentages.
		return gbPrinter.Sprintf("%v%%", number.Decimal(v.Float()*100, number.MaxFractionDigits(1)))
	default:
		return gbPrinter.Sprintf("%v", number.Decimal(v.Float()))
	}
}
