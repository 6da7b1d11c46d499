package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leonali030/policyengine-app/internal/model"
)

func param(unit string) *model.ParameterMetadata {
	return &model.ParameterMetadata{Name: "p", Label: "P", Unit: unit}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name  string
		unit  string
		value model.Value
		want  string
	}{
		{name: "bool_true", unit: "bool", value: model.Boolean(true), want: "Yes"},
		{name: "bool_false", unit: "bool", value: model.Boolean(false), want: "No"},
		{name: "abolition_on", unit: "abolition", value: model.Boolean(true), want: "Yes"},
		{name: "gbp_grouping", unit: "currency-GBP", value: model.Number(1234.5), want: "£1,234.5"},
		{name: "gbp_whole", unit: "currency-GBP", value: model.Number(12570), want: "£12,570"},
		{name: "usd", unit: "currency-USD", value: model.Number(2500), want: "$2,500"},
		{name: "fraction_as_percent", unit: "/1", value: model.Number(0.25), want: "25%"},
		{name: "percent_decimal", unit: "percent", value: model.Number(0.125), want: "12.5%"},
		{name: "unknown_unit_fallback", unit: "children", value: model.Number(3), want: "3"},
		{name: "unknown_unit_grouping", unit: "widgets", value: model.Number(1000000), want: "1,000,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(param(tt.unit), tt.value))
		})
	}
}

func TestValueBooleanUnitIgnoresNumericKind(t *testing.T) {
	// Upstream payloads sometimes encode abolition switches as 0/1.
	assert.Equal(t, "Yes", Value(param("abolition"), model.Number(1)))
	assert.Equal(t, "No", Value(param("bool"), model.Number(0)))
}
