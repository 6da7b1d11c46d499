package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() *Metadata {
	return &Metadata{
		CountryID:    "uk",
		CurrentLawID: "1",
		EconomyOptions: EconomyOptions{
			Region:     []SelectOption{{Name: "uk", Label: "United Kingdom"}, {Name: "scotland", Label: "Scotland"}},
			TimePeriod: []SelectOption{{Name: "2024", Label: "2024"}, {Name: "2025", Label: "2025"}},
		},
		Parameters: map[string]ParameterMetadata{
			"gov.tax.rate": {
				Label:  "Basic rate",
				Unit:   "/1",
				Values: Timeline{"2020-01-01": Number(0.20)},
			},
			"gov.abolitions.allowance": {
				Label: "Abolish personal allowance",
				Unit:  UnitAbolition,
			},
		},
	}
}

func TestMetadataDefaults(t *testing.T) {
	meta := testMetadata()
	assert.Equal(t, "uk", meta.DefaultRegion())
	assert.Equal(t, "2024", meta.DefaultTimePeriod())

	empty := &Metadata{}
	assert.Empty(t, empty.DefaultRegion())
	assert.Empty(t, empty.DefaultTimePeriod())
}

func TestParameterIndex(t *testing.T) {
	ix := testMetadata().Index()
	assert.Equal(t, 2, ix.Len())

	p := ix.ByName("gov.tax.rate")
	require.NotNil(t, p)
	assert.Equal(t, "gov.tax.rate", p.Name)
	assert.Equal(t, "Basic rate", p.Label)
	assert.False(t, p.IsBoolean())

	abolition := ix.ByName("gov.abolitions.allowance")
	require.NotNil(t, abolition)
	assert.True(t, abolition.IsBoolean())

	assert.Nil(t, ix.ByName("gov.unknown"))
}
