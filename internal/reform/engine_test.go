package reform

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonali030/policyengine-app/internal/model"
)

func testIndex() *model.ParameterIndex {
	return model.NewParameterIndex(map[string]model.ParameterMetadata{
		"gov.benefit.amount": {
			Label:  "Benefit amount",
			Unit:   "currency-GBP",
			Values: model.Timeline{"2020-01-01": model.Number(200)},
		},
		"gov.tax.rate": {
			Label: "Basic rate",
			Unit:  "/1",
			Values: model.Timeline{
				"2020-01-01": model.Number(0.20),
				"2023-01-01": model.Number(0.19),
			},
		},
		"gov.abolitions.allowance": {
			Label: "Abolish personal allowance",
			Unit:  "abolition",
		},
	})
}

func reformFromJSON(t *testing.T, payload string) model.ReformData {
	t.Helper()
	var data model.ReformData
	require.NoError(t, json.Unmarshal([]byte(payload), &data))
	return data
}

func TestComputeDiffsEmpty(t *testing.T) {
	entries, err := ComputeDiffs(model.ReformData{}, testIndex())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestComputeDiffsRaise(t *testing.T) {
	data := reformFromJSON(t, `{"gov.benefit.amount": {"2022-01-01.2023-01-01": 500}}`)

	entries, err := ComputeDiffs(data, testIndex())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, KindRaise, e.Kind)
	assert.Equal(t, "Benefit amount", e.ParameterLabel)
	assert.Equal(t, "£200", e.OldValue)
	assert.Equal(t, "£500", e.NewValue)
	assert.Equal(t, "2022-01-01", e.StartDate)
	assert.Equal(t, "2023-01-01", e.EndDate)
}

func TestComputeDiffsLowerUsesBaselineAtPeriodStart(t *testing.T) {
	// The baseline is anchored at the period's start date: in 2022 the
	// rate was still 0.20, so lowering to 0.19 must compare against 0.20,
	// not the 2023 value.
	data := reformFromJSON(t, `{"gov.tax.rate": {"2022-01-01.2023-01-01": 0.19}}`)

	entries, err := ComputeDiffs(data, testIndex())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, KindLower, entries[0].Kind)
	assert.Equal(t, "20%", entries[0].OldValue)
	assert.Equal(t, "19%", entries[0].NewValue)
}

func TestComputeDiffsEqualValueClassifiesAsLower(t *testing.T) {
	// Non-strict comparison: equal never classifies as Raise.
	data := reformFromJSON(t, `{"gov.tax.rate": {"2022-01-01.2023-01-01": 0.20}}`)

	entries, err := ComputeDiffs(data, testIndex())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindLower, entries[0].Kind)
}

func TestComputeDiffsBooleanUnits(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind ChangeKind
	}{
		{
			name:     "enable",
			payload:  `{"gov.abolitions.allowance": {"2022-01-01.2023-01-01": true}}`,
			wantKind: KindEnable,
		},
		{
			name:     "disable",
			payload:  `{"gov.abolitions.allowance": {"2022-01-01.2023-01-01": false}}`,
			wantKind: KindDisable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ComputeDiffs(reformFromJSON(t, tt.payload), testIndex())
			require.NoError(t, err)
			require.Len(t, entries, 1)

			e := entries[0]
			assert.Equal(t, tt.wantKind, e.Kind)
			// Boolean switches carry no value strings.
			assert.Empty(t, e.OldValue)
			assert.Empty(t, e.NewValue)
		})
	}
}

func TestComputeDiffsDeterministic(t *testing.T) {
	data := reformFromJSON(t, `{
		"gov.tax.rate": {"2022-01-01.2023-01-01": 0.25, "2023-01-01.2024-01-01": 0.30},
		"gov.benefit.amount": {"2022-01-01.2023-01-01": 100}
	}`)

	first, err := ComputeDiffs(data, testIndex())
	require.NoError(t, err)
	second, err := ComputeDiffs(data, testIndex())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Payload order, not alphabetical order.
	require.Len(t, first, 3)
	assert.Equal(t, "gov.tax.rate", first[0].Parameter)
	assert.Equal(t, "gov.tax.rate", first[1].Parameter)
	assert.Equal(t, "gov.benefit.amount", first[2].Parameter)
}

func TestComputeDiffsUnknownParameter(t *testing.T) {
	data := reformFromJSON(t, `{"gov.not.real": {"2022-01-01.2023-01-01": 1}}`)

	_, err := ComputeDiffs(data, testIndex())
	require.Error(t, err)

	var unknown *UnknownParameterError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "gov.not.real", unknown.Name)
}

func TestComputeDiffsMalformedPeriodKey(t *testing.T) {
	tests := []string{
		`{"gov.tax.rate": {"2022-01-01": 0.25}}`,
		`{"gov.tax.rate": {"bogus.2023-01-01": 0.25}}`,
		`{"gov.tax.rate": {"2023-01-01.2022-01-01": 0.25}}`,
	}

	for _, payload := range tests {
		_, err := ComputeDiffs(reformFromJSON(t, payload), testIndex())
		require.Error(t, err)

		var malformed *MalformedTimePeriodError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "gov.tax.rate", malformed.Parameter)
	}
}

func TestComputeDiffsLenientSkipsBadEntries(t *testing.T) {
	data := reformFromJSON(t, `{
		"gov.not.real": {"2022-01-01.2023-01-01": 1},
		"gov.benefit.amount": {"2022-01-01.2023-01-01": 500}
	}`)

	entries := ComputeDiffsLenient(data, testIndex())
	require.Len(t, entries, 1)
	assert.Equal(t, "gov.benefit.amount", entries[0].Parameter)
}

func TestComputeDiffsBeforeTimelineFallsBack(t *testing.T) {
	// Override predating all timeline entries compares against the
	// earliest known value instead of failing.
	data := reformFromJSON(t, `{"gov.benefit.amount": {"2010-01-01.2011-01-01": 500}}`)

	entries, err := ComputeDiffs(data, testIndex())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindRaise, entries[0].Kind)
	assert.Equal(t, "£200", entries[0].OldValue)
}
