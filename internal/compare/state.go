// Package compare owns the canonical comparison state carried in the URL
// query string: derivation, repair of incomplete states, and the
// baseline/reform swap.
package compare

import (
	"net/url"
	"strings"

	"github.com/leonali030/policyengine-app/internal/model"
)

// Query keys consumed and produced by the comparison view.
const (
	KeyRegion     = "region"
	KeyTimePeriod = "timePeriod"
	KeyBaseline   = "baseline"
	KeyReform     = "reform"
	KeyFocus      = "focus"
	KeyHousehold  = "household"
	KeyRenamed    = "renamed"
)

// focusPolicyOutputPrefix marks focus values that show a policy output
// panel rather than the editor.
const focusPolicyOutputPrefix = "policyOutput"

// State is the comparison tuple derived from URL parameters.
type State struct {
	Region           string
	TimePeriod       string
	BaselineID       string
	ReformID         string
	Focus            string
	HouseholdPresent bool
	Renamed          bool
}

// FromParams derives the comparison state from query parameters.
func FromParams(params url.Values) State {
	return State{
		Region:           params.Get(KeyRegion),
		TimePeriod:       params.Get(KeyTimePeriod),
		BaselineID:       params.Get(KeyBaseline),
		ReformID:         params.Get(KeyReform),
		Focus:            params.Get(KeyFocus),
		HouseholdPresent: params.Has(KeyHousehold),
		Renamed:          params.Has(KeyRenamed),
	}
}

// Complete reports whether all four comparison inputs are present.
func (s State) Complete() bool {
	return s.Region != "" && s.TimePeriod != "" && s.BaselineID != "" && s.ReformID != ""
}

// FocusIsPolicyOutput reports whether the active focus shows a policy
// output panel.
func (s State) FocusIsPolicyOutput() bool {
	return strings.HasPrefix(s.Focus, focusPolicyOutputPrefix)
}

// RepairResult is the outcome of a repair pass.
type RepairResult struct {
	// Complete reports whether all four comparison inputs are present in
	// the returned parameters. The reform id is never defaulted, so a
	// repaired state can still be incomplete.
	Complete bool
	// Changed reports whether the returned parameters differ from the
	// input. Callers apply them as one atomic URL rewrite.
	Changed bool
	Params  url.Values
}

// Repair fills in missing defaultable keys from the metadata snapshot.
// All three of region, timePeriod and baseline are written in a single
// pass even if only one was missing, so no partially-defaulted state is
// ever observable. Repairing an already-repaired state is a no-op.
func Repair(params url.Values, meta *model.Metadata) RepairResult {
	s := FromParams(params)
	if s.Region != "" && s.TimePeriod != "" && s.BaselineID != "" {
		return RepairResult{Complete: s.Complete(), Changed: false, Params: params}
	}

	next := copyParams(params)
	next.Set(KeyRegion, orDefault(s.Region, meta.DefaultRegion()))
	next.Set(KeyTimePeriod, orDefault(s.TimePeriod, meta.DefaultTimePeriod()))
	next.Set(KeyBaseline, orDefault(s.BaselineID, meta.CurrentLawID))
	return RepairResult{Complete: FromParams(next).Complete(), Changed: true, Params: next}
}

// SwapBaselineAndReform swaps which policy id is labeled baseline versus
// reform. When no reform is set the baseline (or current law) is promoted
// into reform and the baseline key is removed entirely; there is no
// symmetric id to assign back, and naively swapping would either drop
// both or duplicate one.
func SwapBaselineAndReform(params url.Values, meta *model.Metadata) url.Values {
	s := FromParams(params)
	next := copyParams(params)

	next.Set(KeyReform, orDefault(s.BaselineID, meta.CurrentLawID))
	if s.ReformID == "" {
		next.Del(KeyBaseline)
	} else {
		next.Set(KeyBaseline, s.ReformID)
	}
	return next
}

func copyParams(params url.Values) url.Values {
	next := make(url.Values, len(params))
	for k, vs := range params {
		next[k] = append([]string(nil), vs...)
	}
	return next
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
