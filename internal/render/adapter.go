// Package render maps diff entries and comparison state into renderable
// units: plain-text change lines and navigation actions.
package render

import (
	"fmt"

	"github.com/leonali030/policyengine-app/internal/compare"
	"github.com/leonali030/policyengine-app/internal/reform"
)

// Terminal display states.
const (
	EmptyReformMessage = "Your reform is empty"
	NoReformMessage    = "No reform specified"
)

// Group collects the rendered changes of one parameter, in payload order.
type Group struct {
	Parameter string
	Label     string
	Changes   []string
}

// ChangeLine renders one diff entry as a sentence. Boolean switches show
// only the direction; numeric changes show old and new values.
func ChangeLine(e reform.DiffEntry) string {
	switch e.Kind {
	case reform.KindEnable, reform.KindDisable:
		return fmt.Sprintf("%s %s", e.Kind, e.ParameterLabel)
	default:
		return fmt.Sprintf("%s %s from %s to %s", e.Kind, e.ParameterLabel, e.OldValue, e.NewValue)
	}
}

// PeriodLine renders the effective date range of an entry.
func PeriodLine(e reform.DiffEntry) string {
	return fmt.Sprintf("%s to %s", e.StartDate, e.EndDate)
}

// GroupChanges buckets rendered entries by parameter, preserving order.
func GroupChanges(entries []reform.DiffEntry) []Group {
	var groups []Group
	byName := map[string]int{}
	for _, e := range entries {
		i, ok := byName[e.Parameter]
		if !ok {
			i = len(groups)
			byName[e.Parameter] = i
			groups = append(groups, Group{Parameter: e.Parameter, Label: e.ParameterLabel})
		}
		groups[i].Changes = append(groups[i].Changes,
			fmt.Sprintf("%s (%s)", ChangeLine(e), PeriodLine(e)))
	}
	return groups
}

// Action is a navigation intent offered to the user.
type Action struct {
	Label   string
	Focus   string
	Target  string
	Primary bool
}

// Actions derives the navigation actions for the current comparison
// state. A policy-output focus offers the way back to the editor and
// vice versa; the household action depends on whether a linked household
// simulation exists.
func Actions(s compare.State, countryID string) []Action {
	var actions []Action
	if s.Focus != "" {
		if s.FocusIsPolicyOutput() {
			actions = append(actions, Action{Label: "Edit my policy", Focus: "gov", Primary: true})
		} else {
			actions = append(actions, Action{Label: "Calculate economic impact", Focus: "policyOutput", Primary: true})
		}
	}
	householdTarget := fmt.Sprintf("/%s/household", countryID)
	if s.HouseholdPresent {
		actions = append(actions, Action{Label: "Calculate my household impact", Focus: "householdOutput.netIncome", Target: householdTarget})
	} else {
		actions = append(actions, Action{Label: "Enter my household", Focus: "intro", Target: householdTarget})
	}
	return actions
}
