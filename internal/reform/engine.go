// Package reform turns a sparse reform payload into an ordered sequence
// of human-readable semantic changes against the baseline timeline.
package reform

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leonali030/policyengine-app/internal/format"
	"github.com/leonali030/policyengine-app/internal/model"
	"github.com/leonali030/policyengine-app/internal/timeline"
)

// ChangeKind classifies one override relative to its baseline value.
type ChangeKind string

const (
	KindEnable  ChangeKind = "Enable"
	KindDisable ChangeKind = "Disable"
	KindRaise   ChangeKind = "Raise"
	KindLower   ChangeKind = "Lower"
)

// DiffEntry is one rendered change. Boolean changes carry no old/new
// value strings; the switch direction is the information.
type DiffEntry struct {
	Parameter      string     `json:"parameter" yaml:"parameter"`
	ParameterLabel string     `json:"parameter_label" yaml:"parameter_label"`
	Kind           ChangeKind `json:"kind" yaml:"kind"`
	OldValue       string     `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue       string     `json:"new_value,omitempty" yaml:"new_value,omitempty"`
	StartDate      string     `json:"start_date" yaml:"start_date"`
	EndDate        string     `json:"end_date" yaml:"end_date"`
}

// Walk visits every override in payload order, calling visit for each
// derived entry. Data-integrity problems are passed to onError; returning
// false from onError aborts the walk and Walk returns that error.
// The walk is stateless and deterministic: identical inputs produce an
// identical visit sequence.
func Walk(data model.ReformData, ix *model.ParameterIndex, visit func(DiffEntry), onError func(error) bool) error {
	for _, po := range data.Parameters {
		param := ix.ByName(po.Name)
		if param == nil {
			err := &UnknownParameterError{Name: po.Name}
			if !onError(err) {
				return err
			}
			continue
		}
		for _, period := range po.Periods {
			entry, err := classify(param, period)
			if err != nil {
				if !onError(err) {
					return err
				}
				continue
			}
			visit(entry)
		}
	}
	return nil
}

// ComputeDiffs returns the full ordered diff, aborting on the first
// data-integrity error.
func ComputeDiffs(data model.ReformData, ix *model.ParameterIndex) ([]DiffEntry, error) {
	var entries []DiffEntry
	err := Walk(data, ix,
		func(e DiffEntry) { entries = append(entries, e) },
		func(error) bool { return false },
	)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ComputeDiffsLenient returns the diff with integrity errors skipped and
// logged, for callers that prefer a partial view over an aborted one.
func ComputeDiffsLenient(data model.ReformData, ix *model.ParameterIndex) []DiffEntry {
	var entries []DiffEntry
	_ = Walk(data, ix,
		func(e DiffEntry) { entries = append(entries, e) },
		func(err error) bool {
			zap.L().Warn("skipping reform entry", zap.Error(err))
			return true
		},
	)
	return entries
}

// classify derives a single diff entry. The baseline value is resolved at
// the period's start date: each change is compared against what was in
// effect when it begins.
func classify(param *model.ParameterMetadata, period model.PeriodOverride) (DiffEntry, error) {
	start, end, err := model.ParsePeriodKey(period.Key)
	if err != nil {
		return DiffEntry{}, &MalformedTimePeriodError{Parameter: param.Name, Key: period.Key, Err: err}
	}

	entry := DiffEntry{
		Parameter:      param.Name,
		ParameterLabel: param.Label,
		StartDate:      start.Format(model.DateLayout),
		EndDate:        end.Format(model.DateLayout),
	}

	if param.IsBoolean() {
		if period.Value.Truthy() {
			entry.Kind = KindEnable
		} else {
			entry.Kind = KindDisable
		}
		return entry, nil
	}

	baseline, err := timeline.ValueAt(param.Values, start)
	switch {
	case err == nil:
	case eris.Is(err, timeline.ErrBeforeTimeline):
		// The earliest known value stands in for history we don't have.
		zap.L().Debug("override predates parameter timeline",
			zap.String("parameter", param.Name),
			zap.String("start", entry.StartDate))
	default:
		return DiffEntry{}, eris.Wrapf(err, "reform: baseline for %s", param.Name)
	}

	// Non-strict comparison: an override equal to the baseline
	// classifies as Lower.
	if period.Value.Float() > baseline.Float() {
		entry.Kind = KindRaise
	} else {
		entry.Kind = KindLower
	}
	entry.OldValue = format.Value(param, baseline)
	entry.NewValue = format.Value(param, period.Value)
	return entry, nil
}
