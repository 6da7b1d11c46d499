// Package timeline resolves a parameter's value at a point in time from
// its dated history of values.
package timeline

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/leonali030/policyengine-app/internal/model"
)

// ErrBeforeTimeline reports that the requested instant precedes every
// entry in the timeline. The earliest known value is still returned so
// callers can fall back to it deliberately rather than silently.
var ErrBeforeTimeline = eris.New("timeline: instant precedes all entries")

// ErrEmptyTimeline reports a timeline with no entries at all.
var ErrEmptyTimeline = eris.New("timeline: no entries")

// ValueAt returns the value in effect at the given instant: the entry
// with the latest date that is on or before it. Entries with malformed
// dates are ignored.
func ValueAt(tl model.Timeline, instant time.Time) (model.Value, error) {
	type entry struct {
		at    time.Time
		value model.Value
	}
	entries := make([]entry, 0, len(tl))
	for ds, v := range tl {
		at, err := time.Parse(model.DateLayout, ds)
		if err != nil {
			continue
		}
		entries = append(entries, entry{at: at, value: v})
	}
	if len(entries) == 0 {
		return model.Value{}, ErrEmptyTimeline
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	if instant.Before(entries[0].at) {
		return entries[0].value, ErrBeforeTimeline
	}
	current := entries[0].value
	for _, e := range entries[1:] {
		if e.at.After(instant) {
			break
		}
		current = e.value
	}
	return current, nil
}

// ValueAtDate is ValueAt for an ISO date string instant.
func ValueAtDate(tl model.Timeline, instant string) (model.Value, error) {
	at, err := time.Parse(model.DateLayout, instant)
	if err != nil {
		return model.Value{}, eris.Wrapf(err, "timeline: parse instant %q", instant)
	}
	return ValueAt(tl, at)
}
