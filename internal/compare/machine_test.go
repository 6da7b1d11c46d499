package compare

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachineInitialState(t *testing.T) {
	withReform, err := url.ParseQuery("reform=5")
	require.NoError(t, err)
	assert.Equal(t, ViewViewing, NewMachine(withReform).Current())

	assert.Equal(t, ViewNoReform, NewMachine(url.Values{}).Current())
}

func TestMachineTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   ViewState
		intent Intent
		want   ViewState
	}{
		{name: "select_exits_no_reform", from: ViewNoReform, intent: IntentSelectReform, want: ViewViewing},
		{name: "search_ignored_in_no_reform", from: ViewNoReform, intent: IntentOpenSearch, want: ViewNoReform},
		{name: "rename_ignored_in_no_reform", from: ViewNoReform, intent: IntentBeginRename, want: ViewNoReform},
		{name: "open_search", from: ViewViewing, intent: IntentOpenSearch, want: ViewSearchingReform},
		{name: "begin_rename", from: ViewViewing, intent: IntentBeginRename, want: ViewRenaming},
		{name: "clear_from_viewing", from: ViewViewing, intent: IntentClearReform, want: ViewNoReform},
		{name: "select_closes_search", from: ViewSearchingReform, intent: IntentSelectReform, want: ViewViewing},
		{name: "close_search", from: ViewSearchingReform, intent: IntentCloseSearch, want: ViewViewing},
		{name: "clear_from_search", from: ViewSearchingReform, intent: IntentClearReform, want: ViewNoReform},
		{name: "end_rename", from: ViewRenaming, intent: IntentEndRename, want: ViewViewing},
		{name: "clear_from_rename", from: ViewRenaming, intent: IntentClearReform, want: ViewNoReform},
		{name: "search_ignored_in_rename", from: ViewRenaming, intent: IntentOpenSearch, want: ViewRenaming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{state: tt.from}
			assert.Equal(t, tt.want, m.Apply(tt.intent))
		})
	}
}

func TestMachineObserveReformLoss(t *testing.T) {
	withReform, err := url.ParseQuery("reform=5")
	require.NoError(t, err)

	m := NewMachine(withReform)
	m.Apply(IntentBeginRename)
	require.Equal(t, ViewRenaming, m.Current())

	// Losing the reform id forces NoReform regardless of activity.
	assert.Equal(t, ViewNoReform, m.Observe(url.Values{}))

	// Re-observing a reform from NoReform resumes viewing.
	assert.Equal(t, ViewViewing, m.Observe(withReform))
}

func TestMachineObserveKeepsActivity(t *testing.T) {
	withReform, err := url.ParseQuery("reform=5")
	require.NoError(t, err)

	m := NewMachine(withReform)
	m.Apply(IntentOpenSearch)

	// A URL change that still has a reform doesn't interrupt the search.
	assert.Equal(t, ViewSearchingReform, m.Observe(withReform))
}
