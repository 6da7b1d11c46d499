package compare

import "net/url"

// ViewState is the top-level comparison view state.
type ViewState string

const (
	// ViewNoReform: no reform id is set; only selecting a reform exits.
	ViewNoReform ViewState = "no_reform"
	// ViewViewing: a reform is set and its diff is renderable.
	ViewViewing ViewState = "viewing"
	// ViewSearchingReform: the user is picking a policy via search.
	ViewSearchingReform ViewState = "searching"
	// ViewRenaming: the naming workflow is active.
	ViewRenaming ViewState = "renaming"
)

// Intent is a user action driving a view-state transition.
type Intent string

const (
	IntentSelectReform Intent = "select_reform"
	IntentOpenSearch   Intent = "open_search"
	IntentCloseSearch  Intent = "close_search"
	IntentBeginRename  Intent = "begin_rename"
	IntentEndRename    Intent = "end_rename"
	IntentClearReform  Intent = "clear_reform"
)

// Machine tracks the comparison view state across user intents and URL
// observations.
type Machine struct {
	state ViewState
}

// NewMachine derives the initial view state from query parameters.
func NewMachine(params url.Values) *Machine {
	m := &Machine{state: ViewNoReform}
	m.Observe(params)
	return m
}

// Current returns the active view state.
func (m *Machine) Current() ViewState {
	return m.state
}

// Observe re-derives the state from a URL change. Losing the reform id
// forces NoReform regardless of what the user was doing.
func (m *Machine) Observe(params url.Values) ViewState {
	if params.Get(KeyReform) == "" {
		m.state = ViewNoReform
	} else if m.state == ViewNoReform {
		m.state = ViewViewing
	}
	return m.state
}

// Apply advances the machine on a user intent. Intents that don't apply
// in the current state are ignored and the state is returned unchanged.
func (m *Machine) Apply(intent Intent) ViewState {
	switch m.state {
	case ViewNoReform:
		if intent == IntentSelectReform {
			m.state = ViewViewing
		}
	case ViewViewing:
		switch intent {
		case IntentOpenSearch:
			m.state = ViewSearchingReform
		case IntentBeginRename:
			m.state = ViewRenaming
		case IntentClearReform:
			m.state = ViewNoReform
		}
	case ViewSearchingReform:
		switch intent {
		case IntentSelectReform, IntentCloseSearch:
			m.state = ViewViewing
		case IntentClearReform:
			m.state = ViewNoReform
		}
	case ViewRenaming:
		switch intent {
		case IntentEndRename:
			m.state = ViewViewing
		case IntentClearReform:
			m.state = ViewNoReform
		}
	}
	return m.state
}
