package model

// Unit strings that classify a parameter as boolean-valued. Boolean
// parameters render as on/off switches rather than old/new values.
const (
	UnitBool      = "bool"
	UnitAbolition = "abolition"
)

// Timeline maps ISO dates (YYYY-MM-DD) to the value effective from that
// date until superseded by a later entry.
type Timeline map[string]Value

// ParameterMetadata describes one named, typed, time-varying quantity in
// the policy system.
type ParameterMetadata struct {
	Name   string   `json:"-"`
	Label  string   `json:"label"`
	Unit   string   `json:"unit"`
	Values Timeline `json:"values"`
}

// IsBoolean reports whether the parameter carries a boolean unit.
func (p *ParameterMetadata) IsBoolean() bool {
	return p.Unit == UnitBool || p.Unit == UnitAbolition
}

// SelectOption is one allowed value of an enumerated metadata option.
type SelectOption struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// EconomyOptions enumerates the allowed regions and time periods for
// economy-wide comparisons.
type EconomyOptions struct {
	Region     []SelectOption `json:"region"`
	TimePeriod []SelectOption `json:"time_period"`
}

// Metadata is the per-country snapshot of parameter definitions and
// comparison options. Loaded once per session and treated as immutable.
type Metadata struct {
	CountryID      string                       `json:"country_id"`
	CurrentLawID   string                       `json:"current_law_id"`
	EconomyOptions EconomyOptions               `json:"economy_options"`
	Parameters     map[string]ParameterMetadata `json:"parameters"`
}

// DefaultRegion returns the first allowed region, or "" if none exist.
func (m *Metadata) DefaultRegion() string {
	if len(m.EconomyOptions.Region) == 0 {
		return ""
	}
	return m.EconomyOptions.Region[0].Name
}

// DefaultTimePeriod returns the first allowed time period, or "" if none
// exist.
func (m *Metadata) DefaultTimePeriod() string {
	if len(m.EconomyOptions.TimePeriod) == 0 {
		return ""
	}
	return m.EconomyOptions.TimePeriod[0].Name
}

// ParameterIndex is an indexed, read-only view of parameter definitions.
type ParameterIndex struct {
	byName map[string]*ParameterMetadata
}

// NewParameterIndex builds an index over the snapshot's parameters,
// stamping each entry with its map key as the canonical name.
func NewParameterIndex(params map[string]ParameterMetadata) *ParameterIndex {
	ix := &ParameterIndex{byName: make(map[string]*ParameterMetadata, len(params))}
	for name, p := range params {
		p.Name = name
		cp := p
		ix.byName[name] = &cp
	}
	return ix
}

// ByName returns the parameter definition for name, or nil if unknown.
func (ix *ParameterIndex) ByName(name string) *ParameterMetadata {
	return ix.byName[name]
}

// Len returns the number of indexed parameters.
func (ix *ParameterIndex) Len() int {
	return len(ix.byName)
}

// Index builds a ParameterIndex over the snapshot.
func (m *Metadata) Index() *ParameterIndex {
	return NewParameterIndex(m.Parameters)
}
