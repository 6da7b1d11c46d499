package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the ISO date format used by period keys and timelines.
const DateLayout = "2006-01-02"

// Policy is a named reform payload resolved from a policy id.
type Policy struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Data  ReformData `json:"data"`
}

// DisplayLabel returns the policy's label, falling back to "Policy #<id>"
// when it has none.
func (p *Policy) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return "Policy #" + p.ID
}

// PeriodOverride is one override value applied over a date interval.
type PeriodOverride struct {
	Key   string
	Value Value
}

// ParameterOverrides groups a parameter's overrides in payload order.
type ParameterOverrides struct {
	Name    string
	Periods []PeriodOverride
}

// ReformData is the sparse set of parameter overrides that defines a
// reform. Parameter names and period keys keep the order they had in the
// source JSON payload; a plain map would lose it.
type ReformData struct {
	Parameters []ParameterOverrides
}

// Empty reports whether the reform overrides nothing.
func (d ReformData) Empty() bool {
	return len(d.Parameters) == 0
}

// UnmarshalJSON decodes the two-level override object with a token
// decoder so payload key order survives.
func (d *ReformData) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "model: decode reform data")
	}
	if tok == nil {
		d.Parameters = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.Errorf("model: reform data must be an object, got %v", tok)
	}

	d.Parameters = nil
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "model: decode parameter name")
		}
		name := nameTok.(string)

		periods, err := decodePeriods(dec, name)
		if err != nil {
			return err
		}
		d.Parameters = append(d.Parameters, ParameterOverrides{Name: name, Periods: periods})
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "model: decode reform data close")
	}
	return nil
}

func decodePeriods(dec *json.Decoder, param string) ([]PeriodOverride, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrapf(err, "model: decode overrides for %s", param)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, eris.Errorf("model: overrides for %s must be an object", param)
	}

	var periods []PeriodOverride
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrapf(err, "model: decode period key for %s", param)
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrapf(err, "model: decode override value for %s", param)
		}
		val, err := valueFromToken(valTok)
		if err != nil {
			return nil, eris.Wrapf(err, "model: override %s[%s]", param, key)
		}
		periods = append(periods, PeriodOverride{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return nil, eris.Wrapf(err, "model: decode overrides close for %s", param)
	}
	return periods, nil
}

func valueFromToken(tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case bool:
		return Boolean(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, eris.Wrap(err, "parse number")
		}
		return Number(f), nil
	default:
		return Value{}, eris.Errorf("value must be boolean or number, got %v", tok)
	}
}

// MarshalJSON re-encodes the overrides preserving payload order.
func (d ReformData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range d.Parameters {
		if i > 0 {
			buf.WriteByte(',')
		}
		nameJSON, _ := json.Marshal(p.Name)
		buf.Write(nameJSON)
		buf.WriteByte(':')
		buf.WriteByte('{')
		for j, period := range p.Periods {
			if j > 0 {
				buf.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(period.Key)
			buf.Write(keyJSON)
			buf.WriteByte(':')
			valJSON, err := period.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(valJSON)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParsePeriodKey splits a "<startDate>.<endDate>" key into its bounds.
// Both dates must parse and start must not follow end.
func ParsePeriodKey(key string) (start, end time.Time, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, eris.Errorf("model: period key %q must be <start>.<end>", key)
	}
	start, err = time.Parse(DateLayout, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "model: period key %q start", key)
	}
	end, err = time.Parse(DateLayout, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "model: period key %q end", key)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, eris.Errorf("model: period key %q starts after it ends", key)
	}
	return start, end, nil
}
