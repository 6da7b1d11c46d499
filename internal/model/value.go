package model

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// ValueKind discriminates the value types a parameter can take.
type ValueKind int

const (
	// ValueNumber is a numeric parameter value (rate, threshold, amount).
	ValueNumber ValueKind = iota
	// ValueBool is a boolean parameter value (eligibility flag, abolition switch).
	ValueBool
)

// Value is a tagged union over parameter value kinds. Reform payloads and
// metadata timelines are loosely typed JSON; decoding into Value pins the
// kind at ingestion instead of trusting it at every use site.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  float64
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{Kind: ValueNumber, Num: f}
}

// Boolean returns a boolean Value.
func Boolean(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

// Truthy reports whether the value is "on": true for booleans, non-zero
// for numbers.
func (v Value) Truthy() bool {
	if v.Kind == ValueBool {
		return v.Bool
	}
	return v.Num != 0
}

// Float returns the value as a float64 for ordering comparisons. Booleans
// map to 0/1.
func (v Value) Float() float64 {
	if v.Kind == ValueBool {
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Num
}

// UnmarshalJSON decodes a JSON boolean or number into the matching kind.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return eris.Wrap(err, "model: decode value")
	}
	switch t := raw.(type) {
	case bool:
		*v = Boolean(t)
	case float64:
		*v = Number(t)
	default:
		return eris.Errorf("model: value must be boolean or number, got %s", string(b))
	}
	return nil
}

// MarshalJSON encodes the value back to its JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueBool {
		return []byte(strconv.FormatBool(v.Bool)), nil
	}
	return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
}
