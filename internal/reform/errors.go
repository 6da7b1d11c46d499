package reform

import "fmt"

// UnknownParameterError reports a reform override that references a
// parameter absent from the metadata snapshot. This is a data-integrity
// failure in the upstream payload, not a user error.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("reform: unknown parameter %q", e.Name)
}

// MalformedTimePeriodError reports a period key that does not parse into
// a valid start/end date pair.
type MalformedTimePeriodError struct {
	Parameter string
	Key       string
	Err       error
}

func (e *MalformedTimePeriodError) Error() string {
	return fmt.Sprintf("reform: parameter %q has malformed period key %q: %v", e.Parameter, e.Key, e.Err)
}

func (e *MalformedTimePeriodError) Unwrap() error {
	return e.Err
}
