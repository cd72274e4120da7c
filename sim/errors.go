package sim

import "fmt"

// ConfigurationError reports an invalid configuration surfaced at
// construction or policy-setup time. There is no silent fallback: an
// unrecognized selection rule or an inconsistent geometry fails loudly.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidActionError reports a Step action referencing a non-idle picker or
// a pick point that is not awaiting a picker. The caller must re-query the
// observation for current candidates.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return "invalid action: " + e.Reason
}

func invalidActionf(format string, args ...any) error {
	return &InvalidActionError{Reason: fmt.Sprintf(format, args...)}
}

// SimulationInvariantError reports a scheduling logic defect: entities
// remain pending but no strictly-future timer exists. Fatal, never retried.
type SimulationInvariantError struct {
	Clock  float64
	Reason string
}

func (e *SimulationInvariantError) Error() string {
	return fmt.Sprintf("simulation invariant violated at t=%.3f: %s", e.Clock, e.Reason)
}
