package trace

import (
	"encoding/json"
	"fmt"
	"os"
)

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all assignment decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects assignment records during a simulation run.
type SimulationTrace struct {
	Level       TraceLevel
	Assignments []AssignmentRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:       level,
		Assignments: make([]AssignmentRecord, 0),
	}
}

// Enabled reports whether assignment decisions should be recorded.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelDecisions
}

// RecordAssignment appends an assignment decision record.
func (st *SimulationTrace) RecordAssignment(record AssignmentRecord) {
	st.Assignments = append(st.Assignments, record)
}

// WriteJSONL writes one JSON object per assignment record to path.
func (st *SimulationTrace) WriteJSONL(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range st.Assignments {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode trace record: %w", err)
		}
	}
	return nil
}
