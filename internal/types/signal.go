package types

import "time"

type SignalType string

const (
	// SignalTypeEntryLong tells the engine to open a long position
	SignalTypeEntryLong SignalType = "entry_long"
	// SignalTypeExitLong tells the engine to close the open long position
	SignalTypeExitLong SignalType = "exit_long"
	// SignalTypeNoAction tells the engine to do nothing on this bar
	SignalTypeNoAction SignalType = "no_action"
)

// Signal is a strategy's decision for a single bar.
type Signal struct {
	// Time is the bar timestamp the signal applies to
	Time time.Time
	// Type is the action the engine should take
	Type SignalType
	// Symbol is the instrument the signal refers to
	Symbol string
	// Reason is a human-readable explanation of the decision
	Reason string
	// Indicator is the indicator family that produced the signal
	Indicator IndicatorType
}
