package triage

import "github.com/existflow/bizflow/internal/model"

// Window is the urgency class of a suggested reply time. Lower values are
// more urgent.
type Window int

const (
	WindowImmediate Window = iota
	WindowMinutes
	WindowToday
	WindowTomorrow
	WindowDays
)

// String returns the class name
func (w Window) String() string {
	switch w {
	case WindowImmediate:
		return "immediate"
	case WindowMinutes:
		return "minutes"
	case WindowToday:
		return "today"
	case WindowTomorrow:
		return "tomorrow"
	case WindowDays:
		return "days"
	default:
		return "unknown"
	}
}

// MarshalText encodes the window by name
func (w Window) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// TimingSuggestion is one recommended reply window with its rationale.
type TimingSuggestion struct {
	Timing string `json:"timing"`
	Reason string `json:"reason"`
	Window Window `json:"window"`
}

var timingTable = map[model.Priority][3]TimingSuggestion{
	model.PriorityHigh: {
		{Timing: "immediately", Reason: "urgent request, reply right away", Window: WindowImmediate},
		{Timing: "within 30 minutes", Reason: "confirm the details, then reply", Window: WindowMinutes},
		{Timing: "within 1 hour", Reason: "consult the people involved, then reply", Window: WindowMinutes},
	},
	model.PriorityMedium: {
		{Timing: "immediately (brief ack)", Reason: "send a short acknowledgement now", Window: WindowImmediate},
		{Timing: "today", Reason: "prepare the details, then reply", Window: WindowToday},
		{Timing: "tomorrow morning", Reason: "reply carefully first thing next business day", Window: WindowTomorrow},
	},
	model.PriorityLow: {
		{Timing: "today", Reason: "reply before the end of the day", Window: WindowToday},
		{Timing: "tomorrow", Reason: "reply on the next business day", Window: WindowTomorrow},
		{Timing: "within 3 days", Reason: "a reply this week is enough", Window: WindowDays},
	},
}

// AdviseTiming returns three reply windows for p, most urgent first.
// Unknown labels are treated as Low.
func AdviseTiming(p model.Priority) []TimingSuggestion {
	row, ok := timingTable[p]
	if !ok {
		row = timingTable[model.PriorityLow]
	}
	out := make([]TimingSuggestion, len(row))
	copy(out, row[:])
	return out
}

// AdviseTimingFor classifies m and returns the windows for its label.
func AdviseTimingFor(m model.Message) (model.Priority, []TimingSuggestion) {
	p := Classify(m)
	return p, AdviseTiming(p)
}
