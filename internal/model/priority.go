package model

import (
	"fmt"
	"strings"
)

// Priority is the coarse urgency label shared by messages and tasks.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every label, most urgent first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank returns 3 for High, 2 for Medium, 1 for Low and 0 for anything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the three labels.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// MaxPriority returns the more urgent of two labels.
func MaxPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParsePriority accepts the label in any case, the short forms h/m/l
// and the Japanese labels 高/中/低.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h", "高":
		return PriorityHigh, nil
	case "medium", "med", "m", "中":
		return PriorityMedium, nil
	case "low", "l", "低":
		return PriorityLow, nil
	}
	return "", fmt.Errorf("unknown priority %q (want High, Medium or Low)", s)
}
