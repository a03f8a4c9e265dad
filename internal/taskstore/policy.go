package taskstore

import (
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/model"
)

// Policy selects how status moves are checked.
type Policy string

const (
	// PolicyStrict only allows moves to a neighbouring column.
	PolicyStrict Policy = "strict"
	// PolicyFree allows any column to be picked directly.
	PolicyFree Policy = "free"
)

// ParsePolicy maps a config value to a Policy. Empty means strict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict", "adjacent":
		return PolicyStrict, nil
	case "free", "any":
		return PolicyFree, nil
	}
	return "", fmt.Errorf("unknown status policy %q (want strict or free)", s)
}

var adjacency = map[model.Status][]model.Status{
	model.StatusToDo:       {model.StatusInProgress},
	model.StatusInProgress: {model.StatusToDo, model.StatusInReview},
	model.StatusInReview:   {model.StatusInProgress, model.StatusDone},
	model.StatusDone:       {model.StatusInReview},
}

// Allowed returns the statuses a task in from may move to under p.
func (p Policy) Allowed(from model.Status) []model.Status {
	if p == PolicyFree {
		out := make([]model.Status, 0, len(model.Statuses)-1)
		for _, s := range model.Statuses {
			if s != from {
				out = append(out, s)
			}
		}
		return out
	}
	return append([]model.Status(nil), adjacency[from]...)
}

// CanMove reports whether from -> to is permitted. Staying put is always
// permitted.
func (p Policy) CanMove(from, to model.Status) bool {
	if from == to {
		return true
	}
	for _, s := range p.Allowed(from) {
		if s == to {
			return true
		}
	}
	return false
}
