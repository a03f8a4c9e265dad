// Package triage decides how urgently an inbound message needs a reply.
// Everything here is a pure function of its input.
package triage

import (
	"strings"

	"github.com/existflow/bizflow/internal/model"
)

// urgencyKeywords are matched case-sensitively against subject and body.
var urgencyKeywords = []string{
	"緊急", "至急", "今日中", "ASAP", "急ぎ", "重要", "締切",
	"urgent", "Urgent", "URGENT", "deadline", "Deadline",
}

// senderMarkers are matched case-insensitively against the sender.
var senderMarkers = []string{
	"クライアント", "顧客", "CEO", "重要", "client", "customer",
}

// sameDayMarkers are matched against the lower-cased body preview.
var sameDayMarkers = []string{"today", "今日"}

var scoreLabels = map[int]model.Priority{
	1: model.PriorityLow,
	2: model.PriorityMedium,
	3: model.PriorityHigh,
}

// Classify scores m and returns its priority label. Empty or unknown
// fields fail every check and leave the message at Low.
func Classify(m model.Message) model.Priority {
	return scoreLabels[Score(m)]
}

// Score returns the raw 1..3 urgency score behind Classify.
func Score(m model.Message) int {
	score := 1

	for _, kw := range urgencyKeywords {
		if strings.Contains(m.Subject, kw) || strings.Contains(m.BodyPreview, kw) {
			score = max(score, 3)
			break
		}
	}

	sender := strings.ToLower(m.Sender)
	for _, marker := range senderMarkers {
		if strings.Contains(sender, strings.ToLower(marker)) {
			score = max(score, 2)
			break
		}
	}

	body := strings.ToLower(m.BodyPreview)
	for _, marker := range sameDayMarkers {
		if strings.Contains(body, marker) {
			score = max(score, 3)
			break
		}
	}

	return score
}
