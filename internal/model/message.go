package model

import (
	"strings"
	"time"
)

// Source identifies the channel a message arrived on. It is carried
// through untouched.
type Source string

const (
	SourceMail  Source = "mail"
	SourceChat  Source = "chat"
	SourceTeams Source = "teams"
	SourceSlack Source = "slack"
)

// Message is an inbound message as supplied by a mail or chat connector.
type Message struct {
	// Sender is the display name, possibly with an organization in
	// parentheses, e.g. "Tanaka (Client Corp)".
	Sender      string    `json:"sender" yaml:"sender"`
	Subject     string    `json:"subject" yaml:"subject"`
	BodyPreview string    `json:"body_preview" yaml:"body_preview"`
	Source      Source    `json:"source,omitempty" yaml:"source"`
	Timestamp   time.Time `json:"timestamp,omitempty" yaml:"timestamp"`
}

// SenderName returns the sender without any parenthesised organization.
func (m Message) SenderName() string {
	name := m.Sender
	if i := strings.IndexAny(name, "(（"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
