package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
)

// Tone is the register of a reply draft.
type Tone string

const (
	ToneFormal  Tone = "formal"
	ToneCasual  Tone = "casual"
	ToneConcise Tone = "concise"
)

// Tones lists every tone.
var Tones = []Tone{ToneFormal, ToneCasual, ToneConcise}

// ParseTone accepts a tone name in any case. Empty means formal.
func ParseTone(s string) (Tone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "formal", "polite":
		return ToneFormal, nil
	case "casual", "friendly":
		return ToneCasual, nil
	case "concise", "brief", "short":
		return ToneConcise, nil
	}
	return "", fmt.Errorf("unknown tone %q (want formal, casual or concise)", s)
}

func (t Tone) instruction() string {
	switch t {
	case ToneCasual:
		return "friendly and approachable while staying professional"
	case ToneConcise:
		return "brief and businesslike, only the essentials"
	default:
		return "polite and formal business language"
	}
}

// ReplyDraft is one candidate reply.
type ReplyDraft struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

// The three reply variants, in output order.
const (
	VersionAcknowledge = "Acknowledge"
	VersionClarify     = "Clarify"
	VersionAccept      = "Accept"
)

var replyVersions = []string{VersionAcknowledge, VersionClarify, VersionAccept}

var replyTemplates = map[Tone]map[string]string{
	ToneFormal: {
		VersionAcknowledge: "Dear %s,\n\nThank you for your message. I will review the details and get back to you shortly.\n\nBest regards,",
		VersionClarify:     "Dear %s,\n\nThank you for reaching out. I have a few questions about your request. Could you let me know when you have a moment?\n\nBest regards,",
		VersionAccept:      "Dear %s,\n\nUnderstood. I will take care of this and report back on progress.\n\nBest regards,",
	},
	ToneCasual: {
		VersionAcknowledge: "Hi %s,\n\nThanks for the message! I'll take a look and get back to you.\n\nCheers,",
		VersionClarify:     "Hi %s,\n\nThanks! I have a couple of questions, could you fill me in when you get a chance?\n\nCheers,",
		VersionAccept:      "Hi %s,\n\nGot it, I'll go ahead with this.\n\nThanks,",
	},
	ToneConcise: {
		VersionAcknowledge: "%s,\n\nReceived. I will reply with details later.",
		VersionClarify:     "%s,\n\nPlease let me confirm a few details. I will follow up.",
		VersionAccept:      "%s,\n\nAcknowledged. I will handle it.",
	},
}

// TemplateReplies returns the three fixed drafts for tone.
func TemplateReplies(msg model.Message, tone Tone) []ReplyDraft {
	tmpl, ok := replyTemplates[tone]
	if !ok {
		tmpl = replyTemplates[ToneFormal]
	}
	name := senderOrPlaceholder(msg)

	drafts := make([]ReplyDraft, 0, len(replyVersions))
	for _, v := range replyVersions {
		drafts = append(drafts, ReplyDraft{Version: v, Content: fmt.Sprintf(tmpl[v], name)})
	}
	return drafts
}

func replyPrompt(msg model.Message, tone Tone) string {
	var sb strings.Builder
	sb.WriteString("You are a business assistant. Write three alternative replies to the message below.\n\n")
	writeMessage(&sb, msg)
	fmt.Fprintf(&sb, "\nTone: %s. Keep each reply under 120 words.\n", tone.instruction())
	sb.WriteString("Answer using exactly these sections, each header on its own line:\n")
	fmt.Fprintf(&sb, "**%s:** a reply that acknowledges and promises a follow-up\n", VersionAcknowledge)
	fmt.Fprintf(&sb, "**%s:** a reply that asks for the missing details\n", VersionClarify)
	fmt.Fprintf(&sb, "**%s:** a reply that accepts the request\n", VersionAccept)
	return sb.String()
}

// DraftReplies returns exactly three drafts in the order Acknowledge,
// Clarify, Accept. Variants missing from the generated text are filled
// from the template; the origin is AI when at least one variant was
// generated.
func DraftReplies(ctx context.Context, gen Generator, msg model.Message, tone Tone) ([]ReplyDraft, Origin) {
	drafts := TemplateReplies(msg, tone)

	text, err := generate(ctx, gen, replyPrompt(msg, tone))
	if err != nil {
		logger.Warn("Reply drafts fall back to template", logger.F("error", err))
		return drafts, OriginTemplate
	}

	sections := ParseSections(text)
	origin := OriginTemplate
	for i := range drafts {
		if v := lookup(sections, drafts[i].Version); v != "" {
			drafts[i].Content = v
			origin = OriginAI
		}
	}
	if origin == OriginTemplate {
		logger.Warn("Generated replies had no usable sections, using template")
	}
	return drafts, origin
}
