package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/triage"
)

// Summary is a digest of a message for the inbox view.
type Summary struct {
	Summary            string   `json:"summary"`
	RequestedActions   []string `json:"requested_actions"`
	Deadline           string   `json:"deadline"`
	RecommendedActions []string `json:"recommended_actions"`
}

const previewRunes = 120

// TemplateSummary builds the deterministic digest of msg. The deadline is
// the first suggested reply timing for the message's priority.
func TemplateSummary(msg model.Message) Summary {
	_, timings := triage.AdviseTimingFor(msg)

	preview := []rune(strings.TrimSpace(msg.BodyPreview))
	body := string(preview)
	if len(preview) > previewRunes {
		body = string(preview[:previewRunes]) + "…"
	}

	summary := fmt.Sprintf("%s wrote about %q.", senderOrPlaceholder(msg), subjectOrPlaceholder(msg))
	if body != "" {
		summary += " " + body
	}

	return Summary{
		Summary:          summary,
		RequestedActions: []string{"Review the message and respond to the request"},
		Deadline:         timings[0].Timing,
		RecommendedActions: []string{
			"Reply " + timings[0].Timing,
			"Create a task if the request needs follow-up work",
			"Confirm the deadline with " + senderOrPlaceholder(msg),
		},
	}
}

func summaryPrompt(msg model.Message) string {
	var sb strings.Builder
	sb.WriteString("You are a business assistant. Summarize the message below.\n\n")
	writeMessage(&sb, msg)
	sb.WriteString("\nAnswer using exactly these sections, each header on its own line:\n")
	sb.WriteString("**Summary:** two sentences at most\n")
	sb.WriteString("**Requested Actions:** one per line\n")
	sb.WriteString("**Deadline:** when a response is due, or none\n")
	sb.WriteString("**Recommended Actions:** one per line\n")
	return sb.String()
}

// SummarizeMessage digests msg, falling back per field to the template.
func SummarizeMessage(ctx context.Context, gen Generator, msg model.Message) (Summary, Origin) {
	tmpl := TemplateSummary(msg)

	text, err := generate(ctx, gen, summaryPrompt(msg))
	if err != nil {
		logger.Warn("Summary falls back to template", logger.F("error", err))
		return tmpl, OriginTemplate
	}

	sections := ParseSections(text)
	s := Summary{
		Summary:            lookup(sections, "Summary", "メッセージ要約", "要約"),
		RequestedActions:   listItems(lookup(sections, "Requested Actions", "求められていること")),
		Deadline:           firstLine(lookup(sections, "Deadline", "対応期限")),
		RecommendedActions: listItems(lookup(sections, "Recommended Actions", "推奨アクション")),
	}
	if s.Summary == "" {
		logger.Warn("Generated summary is empty, using template")
		return tmpl, OriginTemplate
	}
	if len(s.RequestedActions) == 0 {
		s.RequestedActions = tmpl.RequestedActions
	}
	if s.Deadline == "" {
		s.Deadline = tmpl.Deadline
	}
	if len(s.RecommendedActions) == 0 {
		s.RecommendedActions = tmpl.RecommendedActions
	}
	return s, OriginAI
}
