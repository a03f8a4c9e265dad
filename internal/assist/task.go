package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/existflow/bizflow/internal/triage"
)

// TaskDraft is a task proposal parsed from generated text or built from
// the template. Fields left empty fall back to task defaults.
type TaskDraft struct {
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Priority           model.Priority `json:"priority,omitempty"`
	Project            string         `json:"project,omitempty"`
	DueDate            string         `json:"due_date,omitempty"`
	EstimatedTime      string         `json:"estimated_time,omitempty"`
	Subtasks           []string       `json:"subtasks,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	CompletionCriteria string         `json:"completion_criteria,omitempty"`
}

// ToInput maps the draft onto a store payload.
func (d TaskDraft) ToInput() taskstore.TaskInput {
	return taskstore.TaskInput{
		Name:               d.Name,
		Description:        d.Description,
		Priority:           d.Priority,
		Project:            d.Project,
		DueDate:            d.DueDate,
		EstimatedTime:      d.EstimatedTime,
		Subtasks:           strings.Join(d.Subtasks, "\n"),
		Tags:               d.Tags,
		CompletionCriteria: d.CompletionCriteria,
	}
}

// Section names accepted in generated task text, English first.
var (
	keysName        = []string{"Task Name", "Name", "Title", "タスク名"}
	keysDescription = []string{"Description", "Memo", "説明", "メモ"}
	keysPriority    = []string{"Priority", "優先度"}
	keysProject     = []string{"Project", "プロジェクト", "担当事業"}
	keysDue         = []string{"Due Date", "Due", "Deadline", "期限"}
	keysEstimate    = []string{"Estimated Time", "Estimate", "見積時間", "予想時間"}
	keysSubtasks    = []string{"Subtasks", "Steps", "サブタスク"}
	keysTags        = []string{"Tags", "タグ"}
	keysCriteria    = []string{"Completion Criteria", "Done When", "完了条件"}
)

var defaultSubtasks = []string{
	"Read the message and confirm the request",
	"Prepare the response or deliverable",
	"Reply and confirm completion with the sender",
}

// TemplateTask is the deterministic task draft for msg.
func TemplateTask(msg model.Message) TaskDraft {
	source := string(msg.Source)
	if source == "" {
		source = "message"
	}
	subtasks := make([]string, len(defaultSubtasks))
	copy(subtasks, defaultSubtasks)

	return TaskDraft{
		Name:        "Respond to: " + subjectOrPlaceholder(msg),
		Description: fmt.Sprintf("Handle the %s from %s.", source, senderOrPlaceholder(msg)),
		Priority:    triage.Classify(msg),
		DueDate:     "by end of next week",
		Subtasks:    subtasks,
	}
}

// draftFromSections builds a draft from parsed sections. ok is false when
// no task name could be found.
func draftFromSections(sections map[string]string) (d TaskDraft, ok bool) {
	d.Name = firstLine(lookup(sections, keysName...))
	if d.Name == "" {
		return d, false
	}
	d.Description = lookup(sections, keysDescription...)
	if p, err := model.ParsePriority(firstLine(lookup(sections, keysPriority...))); err == nil {
		d.Priority = p
	}
	d.Project = firstLine(lookup(sections, keysProject...))
	d.DueDate = firstLine(lookup(sections, keysDue...))
	d.EstimatedTime = firstLine(lookup(sections, keysEstimate...))
	d.Subtasks = listItems(lookup(sections, keysSubtasks...))
	for _, tag := range strings.FieldsFunc(lookup(sections, keysTags...), func(r rune) bool {
		return r == ',' || r == '、' || r == '\n'
	}) {
		if tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")); tag != "" {
			d.Tags = append(d.Tags, tag)
		}
	}
	d.CompletionCriteria = lookup(sections, keysCriteria...)
	return d, true
}

func taskPrompt(msg model.Message) string {
	var sb strings.Builder
	sb.WriteString("You are a business assistant. Turn the message below into one actionable task.\n\n")
	writeMessage(&sb, msg)
	sb.WriteString("\nAnswer using exactly these sections, each header on its own line:\n")
	sb.WriteString("**Task Name:** short imperative title\n")
	sb.WriteString("**Description:** one or two sentences\n")
	sb.WriteString("**Priority:** High, Medium or Low\n")
	sb.WriteString("**Due Date:** when it must be done\n")
	sb.WriteString("**Estimated Time:** e.g. 2 hours\n")
	sb.WriteString("**Subtasks:** one per line\n")
	sb.WriteString("**Tags:** comma separated\n")
	sb.WriteString("**Completion Criteria:** how we know it is done\n")
	return sb.String()
}

// DraftTask proposes a task for msg. Generated fields win; anything the
// generator leaves out comes from the template, and a failed or unusable
// generation yields the template as a whole.
func DraftTask(ctx context.Context, gen Generator, msg model.Message) (TaskDraft, Origin) {
	tmpl := TemplateTask(msg)

	text, err := generate(ctx, gen, taskPrompt(msg))
	if err != nil {
		logger.Warn("Task draft falls back to template", logger.F("error", err))
		return tmpl, OriginTemplate
	}

	d, ok := draftFromSections(ParseSections(text))
	if !ok {
		logger.Warn("Generated task has no name, using template")
		return tmpl, OriginTemplate
	}
	if d.Description == "" {
		d.Description = tmpl.Description
	}
	if !d.Priority.Valid() {
		d.Priority = tmpl.Priority
	}
	if d.DueDate == "" {
		d.DueDate = tmpl.DueDate
	}
	if len(d.Subtasks) == 0 {
		d.Subtasks = tmpl.Subtasks
	}
	return d, OriginAI
}

// FollowupInput is the payload of a follow-up task created after replying
// to msg, due at timing.
func FollowupInput(msg model.Message, reply, timing string) taskstore.TaskInput {
	desc := fmt.Sprintf("Follow up on %q.", subjectOrPlaceholder(msg))
	if reply = strings.TrimSpace(reply); reply != "" {
		desc += "\n\nReply sent:\n" + reply
	}
	return taskstore.TaskInput{
		Name:        fmt.Sprintf("Follow up with %s", senderOrPlaceholder(msg)),
		Description: desc,
		Priority:    triage.Classify(msg),
		DueDate:     timing,
		Tags:        []string{"follow-up"},
	}
}

func writeMessage(sb *strings.Builder, msg model.Message) {
	fmt.Fprintf(sb, "Sender: %s\n", senderOrPlaceholder(msg))
	fmt.Fprintf(sb, "Subject: %s\n", subjectOrPlaceholder(msg))
	fmt.Fprintf(sb, "Body: %s\n", msg.BodyPreview)
	if msg.Source != "" {
		fmt.Fprintf(sb, "Source: %s\n", msg.Source)
	}
}

func subjectOrPlaceholder(msg model.Message) string {
	if s := strings.TrimSpace(msg.Subject); s != "" {
		return s
	}
	return "(no subject)"
}

func senderOrPlaceholder(msg model.Message) string {
	if s := msg.SenderName(); s != "" {
		return s
	}
	return "unknown sender"
}

func firstLine(v string) string {
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
