package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/assist"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/existflow/bizflow/internal/triage"
	"github.com/spf13/cobra"
)

var replyCmd = &cobra.Command{
	Use:   "reply [message-json|-]",
	Short: "Draft replies to a message",
	Long: `Draft three replies (Acknowledge, Clarify, Accept) in the chosen tone.

An AI service is used when an API key is configured; otherwise the drafts
come from built-in templates. With --followup a follow-up task is created,
due at the given timing; "auto" uses the first suggested reply timing.

Examples:
  bizflow reply '{"sender":"Tanaka (Client Corp)","subject":"Quote","body_preview":"Could you send the quote?"}'
  bizflow reply --tone casual --eml inbox/1234.eml --followup auto
  bizflow reply - --followup "tomorrow" < message.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReply,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [message-json|-]",
	Short: "Summarize a message",
	Long: `Summarize a message: what it says, what is requested, the deadline and
recommended next steps.

Examples:
  bizflow summarize --eml inbox/1234.eml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

var (
	replyTone     string
	replyEML      string
	replyFollowup string
	replyPick     int
	replyJSON     bool

	summarizeEML  string
	summarizeJSON bool
)

func init() {
	replyCmd.Flags().StringVarP(&replyTone, "tone", "t", "formal", "Tone: formal, casual or concise")
	replyCmd.Flags().StringVar(&replyEML, "eml", "", "Read the message from an RFC 5322 mail file")
	replyCmd.Flags().StringVar(&replyFollowup, "followup", "", "Create a follow-up task due at this timing (\"auto\": first suggestion)")
	replyCmd.Flags().IntVar(&replyPick, "pick", 1, "Draft (1-3) recorded on the follow-up task")
	replyCmd.Flags().BoolVar(&replyJSON, "json", false, "Print JSON")

	summarizeCmd.Flags().StringVar(&summarizeEML, "eml", "", "Read the message from an RFC 5322 mail file")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "Print JSON")
}

// newGenerator builds the AI generator from config and the stored key.
func newGenerator() assist.Generator {
	key := assist.APIKey()
	if key == "" {
		logger.Debug("No AI key configured, templates only")
	}
	return assist.NewClaudeGenerator(key, cfg.AI)
}

func runReply(cmd *cobra.Command, args []string) error {
	msg, err := readDraftMessage(args, replyEML, cmd.InOrStdin())
	if err != nil {
		return err
	}
	tone, err := assist.ParseTone(replyTone)
	if err != nil {
		return &taskstore.ValidationError{Field: "tone", Reason: err.Error()}
	}
	if replyPick < 1 || replyPick > 3 {
		return &taskstore.ValidationError{Field: "pick", Reason: "must be 1, 2 or 3"}
	}

	drafts, origin := assist.DraftReplies(cmd.Context(), newGenerator(), msg, tone)

	out := cmd.OutOrStdout()
	if replyJSON {
		if err := json.NewEncoder(out).Encode(map[string]interface{}{"origin": origin, "drafts": drafts}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Reply drafts (%s, %s)\n", tone, origin)
		for i, d := range drafts {
			fmt.Fprintf(out, "\n── %d. %s ──\n%s\n", i+1, d.Version, d.Content)
		}
	}

	if replyFollowup == "" {
		return nil
	}

	timing := replyFollowup
	if timing == "auto" {
		_, suggestions := triage.AdviseTimingFor(msg)
		timing = suggestions[0].Timing
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.CreateTask(cmd.Context(), assist.FollowupInput(msg, drafts[replyPick-1].Content, timing), &msg)
	if err != nil {
		return err
	}
	if !replyJSON {
		fmt.Fprintf(out, "\n✓ Follow-up task #%d: %q (due %s)\n", task.ID, task.Name, task.DueDate)
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	msg, err := readDraftMessage(args, summarizeEML, cmd.InOrStdin())
	if err != nil {
		return err
	}

	s, origin := assist.SummarizeMessage(cmd.Context(), newGenerator(), msg)

	out := cmd.OutOrStdout()
	if summarizeJSON {
		return json.NewEncoder(out).Encode(map[string]interface{}{"origin": origin, "summary": s})
	}

	fmt.Fprintf(out, "Summary (%s)\n  %s\n\n", origin, s.Summary)
	fmt.Fprintf(out, "Requested:\n  - %s\n\n", strings.Join(s.RequestedActions, "\n  - "))
	fmt.Fprintf(out, "Deadline: %s\n\n", s.Deadline)
	fmt.Fprintf(out, "Recommended:\n  - %s\n", strings.Join(s.RecommendedActions, "\n  - "))
	return nil
}
