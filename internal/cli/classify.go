package cli

import (
	"encoding/json"
	"fmt"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/existflow/bizflow/internal/triage"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message-json|-]",
	Short: "Classify the urgency of a message",
	Long: `Classify a message as High, Medium or Low priority.

The message is a JSON object with sender, subject and body_preview, given
as an argument, on stdin ("-"), or read from a mail file with --eml.

Examples:
  bizflow classify '{"sender":"Client Corp","subject":"Urgent: contract review","body_preview":"Need this today"}'
  cat message.json | bizflow classify -
  bizflow classify --eml inbox/1234.eml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

var adviseTimingCmd = &cobra.Command{
	Use:   "advise-timing [priority]",
	Short: "Suggest when to reply",
	Long: `Print three reply timing suggestions, most urgent first.

Examples:
  bizflow advise-timing High
  bizflow advise-timing --message '{"subject":"Weekly report","body_preview":"FYI"}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdviseTiming,
}

var (
	classifyEML  string
	classifyJSON bool

	adviseMessage string
	adviseJSON    bool
)

func init() {
	classifyCmd.Flags().StringVar(&classifyEML, "eml", "", "Read the message from an RFC 5322 mail file")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print JSON including the score")

	adviseTimingCmd.Flags().StringVar(&adviseMessage, "message", "", "Classify this message JSON first")
	adviseTimingCmd.Flags().BoolVar(&adviseJSON, "json", false, "Print JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(args, classifyEML, cmd.InOrStdin())
	if err != nil {
		return err
	}

	priority := triage.Classify(msg)
	logger.Debug("Classified message", logger.F("subject", msg.Subject), logger.F("priority", priority))

	out := cmd.OutOrStdout()
	if classifyJSON {
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"priority": priority,
			"score":    triage.Score(msg),
			"sender":   msg.Sender,
			"subject":  msg.Subject,
		})
	}
	fmt.Fprintln(out, priority)
	return nil
}

func runAdviseTiming(cmd *cobra.Command, args []string) error {
	var priority model.Priority
	var suggestions []triage.TimingSuggestion

	switch {
	case adviseMessage != "":
		msg, err := readMessage([]string{adviseMessage}, "", cmd.InOrStdin())
		if err != nil {
			return err
		}
		priority, suggestions = triage.AdviseTimingFor(msg)
	case len(args) == 1:
		p, err := model.ParsePriority(args[0])
		if err != nil {
			return &taskstore.ValidationError{Field: "priority", Reason: err.Error()}
		}
		priority, suggestions = p, triage.AdviseTiming(p)
	default:
		return &taskstore.ValidationError{Field: "priority", Reason: "give a priority or --message"}
	}

	out := cmd.OutOrStdout()
	if adviseJSON {
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"priority":    priority,
			"suggestions": suggestions,
		})
	}

	fmt.Fprintf(out, "Priority: %s\n", priority)
	for i, s := range suggestions {
		fmt.Fprintf(out, "  %d. %-24s %s\n", i+1, s.Timing, s.Reason)
	}
	return nil
}
