package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
)

// bodyPreviewRunes caps the body kept from a mail file
const bodyPreviewRunes = 500

// readMessage loads the message a command works on: a JSON argument, JSON
// on stdin when the argument is "-" or absent, or an RFC 5322 file when
// emlPath is set.
func readMessage(args []string, emlPath string, stdin io.Reader) (model.Message, error) {
	if emlPath != "" {
		f, err := os.Open(emlPath)
		if err != nil {
			return model.Message{}, fmt.Errorf("failed to open mail file: %w", err)
		}
		defer f.Close()
		return parseEML(f)
	}

	var raw []byte
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return model.Message{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = data
	} else {
		raw = []byte(args[0])
	}

	var msg model.Message
	if err := json.Unmarshal(bytes.TrimSpace(raw), &msg); err != nil {
		return model.Message{}, &taskstore.ValidationError{Field: "message", Reason: fmt.Sprintf("not a message object: %v", err)}
	}
	return msg, nil
}

// readDraftMessage is readMessage for the drafting commands, which have
// nothing to work from when sender, subject and body are all empty.
func readDraftMessage(args []string, emlPath string, stdin io.Reader) (model.Message, error) {
	msg, err := readMessage(args, emlPath, stdin)
	if err != nil {
		return msg, err
	}
	if msg.Subject == "" && msg.BodyPreview == "" && msg.Sender == "" {
		return model.Message{}, &taskstore.ValidationError{Field: "message", Reason: "sender, subject and body_preview are all empty"}
	}
	return msg, nil
}

// parseEML turns a mail file into a Message, keeping the first text/plain
// part as the body preview.
func parseEML(r io.Reader) (model.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return model.Message{}, &taskstore.ValidationError{Field: "mail file", Reason: err.Error()}
	}
	if err != nil {
		logger.Warn("Mail header uses an unknown charset", logger.F("error", err))
	}
	defer mr.Close()

	msg := model.Message{Source: model.SourceMail}

	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.Sender = from[0].Name
		if msg.Sender == "" {
			msg.Sender = from[0].Address
		}
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Timestamp = date
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			logger.Warn("Mail body could not be read", logger.F("error", err))
			break
		}
		if err != nil {
			logger.Warn("Mail part uses an unknown charset", logger.F("error", err))
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") && contentType != "" {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		msg.BodyPreview = preview(string(body))
		break
	}

	return msg, nil
}

func preview(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	r := []rune(body)
	if len(r) > bodyPreviewRunes {
		return string(r[:bodyPreviewRunes])
	}
	return body
}
