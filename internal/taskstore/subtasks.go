package taskstore

import (
	"strings"

	"github.com/existflow/bizflow/internal/model"
)

var bulletPrefixes = []string{"- ", "* ", "・", "• "}

// ParseSubtasks turns a newline-delimited block into a checklist, one
// entry per non-blank line. Common bullet prefixes are dropped.
func ParseSubtasks(text string) []model.Subtask {
	out := []model.Subtask{}
	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		for _, p := range bulletPrefixes {
			if strings.HasPrefix(name, p) {
				name = strings.TrimSpace(strings.TrimPrefix(name, p))
				break
			}
		}
		if name == "" || isBullet(name) {
			continue
		}
		out = append(out, model.Subtask{ID: len(out) + 1, Name: name})
	}
	return out
}

// isBullet reports whether a line is a bare bullet marker with no text.
func isBullet(name string) bool {
	for _, p := range bulletPrefixes {
		if name == strings.TrimSpace(p) {
			return true
		}
	}
	return false
}
