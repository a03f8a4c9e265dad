package assist

import (
	"regexp"
	"strings"
	"unicode"
)

// headerRe matches "**Key:** value" and "**Key**: value" with an ASCII or
// full-width colon.
var headerRe = regexp.MustCompile(`^\s*\*\*(.+?)(?:[:：]\s*\*\*|\*\*\s*[:：])\s*(.*)$`)

// ParseSections splits generated text into sections keyed by their
// normalized header. A value runs from the header line to the next header.
// Text before the first header is ignored and empty sections are dropped.
func ParseSections(text string) map[string]string {
	sections := make(map[string]string)

	var key string
	var lines []string
	flush := func() {
		if key == "" {
			return
		}
		if v := strings.TrimSpace(strings.Join(lines, "\n")); v != "" {
			sections[key] = v
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			key = normalizeKey(m[1])
			lines = lines[:0]
			if rest := strings.TrimSpace(m[2]); rest != "" {
				lines = append(lines, rest)
			}
			continue
		}
		if key != "" {
			lines = append(lines, line)
		}
	}
	flush()

	return sections
}

// normalizeKey lower-cases a header and strips leading symbols such as
// emoji so "📋 Summary" and "summary" are the same section.
func normalizeKey(k string) string {
	k = strings.TrimLeftFunc(k, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.TrimSpace(k))
}

// lookup returns the first non-empty section among names.
func lookup(sections map[string]string, names ...string) string {
	for _, n := range names {
		if v, ok := sections[normalizeKey(n)]; ok {
			return v
		}
	}
	return ""
}

// listItems splits a section into list entries, dropping bullets and
// numbering.
func listItems(v string) []string {
	var out []string
	for _, line := range strings.Split(v, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•・ ")
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 && isDigits(line[:i]) {
			line = strings.TrimSpace(line[i+1:])
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
