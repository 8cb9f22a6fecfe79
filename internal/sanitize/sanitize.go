// Package sanitize cleans the free-text list entries of an assessment
// (goals, habits, constraints, priorities) before they are scored, stored
// and echoed into markdown and HTML reports. It strips control characters,
// XML/HTML tags and markdown structure while preserving the words.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxEntryLength is the maximum length in runes of one list entry.
const MaxEntryLength = 160

// MaxEntries is the maximum number of entries kept per list.
const MaxEntries = 20

// Pre-compiled regular expressions for performance.
var (
	// reXMLTag matches XML/HTML tags including those with attributes and self-closing tags.
	// It also matches XML processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reListMarker matches a leading bullet, checkbox, heading or number marker.
	reListMarker = regexp.MustCompile(`^(?:#{1,6}\s+|[-*+•]\s+(?:\[[ xX]\]\s+)?|\d{1,3}[.)]\s+)`)

	// reBackticks matches runs of backticks used in code spans and fences.
	reBackticks = regexp.MustCompile("`+")

	// reSpaces matches runs of whitespace.
	reSpaces = regexp.MustCompile(`\s+`)
)

// Entry sanitizes a single list entry. The pipeline runs in this order:
//  1. Replace control characters (including newlines) with spaces
//  2. Strip XML/HTML tags
//  3. Collapse whitespace and trim
//  4. Strip a leading list marker or markdown heading
//  5. Drop backticks
//  6. Truncate to MaxEntryLength runes
func Entry(input string) string {
	if input == "" {
		return ""
	}

	s := replaceControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	s = reListMarker.ReplaceAllString(s, "")
	s = reBackticks.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > MaxEntryLength {
		runes := []rune(s)
		s = strings.TrimSpace(string(runes[:MaxEntryLength])) + "..."
	}
	return s
}

// SplitList turns a free-text block into clean entries. Lines and
// semicolons always separate entries; commas separate them only when the
// block is a single line. Empty entries and case-insensitive duplicates
// are dropped, and at most MaxEntries are kept.
func SplitList(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")

	var raw []string
	for _, line := range strings.Split(input, "\n") {
		raw = append(raw, strings.Split(line, ";")...)
	}
	if !strings.Contains(strings.TrimSpace(input), "\n") && len(raw) == 1 {
		raw = strings.Split(raw[0], ",")
	}
	return cleanEntries(raw)
}

// Entries sanitizes each entry of an already-split list with the same
// dedup and cap rules as SplitList. Entries are never split further.
func Entries(items []string) []string {
	return cleanEntries(items)
}

func cleanEntries(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		e := Entry(r)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

// replaceControlChars turns ASCII control characters (0x00-0x1F, 0x7F)
// into spaces so words on either side stay apart.
func replaceControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
