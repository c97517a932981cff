package analyzer

import (
	"sort"
	"strings"

	"github.com/panbanda/reviewer/pkg/models"
)

// SplitLines splits code on "\n" without collapsing anything: a buffer ending
// in a newline yields a trailing empty line, and "" yields one empty line.
func SplitLines(code string) []string {
	return strings.Split(code, "\n")
}

// LineCount returns the number of lines SplitLines would produce.
func LineCount(code string) int {
	return strings.Count(code, "\n") + 1
}

// IsLineComment reports whether line, once trimmed, starts with the comment prefix.
func IsLineComment(line, prefix string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), prefix)
}

// StripComment cuts line at the first comment prefix that is not inside a
// quoted string. Quotes are ", ' and `, with backslash escapes.
func StripComment(line, prefix string) string {
	if prefix == "" || !strings.Contains(line, prefix) {
		return line
	}
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case strings.HasPrefix(line[i:], prefix):
			return line[:i]
		}
	}
	return line
}

// StripLineComments removes every single-line comment from code, whether it
// fills the line or trails code. Line count is preserved so positions stay
// valid.
func StripLineComments(code, prefix string) string {
	lines := SplitLines(code)
	for i, line := range lines {
		lines[i] = StripComment(line, prefix)
	}
	return strings.Join(lines, "\n")
}

// SortByLine orders issues with line numbers ascending, keeping buffer-wide
// issues after them in their original relative order.
func SortByLine(issues []models.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		li, lj := issues[i].Line, issues[j].Line
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		default:
			return *li < *lj
		}
	})
}
