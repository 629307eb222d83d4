package eiffel

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCodeFrame renders the source line at pos with a caret under the column.
// The previous line is included when it is not blank.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	text := strings.TrimRight(lines[pos.Line-1], "\r")
	column := min(max(pos.Column, 1), len([]rune(text))+1)

	label := strconv.Itoa(pos.Line)
	gutter := strings.Repeat(" ", len(label))

	var b strings.Builder
	fmt.Fprintf(&b, "  --> line %d, column %d\n", pos.Line, column)
	if pos.Line > 1 {
		if prev := strings.TrimRight(lines[pos.Line-2], "\r"); strings.TrimSpace(prev) != "" {
			prevLabel := strconv.Itoa(pos.Line - 1)
			fmt.Fprintf(&b, " %*s | %s\n", len(label), prevLabel, prev)
		}
	}
	fmt.Fprintf(&b, " %s | %s\n", label, text)
	fmt.Fprintf(&b, " %s | %s^", gutter, strings.Repeat(" ", column-1))
	return b.String()
}
