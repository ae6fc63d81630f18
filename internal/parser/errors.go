package parser

import (
	"fmt"
	"strings"
)

// Error is a structured parse error: byte offset plus derived line/column
// and an expected-vs-found description. Parsing halts at the first one.
type Error struct {
	Position int
	Line     int
	Column   int
	Expected string
	Found    string
	Msg      string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("[%3d:%2d] %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("[%3d:%2d] expected %s, found %s", e.Line, e.Column, e.Expected, e.Found)
}

// GetLineAndColumn converts a byte offset in src to a 1-based line and column.
func GetLineAndColumn(src string, pos int) (int, int) {
	if pos > len(src) {
		pos = len(src)
	}
	line := 1 + strings.Count(src[:pos], "\n")
	lastNewline := strings.LastIndex(src[:pos], "\n")
	column := pos - lastNewline
	return line, column
}
