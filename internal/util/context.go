package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetContextLines formats the source lines around an error position with
// a caret under the offending column, for CLI diagnostics.
func GetContextLines(src string, errorLine, errorCol int) string {
	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	start := errorLine - 2
	if start < 1 {
		start = 1
	}

	var out bytes.Buffer
	for i := start; i <= errorLine; i++ {
		out.WriteString(fmt.Sprintf("%4d | %s\n", i, lines[i-1]))
	}
	out.WriteString("     | ")
	for i := 1; i < errorCol; i++ {
		out.WriteByte(' ')
	}
	out.WriteString("^\n")
	return out.String()
}
