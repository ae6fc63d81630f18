package sysagents

import (
	"io"
	"strings"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func ioDispatch(out io.Writer) func(object.Message) object.Object {
	render := func(args []object.Object) string {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = text(arg)
		}
		return strings.Join(parts, " ")
	}

	return dispatcher("io", map[string]opFunc{
		"println": func(args []object.Object) object.Object {
			if _, err := io.WriteString(out, render(args)+"\n"); err != nil {
				return errorf("println: %v", err)
			}
			return object.NIL
		},
		"print": func(args []object.Object) object.Object {
			if _, err := io.WriteString(out, render(args)); err != nil {
				return errorf("print: %v", err)
			}
			return object.NIL
		},
	})
}
