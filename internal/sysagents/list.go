package sysagents

import (
	"strings"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func listDispatch() func(object.Message) object.Object {
	return dispatcher("list", map[string]opFunc{
		"new": func(args []object.Object) object.Object {
			return &object.List{Elements: append([]object.Object{}, args...)}
		},
		"push": func(args []object.Object) object.Object {
			l, err := wantList("push", args, 0)
			if err != nil {
				return err
			}
			if len(args) < 2 {
				return errorf("push: missing value")
			}
			elements := make([]object.Object, len(l.Elements), len(l.Elements)+1)
			copy(elements, l.Elements)
			return &object.List{Elements: append(elements, args[1])}
		},
		"get": func(args []object.Object) object.Object {
			l, err := wantList("get", args, 0)
			if err != nil {
				return err
			}
			i, err := wantInt("get", args, 1)
			if err != nil {
				return err
			}
			if i < 0 || i >= int64(len(l.Elements)) {
				return errorf("get: index %d out of range for list of %d", i, len(l.Elements))
			}
			return l.Elements[i]
		},
		"size": func(args []object.Object) object.Object {
			l, err := wantList("size", args, 0)
			if err != nil {
				return err
			}
			return &object.Integer{Value: int64(len(l.Elements))}
		},
		"head": func(args []object.Object) object.Object {
			l, err := wantList("head", args, 0)
			if err != nil {
				return err
			}
			if len(l.Elements) == 0 {
				return object.NIL
			}
			return l.Elements[0]
		},
		"tail": func(args []object.Object) object.Object {
			l, err := wantList("tail", args, 0)
			if err != nil {
				return err
			}
			if len(l.Elements) == 0 {
				return &object.List{}
			}
			return &object.List{Elements: append([]object.Object{}, l.Elements[1:]...)}
		},
		"reverse": func(args []object.Object) object.Object {
			l, err := wantList("reverse", args, 0)
			if err != nil {
				return err
			}
			reversed := make([]object.Object, len(l.Elements))
			for i, el := range l.Elements {
				reversed[len(l.Elements)-1-i] = el
			}
			return &object.List{Elements: reversed}
		},
		"contains": func(args []object.Object) object.Object {
			l, err := wantList("contains", args, 0)
			if err != nil {
				return err
			}
			if len(args) < 2 {
				return errorf("contains: missing value")
			}
			for _, el := range l.Elements {
				if object.Equals(el, args[1]) {
					return object.TRUE
				}
			}
			return object.FALSE
		},
		"join": func(args []object.Object) object.Object {
			l, err := wantList("join", args, 0)
			if err != nil {
				return err
			}
			sep, err := wantString("join", args, 1)
			if err != nil {
				return err
			}
			parts := make([]string, len(l.Elements))
			for i, el := range l.Elements {
				parts[i] = text(el)
			}
			return &object.String{Value: strings.Join(parts, sep)}
		},
	})
}
