package sysagents

import (
	"os"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func fsDispatch() func(object.Message) object.Object {
	return dispatcher("fs", map[string]opFunc{
		"read": func(args []object.Object) object.Object {
			path, err := wantString("read", args, 0)
			if err != nil {
				return err
			}
			data, ioErr := os.ReadFile(path)
			if ioErr != nil {
				return errorf("read %s: %v", path, ioErr)
			}
			return &object.String{Value: string(data)}
		},
		"write": func(args []object.Object) object.Object {
			path, err := wantString("write", args, 0)
			if err != nil {
				return err
			}
			if len(args) < 2 {
				return errorf("write: missing content")
			}
			if ioErr := os.WriteFile(path, []byte(text(args[1])), 0644); ioErr != nil {
				return errorf("write %s: %v", path, ioErr)
			}
			return object.NIL
		},
		"append": func(args []object.Object) object.Object {
			path, err := wantString("append", args, 0)
			if err != nil {
				return err
			}
			if len(args) < 2 {
				return errorf("append: missing content")
			}
			f, ioErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if ioErr != nil {
				return errorf("append %s: %v", path, ioErr)
			}
			defer f.Close()
			if _, ioErr := f.WriteString(text(args[1])); ioErr != nil {
				return errorf("append %s: %v", path, ioErr)
			}
			return object.NIL
		},
		"exists": func(args []object.Object) object.Object {
			path, err := wantString("exists", args, 0)
			if err != nil {
				return err
			}
			_, statErr := os.Stat(path)
			return object.NativeBoolToBooleanObject(statErr == nil)
		},
		"delete": func(args []object.Object) object.Object {
			path, err := wantString("delete", args, 0)
			if err != nil {
				return err
			}
			if ioErr := os.Remove(path); ioErr != nil {
				return errorf("delete %s: %v", path, ioErr)
			}
			return object.NIL
		},
		"list": func(args []object.Object) object.Object {
			path, err := wantString("list", args, 0)
			if err != nil {
				return err
			}
			entries, ioErr := os.ReadDir(path)
			if ioErr != nil {
				return errorf("list %s: %v", path, ioErr)
			}
			names := make([]object.Object, 0, len(entries))
			for _, entry := range entries {
				names = append(names, &object.String{Value: entry.Name()})
			}
			return &object.List{Elements: names}
		},
	})
}
