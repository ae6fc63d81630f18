package sysagents

import (
	"time"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func timeDispatch() func(object.Message) object.Object {
	return dispatcher("time", map[string]opFunc{
		"now": func(args []object.Object) object.Object {
			return &object.Integer{Value: time.Now().UnixMilli()}
		},
		"sleep": func(args []object.Object) object.Object {
			ms, err := wantInt("sleep", args, 0)
			if err != nil {
				return err
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return object.NIL
		},
		"format": func(args []object.Object) object.Object {
			ms, err := wantInt("format", args, 0)
			if err != nil {
				return err
			}
			layout := time.RFC3339
			if len(args) > 1 {
				custom, err := wantString("format", args, 1)
				if err != nil {
					return err
				}
				layout = custom
			}
			return &object.String{Value: time.UnixMilli(ms).UTC().Format(layout)}
		},
	})
}
