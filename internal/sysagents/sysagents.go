// Package sysagents provides the built-in agents every program can send
// to: io, fs, number, json, dict, list, time and db. Each one is an
// intrinsic instance whose dispatch is native Go rather than pattern
// handlers.
package sysagents

import (
	"fmt"
	"os"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/runtime"
)

// opFunc handles one selector; args exclude the selector word.
type opFunc func(args []object.Object) object.Object

// dispatcher builds a native dispatch from a selector table. Every
// system agent understands terminate.
func dispatcher(name string, ops map[string]opFunc) runtime.NativeDispatch {
	return func(msg object.Message) object.Object {
		sel := msg.Selector()
		if sel == "terminate" {
			return runtime.Terminated()
		}
		op, ok := ops[sel]
		if !ok {
			return errorf("%s does not understand %s", name, msg.String())
		}
		return op(msg.Terms[1:])
	}
}

// Install spawns the system agents and binds them in the base
// environment.
func Install(sys *runtime.System) {
	sys.InstallIntrinsic("io", runtime.NewIntrinsic(sys, "io", ioDispatch(os.Stdout)))
	sys.InstallIntrinsic("fs", runtime.NewIntrinsic(sys, "fs", fsDispatch()))
	sys.InstallIntrinsic("number", runtime.NewIntrinsic(sys, "number", numberDispatch()))
	sys.InstallIntrinsic("json", runtime.NewIntrinsic(sys, "json", jsonDispatch()))
	sys.InstallIntrinsic("dict", runtime.NewIntrinsic(sys, "dict", dictDispatch()))
	sys.InstallIntrinsic("list", runtime.NewIntrinsic(sys, "list", listDispatch()))
	sys.InstallIntrinsic("time", runtime.NewIntrinsic(sys, "time", timeDispatch()))
	sys.InstallIntrinsic("db", runtime.NewIntrinsic(sys, "db", dbDispatch()))
}

func errorf(format string, args ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, args...)}
}

func wantArgs(op string, args []object.Object, n int) *object.Error {
	if len(args) != n {
		return errorf("%s expects %d arguments, got %d", op, n, len(args))
	}
	return nil
}

func wantString(op string, args []object.Object, i int) (string, *object.Error) {
	if i >= len(args) {
		return "", errorf("%s: missing argument %d", op, i+1)
	}
	s, ok := args[i].(*object.String)
	if !ok {
		return "", errorf("%s: argument %d must be a string, got %s", op, i+1, args[i].Type())
	}
	return s.Value, nil
}

func wantInt(op string, args []object.Object, i int) (int64, *object.Error) {
	if i >= len(args) {
		return 0, errorf("%s: missing argument %d", op, i+1)
	}
	n, ok := args[i].(*object.Integer)
	if !ok {
		return 0, errorf("%s: argument %d must be an integer, got %s", op, i+1, args[i].Type())
	}
	return n.Value, nil
}

func wantList(op string, args []object.Object, i int) (*object.List, *object.Error) {
	if i >= len(args) {
		return nil, errorf("%s: missing argument %d", op, i+1)
	}
	l, ok := args[i].(*object.List)
	if !ok {
		return nil, errorf("%s: argument %d must be a list, got %s", op, i+1, args[i].Type())
	}
	return l, nil
}

func wantMap(op string, args []object.Object, i int) (*object.Map, *object.Error) {
	if i >= len(args) {
		return nil, errorf("%s: missing argument %d", op, i+1)
	}
	m, ok := args[i].(*object.Map)
	if !ok {
		return nil, errorf("%s: argument %d must be a map, got %s", op, i+1, args[i].Type())
	}
	return m, nil
}

func wantKey(op string, args []object.Object, i int) (object.Hashable, *object.Error) {
	if i >= len(args) {
		return nil, errorf("%s: missing argument %d", op, i+1)
	}
	k, ok := args[i].(object.Hashable)
	if !ok {
		return nil, errorf("%s: argument %d is unusable as a key, got %s", op, i+1, args[i].Type())
	}
	return k, nil
}

// text renders an argument for printing: strings and embedded text bare,
// everything else via Inspect.
func text(arg object.Object) string {
	switch arg := arg.(type) {
	case *object.String:
		return arg.Value
	case *object.Embedded:
		return arg.Text
	}
	return arg.Inspect()
}
