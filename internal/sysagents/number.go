package sysagents

import (
	"math"
	"strconv"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func numberDispatch() func(object.Message) object.Object {
	toF := func(op string, args []object.Object, i int) (float64, *object.Error) {
		if i >= len(args) {
			return 0, errorf("%s: missing argument %d", op, i+1)
		}
		switch n := args[i].(type) {
		case *object.Integer:
			return float64(n.Value), nil
		case *object.Float:
			return n.Value, nil
		}
		return 0, errorf("%s: argument %d must be a number, got %s", op, i+1, args[i].Type())
	}

	return dispatcher("number", map[string]opFunc{
		"parse": func(args []object.Object) object.Object {
			s, err := wantString("parse", args, 0)
			if err != nil {
				return err
			}
			if i, convErr := strconv.ParseInt(s, 10, 64); convErr == nil {
				return &object.Integer{Value: i}
			}
			if f, convErr := strconv.ParseFloat(s, 64); convErr == nil {
				return &object.Float{Value: f}
			}
			return errorf("parse: %q is not a number", s)
		},
		"floor": func(args []object.Object) object.Object {
			f, err := toF("floor", args, 0)
			if err != nil {
				return err
			}
			return &object.Integer{Value: int64(math.Floor(f))}
		},
		"ceil": func(args []object.Object) object.Object {
			f, err := toF("ceil", args, 0)
			if err != nil {
				return err
			}
			return &object.Integer{Value: int64(math.Ceil(f))}
		},
		"round": func(args []object.Object) object.Object {
			f, err := toF("round", args, 0)
			if err != nil {
				return err
			}
			return &object.Integer{Value: int64(math.Round(f))}
		},
		"abs": func(args []object.Object) object.Object {
			if len(args) == 1 {
				if n, ok := args[0].(*object.Integer); ok {
					if n.Value < 0 {
						return &object.Integer{Value: -n.Value}
					}
					return n
				}
			}
			f, err := toF("abs", args, 0)
			if err != nil {
				return err
			}
			return &object.Float{Value: math.Abs(f)}
		},
		"max": func(args []object.Object) object.Object {
			a, err := toF("max", args, 0)
			if err != nil {
				return err
			}
			b, err := toF("max", args, 1)
			if err != nil {
				return err
			}
			return pickNumber(args, a >= b)
		},
		"min": func(args []object.Object) object.Object {
			a, err := toF("min", args, 0)
			if err != nil {
				return err
			}
			b, err := toF("min", args, 1)
			if err != nil {
				return err
			}
			return pickNumber(args, a <= b)
		},
		"format": func(args []object.Object) object.Object {
			f, err := toF("format", args, 0)
			if err != nil {
				return err
			}
			digits, err := wantInt("format", args, 1)
			if err != nil {
				return err
			}
			return &object.String{Value: strconv.FormatFloat(f, 'f', int(digits), 64)}
		},
	})
}

func pickNumber(args []object.Object, first bool) object.Object {
	if first {
		return args[0]
	}
	return args[1]
}
