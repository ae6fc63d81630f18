package sysagents

import (
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func dictDispatch() func(object.Message) object.Object {
	return dispatcher("dict", map[string]opFunc{
		"new": func(args []object.Object) object.Object {
			return object.NewMap()
		},
		"get": func(args []object.Object) object.Object {
			m, err := wantMap("get", args, 0)
			if err != nil {
				return err
			}
			key, err := wantKey("get", args, 1)
			if err != nil {
				return err
			}
			value, found := m.Get(key)
			if !found {
				return object.NIL
			}
			return value
		},
		"set": func(args []object.Object) object.Object {
			m, err := wantMap("set", args, 0)
			if err != nil {
				return err
			}
			key, err := wantKey("set", args, 1)
			if err != nil {
				return err
			}
			if len(args) < 3 {
				return errorf("set: missing value")
			}
			m.Set(key, args[2])
			return m
		},
		"has": func(args []object.Object) object.Object {
			m, err := wantMap("has", args, 0)
			if err != nil {
				return err
			}
			key, err := wantKey("has", args, 1)
			if err != nil {
				return err
			}
			_, found := m.Get(key)
			return object.NativeBoolToBooleanObject(found)
		},
		"delete": func(args []object.Object) object.Object {
			m, err := wantMap("delete", args, 0)
			if err != nil {
				return err
			}
			key, err := wantKey("delete", args, 1)
			if err != nil {
				return err
			}
			mk := key.MapKey()
			if _, exists := m.Pairs[mk]; exists {
				delete(m.Pairs, mk)
				for i, ordered := range m.Order {
					if ordered == mk {
						m.Order = append(m.Order[:i], m.Order[i+1:]...)
						break
					}
				}
			}
			return m
		},
		"keys": func(args []object.Object) object.Object {
			m, err := wantMap("keys", args, 0)
			if err != nil {
				return err
			}
			keys := make([]object.Object, 0, len(m.Order))
			for _, mk := range m.Order {
				keys = append(keys, m.Pairs[mk].Key)
			}
			return &object.List{Elements: keys}
		},
		"values": func(args []object.Object) object.Object {
			m, err := wantMap("values", args, 0)
			if err != nil {
				return err
			}
			values := make([]object.Object, 0, len(m.Order))
			for _, mk := range m.Order {
				values = append(values, m.Pairs[mk].Value)
			}
			return &object.List{Elements: values}
		},
		"size": func(args []object.Object) object.Object {
			m, err := wantMap("size", args, 0)
			if err != nil {
				return err
			}
			return &object.Integer{Value: int64(len(m.Pairs))}
		},
		// merge returns a new map; entries from the second win.
		"merge": func(args []object.Object) object.Object {
			left, err := wantMap("merge", args, 0)
			if err != nil {
				return err
			}
			right, err := wantMap("merge", args, 1)
			if err != nil {
				return err
			}
			merged := object.NewMap()
			for _, mk := range left.Order {
				pair := left.Pairs[mk]
				merged.Set(pair.Key.(object.Hashable), pair.Value)
			}
			for _, mk := range right.Order {
				pair := right.Pairs[mk]
				merged.Set(pair.Key.(object.Hashable), pair.Value)
			}
			return merged
		},
	})
}
