package sysagents

import (
	"encoding/json"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

func jsonDispatch() func(object.Message) object.Object {
	return dispatcher("json", map[string]opFunc{
		"encode": func(args []object.Object) object.Object {
			if err := wantArgs("encode", args, 1); err != nil {
				return err
			}
			native, convErr := toNative(args[0])
			if convErr != nil {
				return convErr
			}
			data, jsonErr := json.Marshal(native)
			if jsonErr != nil {
				return errorf("encode: %v", jsonErr)
			}
			return &object.String{Value: string(data)}
		},
		"decode": func(args []object.Object) object.Object {
			s, err := wantString("decode", args, 0)
			if err != nil {
				return err
			}
			var native interface{}
			if jsonErr := json.Unmarshal([]byte(s), &native); jsonErr != nil {
				return errorf("decode: %v", jsonErr)
			}
			return fromNative(native)
		},
	})
}

func toNative(obj object.Object) (interface{}, *object.Error) {
	switch obj := obj.(type) {
	case *object.Nil:
		return nil, nil
	case *object.Boolean:
		return obj.Value, nil
	case *object.Integer:
		return obj.Value, nil
	case *object.Float:
		return obj.Value, nil
	case *object.String:
		return obj.Value, nil
	case *object.Word:
		return obj.Value, nil
	case *object.Embedded:
		return obj.Text, nil
	case *object.List:
		out := make([]interface{}, len(obj.Elements))
		for i, el := range obj.Elements {
			native, err := toNative(el)
			if err != nil {
				return nil, err
			}
			out[i] = native
		}
		return out, nil
	case *object.Map:
		out := make(map[string]interface{}, len(obj.Order))
		for _, key := range obj.Order {
			pair := obj.Pairs[key]
			str, ok := pair.Key.(*object.String)
			if !ok {
				return nil, errorf("encode: map key %s is not a string", pair.Key.Inspect())
			}
			native, err := toNative(pair.Value)
			if err != nil {
				return nil, err
			}
			out[str.Value] = native
		}
		return out, nil
	}
	return nil, errorf("encode: %s has no JSON form", obj.Type())
}

func fromNative(native interface{}) object.Object {
	switch native := native.(type) {
	case nil:
		return object.NIL
	case bool:
		return object.NativeBoolToBooleanObject(native)
	case float64:
		if native == float64(int64(native)) {
			return &object.Integer{Value: int64(native)}
		}
		return &object.Float{Value: native}
	case string:
		return &object.String{Value: native}
	case []interface{}:
		elements := make([]object.Object, len(native))
		for i, el := range native {
			elements[i] = fromNative(el)
		}
		return &object.List{Elements: elements}
	case map[string]interface{}:
		out := object.NewMap()
		for key, value := range native {
			out.Set(&object.String{Value: key}, fromNative(value))
		}
		return out
	}
	return errorf("decode: unsupported JSON value %v", native)
}
