package interpreter

import (
	"fmt"

	"plvm/pkg/inst"
	"plvm/pkg/lang"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// Value is the result of a script: the static type of its return and the
// raw slot content. Raw is one of int32, int64, float32, float64, bool or a
// reference (string, array, collection, closure, object or nil).
type Value struct {
	Type types.TypeInstance
	Raw  any
}

// IsVoid reports a script that returned nothing
func (v Value) IsVoid() bool {
	return v.Type == nil || v.Type == types.Void
}

// Kind returns the slot kind of the value
func (v Value) Kind() mem.Kind {
	if v.IsVoid() {
		return mem.KindNone
	}
	return v.Type.Kind()
}

// String renders the value as a string.
func (v Value) String() string {
	if v.IsVoid() {
		return "void"
	}

	switch x := v.Raw.(type) {
	case int32:
		return inst.FormatInt(x)
	case int64:
		return inst.FormatLong(x)
	case float32:
		return inst.FormatFloat(x)
	case float64:
		return inst.FormatDouble(x)
	case bool:
		return inst.FormatBool(x)
	default:
		return inst.Stringify(x)
	}
}

// Interface converts the value into plain Go values
func (v Value) Interface() any {
	if v.IsVoid() {
		return nil
	}
	return lang.Export(v.Raw)
}

// AsInt64 converts the value to int64 if possible.
func (v Value) AsInt64() (int64, error) {
	switch x := v.Raw.(type) {
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to int", v.typeName())
	}
}

// AsFloat64 converts the value to float64 if possible.
func (v Value) AsFloat64() (float64, error) {
	switch x := v.Raw.(type) {
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float", v.typeName())
	}
}

// AsBool returns the value of a bool result
func (v Value) AsBool() (bool, error) {
	b, ok := v.Raw.(bool)
	if !ok {
		return false, fmt.Errorf("cannot convert %s to bool", v.typeName())
	}
	return b, nil
}

func (v Value) typeName() string {
	if v.IsVoid() {
		return "void"
	}
	return v.Type.String()
}
