package fastrpc

import "reflect"

// derefValue follows pointers and interfaces in v, and returns the
// concrete value they lead to. It returns the zero reflect.Value if
// it encounters a nil.
func derefValue(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
