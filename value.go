package keyshape

import (
	"reflect"
)

// isSequence reports whether v is an ordered sequence for shape purposes.
// Strings and entities are leaves; any slice or array is a sequence.
func isSequence(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(Entity); ok {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// elements returns the members of a sequence as interfaces.
func elements(v any) []any {
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// leaves walks v depth-first and calls fn for every non-sequence value.
// It stops at the first error.
func leaves(v any, p PathRef, fn func(leaf any, p PathRef) error) error {
	if !isSequence(v) {
		return fn(v, p)
	}
	for i, e := range elements(v) {
		if err := leaves(e, p.Index(i), fn); err != nil {
			return err
		}
	}
	return nil
}
