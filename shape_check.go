package keyshape

import (
	"strconv"
	"strings"
)

// StructuralShape returns one size per nesting level of v. Scalars, strings
// and entities have shape (). The walk stops at an empty sequence. Sibling
// sequences of different lengths, or mixing sequences and leaves, are
// rejected as ragged.
func StructuralShape(v any) ([]int, error) {
	dims, ragged := structuralShape(v)
	if ragged {
		return nil, fail(CodeShapeMismatch, map[string]any{"declared": "rectangular", "actual": "ragged"})
	}
	return dims, nil
}

func structuralShape(v any) (dims []int, ragged bool) {
	if !isSequence(v) {
		return []int{}, false
	}
	elems := elements(v)
	if len(elems) == 0 {
		return []int{0}, false
	}
	inner, ragged := structuralShape(elems[0])
	if ragged {
		return nil, true
	}
	for _, e := range elems[1:] {
		d, r := structuralShape(e)
		if r || !equalInts(d, inner) {
			return nil, true
		}
	}
	return append([]int{len(elems)}, inner...), false
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatDims renders an actual shape like a Python tuple: (), (3,), (2, 3).
func FormatDims(dims []int) string {
	switch len(dims) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(dims[0]) + ",)"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CheckShape verifies the structural shape of v against s. An empty s
// accepts anything. When s is exactly (1,), a bare scalar and a one-element
// sequence are equivalent.
func CheckShape(v any, s Shape) error {
	if len(s) == 0 {
		return nil
	}
	dims, err := StructuralShape(v)
	if err != nil {
		return err
	}
	if s.IsSingleton() && len(dims) == 0 {
		dims = []int{1}
	}
	if len(dims) != len(s) {
		return mismatch(s, dims, -1)
	}
	for i, b := range s {
		if !b.Contains(int64(dims[i])) {
			return mismatch(s, dims, i)
		}
	}
	return nil
}

// CheckShapeText decodes text and checks v against it.
func CheckShapeText(v any, text string) error {
	s, err := DecodeShape(text)
	if err != nil {
		return err
	}
	return CheckShape(v, s)
}

// ConcatShape computes the effective shape of a composite keyword: explicit
// dimensions prepended to the registered ones. An explicit (1,) contributes
// nothing.
func ConcatShape(explicit, registered Shape) Shape {
	if explicit.IsSingleton() {
		return append(Shape{}, registered...)
	}
	out := make(Shape, 0, len(explicit)+len(registered))
	out = append(out, explicit...)
	return append(out, registered...)
}

func mismatch(s Shape, dims []int, dim int) error {
	params := map[string]any{"declared": s.String(), "actual": FormatDims(dims)}
	if dim >= 0 {
		params["dim"] = dim
	}
	return fail(CodeShapeMismatch, params)
}
