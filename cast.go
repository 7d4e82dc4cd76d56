package keyshape

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Caster converts values into the canonical representation of a keyword's
// dtype. It holds no mutable state and is safe for concurrent use.
type Caster struct {
	reg  *Registry
	opts options
}

// NewCaster returns a Caster reading from reg.
func NewCaster(reg *Registry, opts ...Option) *Caster {
	return &Caster{reg: reg, opts: applyOptions(opts)}
}

// Cast converts value to the dtype declared for key. Unknown keys and entity
// keywords pass value through unchanged. Sequences keep their container kind
// ([]any stays []any, typed slices and arrays get the dtype's element type);
// scalars stay scalars.
func (c *Caster) Cast(value any, key string) (any, error) {
	kw, ok := c.reg.Lookup(key)
	if !ok {
		c.opts.logger.Debug("cast pass-through for unregistered keyword", zap.String("keyword", NormalizeKey(key)))
		return value, nil
	}
	pk, ok := kw.Kind.(PrimitiveKind)
	if !ok {
		return value, nil
	}
	out, err := CastValue(value, pk.DType)
	if err != nil {
		return nil, withContext(err, Root(), kw.Name)
	}
	return out, nil
}

// CastValue converts a scalar or nested sequence to d following the cast
// table. DTypeNone returns value unchanged.
func CastValue(value any, d DType) (any, error) {
	if d == DTypeNone {
		return value, nil
	}
	if !isSequence(value) {
		return castScalar(value, d, Root())
	}
	out, err := castSequence(reflect.ValueOf(value), d, Root())
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// castType maps a container type to its cast counterpart.
func castType(t reflect.Type, d DType) reflect.Type {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		if elem.Kind() == reflect.Interface {
			if elem.NumMethod() == 0 {
				return t
			}
			elem = anyType
		} else {
			elem = castType(elem, d)
		}
		if t.Kind() == reflect.Array {
			return reflect.ArrayOf(t.Len(), elem)
		}
		return reflect.SliceOf(elem)
	case reflect.Interface:
		return t
	}
	return d.GoType()
}

func castSequence(rv reflect.Value, d DType, p PathRef) (reflect.Value, error) {
	outType := castType(rv.Type(), d)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return reflect.Zero(outType), nil
	}
	var out reflect.Value
	if outType.Kind() == reflect.Array {
		out = reflect.New(outType).Elem()
	} else {
		out = reflect.MakeSlice(outType, rv.Len(), rv.Len())
	}
	for i := 0; i < rv.Len(); i++ {
		ev := rv.Index(i)
		if ev.Kind() == reflect.Interface {
			ev = ev.Elem()
		}
		var (
			cv  reflect.Value
			err error
		)
		switch {
		case !ev.IsValid():
			_, err = castScalar(nil, d, p.Index(i))
		case isSequence(ev.Interface()):
			cv, err = castSequence(ev, d, p.Index(i))
		default:
			var s any
			s, err = castScalar(ev.Interface(), d, p.Index(i))
			cv = reflect.ValueOf(s)
		}
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(cv)
	}
	return out, nil
}

// scalar is a leaf value unpacked into its casting family.
type scalar struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	c    complex128
	s    string
	lit  string // original numeric literal (json.Number)
	wide bool   // integer literal wider than 64 bits; f holds its magnitude
}

func unpack(v any) (scalar, bool) {
	k, ok := kindOf(v)
	if !ok {
		return scalar{}, false
	}
	sc := scalar{kind: k}
	if n, isNum := v.(json.Number); isNum {
		sc.lit = n.String()
		switch k {
		case KindInt:
			i, err := strconv.ParseInt(sc.lit, 10, 64)
			if err != nil {
				sc.wide = true
				sc.f, _ = n.Float64()
			}
			sc.i = i
		case KindUint:
			sc.u, _ = strconv.ParseUint(strings.TrimPrefix(sc.lit, "+"), 10, 64)
		case KindFloat:
			sc.f, _ = n.Float64()
		default:
			sc.s = n.String()
		}
		return sc, true
	}
	rv := reflect.ValueOf(v)
	switch k {
	case KindBool:
		sc.b = rv.Bool()
	case KindInt:
		sc.i = rv.Int()
	case KindUint:
		sc.u = rv.Uint()
	case KindFloat:
		sc.f = rv.Float()
	case KindComplex:
		sc.c = rv.Complex()
	case KindString:
		sc.s = rv.String()
	}
	return sc, true
}

func castScalar(v any, d DType, p PathRef) (any, error) {
	sc, ok := unpack(v)
	want, _ := d.Kind()
	if !ok || CastRuleFor(sc.kind, want) == CastForbidden {
		return nil, Issues{p.Issue(CodeInvalidType, map[string]any{"got": fmt.Sprintf("%T", v), "dtype": d})}
	}
	out, fits := convert(sc, d)
	if !fits {
		return nil, Issues{p.Issue(CodeOverflow, map[string]any{"value": fmt.Sprint(v), "dtype": d})}
	}
	return out, nil
}

func convert(sc scalar, d DType) (any, bool) {
	switch d {
	case DTypeBool:
		return sc.b, true
	case DTypeInt8:
		i, ok := toInt(sc, 8)
		return int8(i), ok
	case DTypeInt16:
		i, ok := toInt(sc, 16)
		return int16(i), ok
	case DTypeInt32:
		i, ok := toInt(sc, 32)
		return int32(i), ok
	case DTypeInt64:
		i, ok := toInt(sc, 64)
		return i, ok
	case DTypeUint8:
		u, ok := toUint(sc, 8)
		return uint8(u), ok
	case DTypeUint16:
		u, ok := toUint(sc, 16)
		return uint16(u), ok
	case DTypeUint32:
		u, ok := toUint(sc, 32)
		return uint32(u), ok
	case DTypeUint64:
		u, ok := toUint(sc, 64)
		return u, ok
	case DTypeFloat32:
		f, ok := toFloat(sc, 32)
		return float32(f), ok
	case DTypeFloat64:
		f, ok := toFloat(sc, 64)
		return f, ok
	case DTypeComplex64:
		c, ok := toComplex(sc, 64)
		return complex64(c), ok
	case DTypeComplex128:
		c, ok := toComplex(sc, 128)
		return c, ok
	case DTypeString:
		return toString(sc), true
	}
	return nil, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func toInt(sc scalar, bits int) (int64, bool) {
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	switch sc.kind {
	case KindBool:
		return boolInt(sc.b), true
	case KindInt:
		return sc.i, !sc.wide && sc.i >= lo && sc.i <= hi
	case KindUint:
		return int64(sc.u), sc.u <= uint64(hi)
	}
	return 0, false
}

func toUint(sc scalar, bits int) (uint64, bool) {
	hi := uint64(math.MaxUint64)
	if bits < 64 {
		hi = uint64(1)<<bits - 1
	}
	switch sc.kind {
	case KindBool:
		return uint64(boolInt(sc.b)), true
	case KindInt:
		return uint64(sc.i), !sc.wide && sc.i >= 0 && uint64(sc.i) <= hi
	case KindUint:
		return sc.u, sc.u <= hi
	}
	return 0, false
}

func toFloat(sc scalar, bits int) (float64, bool) {
	switch sc.kind {
	case KindBool:
		return float64(boolInt(sc.b)), true
	case KindInt:
		if sc.wide {
			if math.IsInf(sc.f, 0) {
				return 0, false
			}
			return fitFloat(sc.f, bits)
		}
		return float64(sc.i), true
	case KindUint:
		return float64(sc.u), true
	case KindFloat:
		return fitFloat(sc.f, bits)
	}
	return 0, false
}

func fitFloat(f float64, bits int) (float64, bool) {
	if bits == 32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return f, true
}

func toComplex(sc scalar, bits int) (complex128, bool) {
	if sc.kind != KindComplex {
		f, ok := toFloat(sc, 64)
		return complex(f, 0), ok
	}
	if bits == 64 {
		for _, part := range []float64{real(sc.c), imag(sc.c)} {
			if !math.IsInf(part, 0) && math.Abs(part) > math.MaxFloat32 {
				return 0, false
			}
		}
	}
	return sc.c, true
}

func toString(sc scalar) string {
	if sc.lit != "" {
		return sc.lit
	}
	switch sc.kind {
	case KindBool:
		return strconv.FormatBool(sc.b)
	case KindInt:
		return strconv.FormatInt(sc.i, 10)
	case KindUint:
		return strconv.FormatUint(sc.u, 10)
	case KindFloat:
		return strconv.FormatFloat(sc.f, 'g', -1, 64)
	case KindComplex:
		return strconv.FormatComplex(sc.c, 'g', -1, 128)
	}
	return sc.s
}
