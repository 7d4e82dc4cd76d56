package keyshape

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DType is a primitive element type tag declared for a keyword.
type DType int

const (
	DTypeNone DType = iota // entity-typed keyword
	DTypeBool
	DTypeInt8
	DTypeInt16
	DTypeInt32
	DTypeInt64
	DTypeUint8
	DTypeUint16
	DTypeUint32
	DTypeUint64
	DTypeFloat32
	DTypeFloat64
	DTypeComplex64
	DTypeComplex128
	DTypeString
)

var dtypeNames = [...]string{
	DTypeNone:       "none",
	DTypeBool:       "bool",
	DTypeInt8:       "int8",
	DTypeInt16:      "int16",
	DTypeInt32:      "int32",
	DTypeInt64:      "int64",
	DTypeUint8:      "uint8",
	DTypeUint16:     "uint16",
	DTypeUint32:     "uint32",
	DTypeUint64:     "uint64",
	DTypeFloat32:    "float32",
	DTypeFloat64:    "float64",
	DTypeComplex64:  "complex64",
	DTypeComplex128: "complex128",
	DTypeString:     "string",
}

var dtypeAliases = map[string]DType{
	"":        DTypeNone,
	"null":    DTypeNone,
	"entity":  DTypeNone,
	"boolean": DTypeBool,
	"int":     DTypeInt64,
	"integer": DTypeInt64,
	"long":    DTypeInt64,
	"uint":    DTypeUint64,
	"float":   DTypeFloat64,
	"double":  DTypeFloat64,
	"real":    DTypeFloat64,
	"single":  DTypeFloat32,
	"complex": DTypeComplex128,
	"str":     DTypeString,
	"text":    DTypeString,
}

func (d DType) String() string {
	if d >= 0 && int(d) < len(dtypeNames) {
		return dtypeNames[d]
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// ParseDType resolves a dtype tag or one of its aliases (case-insensitive).
func ParseDType(s string) (DType, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	for i, n := range dtypeNames {
		if n == t {
			return DType(i), nil
		}
	}
	if d, ok := dtypeAliases[t]; ok {
		return d, nil
	}
	return DTypeNone, fmt.Errorf("keyshape: unknown dtype %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d DType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DType) UnmarshalText(b []byte) error {
	v, err := ParseDType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Kind is the casting family of a dtype or runtime value.
type Kind int

const (
	KindBool Kind = iota
	KindUint
	KindInt
	KindFloat
	KindComplex
	KindString
	numKinds
)

var kindNames = [...]string{"bool", "uint", "int", "float", "complex", "string"}

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return "invalid"
}

// Kind returns the casting family of d. DTypeNone has no kind.
func (d DType) Kind() (Kind, bool) {
	switch d {
	case DTypeBool:
		return KindBool, true
	case DTypeInt8, DTypeInt16, DTypeInt32, DTypeInt64:
		return KindInt, true
	case DTypeUint8, DTypeUint16, DTypeUint32, DTypeUint64:
		return KindUint, true
	case DTypeFloat32, DTypeFloat64:
		return KindFloat, true
	case DTypeComplex64, DTypeComplex128:
		return KindComplex, true
	case DTypeString:
		return KindString, true
	}
	return 0, false
}

// Bits returns the storage width of numeric dtypes, 0 otherwise.
func (d DType) Bits() int {
	switch d {
	case DTypeInt8, DTypeUint8:
		return 8
	case DTypeInt16, DTypeUint16:
		return 16
	case DTypeInt32, DTypeUint32, DTypeFloat32:
		return 32
	case DTypeInt64, DTypeUint64, DTypeFloat64, DTypeComplex64:
		return 64
	case DTypeComplex128:
		return 128
	}
	return 0
}

var dtypeGoTypes = map[DType]reflect.Type{
	DTypeBool:       reflect.TypeOf(false),
	DTypeInt8:       reflect.TypeOf(int8(0)),
	DTypeInt16:      reflect.TypeOf(int16(0)),
	DTypeInt32:      reflect.TypeOf(int32(0)),
	DTypeInt64:      reflect.TypeOf(int64(0)),
	DTypeUint8:      reflect.TypeOf(uint8(0)),
	DTypeUint16:     reflect.TypeOf(uint16(0)),
	DTypeUint32:     reflect.TypeOf(uint32(0)),
	DTypeUint64:     reflect.TypeOf(uint64(0)),
	DTypeFloat32:    reflect.TypeOf(float32(0)),
	DTypeFloat64:    reflect.TypeOf(float64(0)),
	DTypeComplex64:  reflect.TypeOf(complex64(0)),
	DTypeComplex128: reflect.TypeOf(complex128(0)),
	DTypeString:     reflect.TypeOf(""),
}

// GoType returns the Go type values of d are cast to (nil for DTypeNone).
func (d DType) GoType() reflect.Type { return dtypeGoTypes[d] }

// kindOf classifies a runtime leaf value. Named types are classified by their
// underlying kind. json.Number is an int when it is an integer literal.
func kindOf(v any) (Kind, bool) {
	if v == nil {
		return 0, false
	}
	if n, ok := v.(json.Number); ok {
		return numberKind(n), true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool:
		return KindBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint, true
	case reflect.Float32, reflect.Float64:
		return KindFloat, true
	case reflect.Complex64, reflect.Complex128:
		return KindComplex, true
	case reflect.String:
		return KindString, true
	}
	return 0, false
}

// numberKind classifies a json.Number. Integer literals stay integers at any
// magnitude: non-negative values beyond int64 are uints, and literals wider
// than 64 bits are ints that fit no integer dtype.
func numberKind(n json.Number) Kind {
	lit := n.String()
	if isIntLiteral(lit) {
		if _, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return KindInt
		}
		if _, err := strconv.ParseUint(strings.TrimPrefix(lit, "+"), 10, 64); err == nil {
			return KindUint
		}
		return KindInt
	}
	if _, err := n.Float64(); err == nil {
		return KindFloat
	}
	return KindString
}

func isIntLiteral(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CastRule says whether a cast between two kinds is allowed.
type CastRule int

const (
	CastAllowed   CastRule = iota // always representable
	CastIfInRange                 // allowed when the value fits the target width
	CastForbidden                 // kind-incompatible
)

func (r CastRule) String() string {
	switch r {
	case CastAllowed:
		return "allowed"
	case CastIfInRange:
		return "range"
	default:
		return "forbidden"
	}
}

const (
	yes = CastAllowed
	fit = CastIfInRange
	not = CastForbidden
)

// castTable is indexed [source][target].
var castTable = [numKinds][numKinds]CastRule{
	//            bool uint int  float complex string
	KindBool:    {yes, yes, yes, yes, yes, yes},
	KindUint:    {not, fit, fit, yes, yes, yes},
	KindInt:     {not, fit, fit, yes, yes, yes},
	KindFloat:   {not, not, not, fit, yes, yes},
	KindComplex: {not, not, not, not, fit, yes},
	KindString:  {not, not, not, not, not, yes},
}

// CastRuleFor returns the table entry for casting src into dst.
func CastRuleFor(src, dst Kind) CastRule {
	if src < 0 || src >= numKinds || dst < 0 || dst >= numKinds {
		return CastForbidden
	}
	return castTable[src][dst]
}
