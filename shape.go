package keyshape

import (
	"math"
	"strconv"
	"strings"
)

// Extended-integer sentinels used for open bounds.
const (
	NegInf int64 = math.MinInt64
	PosInf int64 = math.MaxInt64
)

// Bound is an inclusive size range for one dimension.
type Bound struct {
	Min int64
	Max int64
}

// Exact returns the bound for a fixed size n.
func Exact(n int64) Bound { return Bound{Min: n, Max: n} }

// Unconstrained returns the fully open bound (-inf, inf).
func Unconstrained() Bound { return Bound{Min: NegInf, Max: PosInf} }

// Contains reports whether n lies in the bound.
func (b Bound) Contains(n int64) bool { return b.Min <= n && n <= b.Max }

// IsExact reports whether the bound admits a single finite size.
func (b Bound) IsExact() bool { return b.Min == b.Max && b.Min != NegInf && b.Max != PosInf }

// String renders the bound as a grammar token.
func (b Bound) String() string {
	if b.IsExact() {
		return strconv.FormatInt(b.Min, 10)
	}
	var sb strings.Builder
	if b.Min != NegInf {
		sb.WriteString(strconv.FormatInt(b.Min, 10))
	}
	sb.WriteByte(':')
	if b.Max != PosInf {
		sb.WriteString(strconv.FormatInt(b.Max, 10))
	}
	return sb.String()
}

// Shape is an ordered sequence of dimension bounds. An empty Shape places no
// constraint on the value.
type Shape []Bound

// IsSingleton reports whether s is exactly ((1,1),).
func (s Shape) IsSingleton() bool { return len(s) == 1 && s[0] == Exact(1) }

// String renders s in the shape grammar; DecodeShape(s.String()) yields s.
func (s Shape) String() string {
	if len(s) == 0 {
		return "()"
	}
	toks := make([]string, len(s))
	for i, b := range s {
		toks[i] = b.String()
	}
	if len(s) == 1 {
		return "(" + toks[0] + ",)"
	}
	return "(" + strings.Join(toks, ", ") + ")"
}

// DecodeShape parses the compact shape grammar:
//
//	(a:b, a:, :b, :, a)
//
// "()" decodes to the empty (unconstrained) Shape.
func DecodeShape(text string) (Shape, error) {
	t := strings.TrimSpace(text)
	if len(t) < 2 || t[0] != '(' || t[len(t)-1] != ')' {
		return nil, malformed(text, "expected parenthesized list")
	}
	body := strings.TrimSpace(t[1 : len(t)-1])
	if body == "" {
		return Shape{}, nil
	}
	if strings.ContainsAny(body, "()") {
		return nil, malformed(text, "unbalanced parentheses")
	}
	toks := strings.Split(body, ",")
	// a single trailing comma is allowed: "(1,)"
	if strings.TrimSpace(toks[len(toks)-1]) == "" {
		toks = toks[:len(toks)-1]
	}
	out := make(Shape, 0, len(toks))
	for _, tok := range toks {
		b, err := decodeBound(strings.TrimSpace(tok))
		if err != nil {
			return nil, malformed(text, err.Error())
		}
		out = append(out, b)
	}
	return out, nil
}

// MustDecodeShape is DecodeShape for literals; it panics on malformed input.
func MustDecodeShape(text string) Shape {
	s, err := DecodeShape(text)
	if err != nil {
		panic(err)
	}
	return s
}

func decodeBound(tok string) (Bound, error) {
	if tok == "" {
		return Bound{}, errToken("empty dimension")
	}
	lo, hi, ranged := strings.Cut(tok, ":")
	if !ranged {
		n, err := parseSize(tok)
		if err != nil {
			return Bound{}, err
		}
		return Exact(n), nil
	}
	if strings.Contains(hi, ":") {
		return Bound{}, errToken("too many ':' in " + strconv.Quote(tok))
	}
	b := Unconstrained()
	if lo = strings.TrimSpace(lo); lo != "" {
		n, err := parseSize(lo)
		if err != nil {
			return Bound{}, err
		}
		b.Min = n
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		n, err := parseSize(hi)
		if err != nil {
			return Bound{}, err
		}
		b.Max = n
	}
	if b.Min > b.Max {
		return Bound{}, errToken("empty range " + strconv.Quote(tok))
	}
	return b, nil
}

func parseSize(s string) (int64, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errToken("not a size " + strconv.Quote(s))
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errToken("size out of range " + strconv.Quote(s))
	}
	return n, nil
}

type errToken string

func (e errToken) Error() string { return string(e) }

func malformed(text, reason string) error {
	return fail(CodeMalformedShape, map[string]any{"text": strconv.Quote(text), "reason": reason})
}

// Dim is one entry of a registered keyword shape: a positive size or Unbounded.
type Dim int64

// Unbounded marks a registered dimension without a size limit.
const Unbounded Dim = -1

// ShapeOf converts registered dimensions into a Shape.
func ShapeOf(dims ...Dim) Shape {
	out := make(Shape, len(dims))
	for i, d := range dims {
		if d == Unbounded {
			out[i] = Unconstrained()
		} else {
			out[i] = Exact(int64(d))
		}
	}
	return out
}

// ShapeText renders registered dimensions in the shape grammar.
func ShapeText(dims ...Dim) string { return ShapeOf(dims...).String() }
