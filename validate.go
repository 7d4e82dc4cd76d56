package keyshape

import (
	"fmt"

	"go.uber.org/zap"
)

// Outcome distinguishes clean acceptance from acceptance with advisories.
type Outcome int

const (
	Accepted Outcome = iota
	AcceptedWithAdvisory
)

func (o Outcome) String() string {
	if o == AcceptedWithAdvisory {
		return "accepted_with_advisory"
	}
	return "accepted"
}

// Result is the outcome of a successful validation. Advisories hold
// warn-severity issues such as unknown keywords.
type Result struct {
	Outcome    Outcome
	Advisories Issues
}

// OK reports whether the value was accepted without advisories.
func (r Result) OK() bool { return r.Outcome == Accepted }

func (r Result) merge(o Result) Result {
	for _, a := range o.Advisories {
		dup := false
		for _, b := range r.Advisories {
			if a.Code == b.Code && a.Keyword == b.Keyword {
				dup = true
				break
			}
		}
		if !dup {
			r.Advisories = append(r.Advisories, a)
		}
	}
	if len(r.Advisories) > 0 {
		r.Outcome = AcceptedWithAdvisory
	}
	return r
}

// Validator checks candidate values against keywords of a Registry. It holds
// no mutable state and is safe for concurrent use.
type Validator struct {
	reg  *Registry
	opts options
}

// NewValidator returns a Validator reading from reg.
func NewValidator(reg *Registry, opts ...Option) *Validator {
	return &Validator{reg: reg, opts: applyOptions(opts)}
}

// Registry returns the registry the Validator reads from.
func (v *Validator) Registry() *Registry { return v.reg }

// ValidateKeyword checks value against the keyword or entity type named by
// key. Unknown keys are accepted with an advisory unless WithStrictUnknown
// is set.
func (v *Validator) ValidateKeyword(value any, key string) (Result, error) {
	return v.validateAt(value, key, Root())
}

func (v *Validator) validateAt(value any, key string, p PathRef) (Result, error) {
	name := NormalizeKey(key)
	if _, ok := v.reg.LookupType(name); ok {
		return Result{}, v.checkInstance(value, name, name, p)
	}
	kw, ok := v.reg.Lookup(name)
	if !ok {
		return v.unknown(name, p)
	}
	switch kk := kw.Kind.(type) {
	case EntityKind:
		return Result{}, v.checkInstance(value, kk.Type, name, p)
	case PrimitiveKind:
		return v.checkPrimitive(value, name, kk, p)
	}
	return Result{}, Issues{registryIssue(CodeRegistryInvalid, name, "missing keyword kind")}
}

func (v *Validator) checkInstance(value any, typeName, keyword string, p PathRef) error {
	if v.reg.IsInstance(value, typeName) {
		return nil
	}
	it := p.Issue(CodeNotInstance, map[string]any{"type": typeName, "got": fmt.Sprintf("%T", value)})
	it.Keyword = keyword
	return Issues{it}
}

func (v *Validator) checkPrimitive(value any, name string, pk PrimitiveKind, p PathRef) (Result, error) {
	want, _ := pk.DType.Kind()
	err := leaves(value, p, func(leaf any, lp PathRef) error {
		got, ok := kindOf(leaf)
		if !ok || CastRuleFor(got, want) == CastForbidden {
			it := lp.Issue(CodeInvalidType, map[string]any{"got": fmt.Sprintf("%T", leaf), "dtype": pk.DType})
			it.Keyword = name
			return Issues{it}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if _, isString := value.(string); isString && want == KindString {
		// String length is not a shape.
		return v.advise(CodeStringShapeSkipped, name, p), nil
	}
	s, err := pk.Shape()
	if err != nil {
		return Result{}, withContext(err, p, name)
	}
	if err := CheckShape(value, s); err != nil {
		return Result{}, withContext(err, p, name)
	}
	return Result{}, nil
}

func (v *Validator) unknown(name string, p PathRef) (Result, error) {
	if v.opts.strictUnknown {
		it := p.Issue(CodeUnknownKeyword, map[string]any{"keyword": name})
		it.Keyword = name
		return Result{}, Issues{it}
	}
	return v.advise(CodeUnknownKeyword, name, p), nil
}

func (v *Validator) advise(code, name string, p PathRef) Result {
	it := p.Issue(code, map[string]any{"keyword": name})
	it.Keyword = name
	it.Severity = Warn
	v.opts.logger.Warn(it.Message, zap.String("keyword", name), zap.String("code", code), zap.String("path", it.Path))
	return Result{Outcome: AcceptedWithAdvisory, Advisories: Issues{it}}
}

// CheckElements descends len(s) levels of nested sequences in value and
// validates every element found there against key. It stops at the first
// error. With s exactly (1,), a bare value is validated directly.
func (v *Validator) CheckElements(value any, s Shape, key string) (Result, error) {
	return v.checkElements(value, len(s), s.IsSingleton(), key, Root())
}

func (v *Validator) checkElements(value any, depth int, singleton bool, key string, p PathRef) (Result, error) {
	if depth == 0 || (singleton && !isSequence(value)) {
		return v.validateAt(value, key, p)
	}
	if !isSequence(value) {
		it := p.Issue(CodeNotIterable, map[string]any{"depth": p.Depth(), "got": fmt.Sprintf("%T", value)})
		it.Keyword = NormalizeKey(key)
		return Result{}, Issues{it}
	}
	var res Result
	for i, e := range elements(value) {
		r, err := v.checkElements(e, depth-1, false, key, p.Index(i))
		if err != nil {
			return Result{}, err
		}
		res = res.merge(r)
	}
	return res, nil
}

// ValidateComposite validates a property holding a bounded collection of
// keyword values. The effective shape is ConcatShape(explicit, registered);
// every element within the explicit dimensions is then validated against
// key.
func (v *Validator) ValidateComposite(value any, explicit Shape, key string) (Result, error) {
	name := NormalizeKey(key)
	kw, known := v.reg.Lookup(name)
	registered := Shape{}
	if known {
		s, err := kw.Shape()
		if err != nil {
			return Result{}, withContext(err, Root(), name)
		}
		registered = s
	}
	if err := checkComposite(value, explicit, registered); err != nil {
		return Result{}, withContext(err, Root(), name)
	}
	if pk, ok := kw.Kind.(PrimitiveKind); known && ok {
		// Primitive sub-values carry their own registered dimensions, so only
		// the dimensions that were actually prepended are iterated.
		if explicit.IsSingleton() || len(explicit) == 0 {
			return v.checkPrimitive(value, name, pk, Root())
		}
		return v.CheckElements(value, explicit, name)
	}
	return v.CheckElements(value, explicit, name)
}

// checkComposite applies the composite shape rule. A registered (1,) also
// admits a plain collection of scalars within the explicit dimensions.
func checkComposite(value any, explicit, registered Shape) error {
	err := CheckShape(value, ConcatShape(explicit, registered))
	if err == nil {
		return nil
	}
	if registered.IsSingleton() && len(explicit) > 0 && !explicit.IsSingleton() {
		if CheckShape(value, explicit) == nil {
			return nil
		}
	}
	return err
}
