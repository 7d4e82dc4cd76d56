package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/reoring/keyshape"
)

// DefRef returns the reference used for an entity type definition.
func DefRef(typeName string) string { return "#/$defs/" + keyshape.NormalizeKey(typeName) }

// FromKeyword projects one keyword. Each registered dimension becomes a
// nested array with minItems/maxItems; a (1,) shape accepts either a bare
// scalar or a one-element array and an unconstrained shape places no
// structural constraint. Entity keywords
// reference the entity definition.
func FromKeyword(k keyshape.Keyword) (*Schema, error) {
	switch kk := k.Kind.(type) {
	case keyshape.EntityKind:
		return &Schema{Ref: DefRef(kk.Type), Description: k.Definition}, nil
	case keyshape.PrimitiveKind:
		s, err := kk.Shape()
		if err != nil {
			return nil, fmt.Errorf("jsonschema: keyword %s: %w", k.Name, err)
		}
		out := wrap(leaf(kk.DType), s)
		if len(s) == 0 {
			out = &Schema{Format: kk.DType.String()}
		}
		out.Description = k.Definition
		return out, nil
	}
	return nil, fmt.Errorf("jsonschema: keyword %s has no kind", k.Name)
}

// FromRegistry builds an object schema with one property per keyword and one
// definition per entity type. Unregistered properties stay allowed since
// unknown keywords are advisories.
func FromRegistry(r *keyshape.Registry) (*Schema, error) {
	root := &Schema{
		Dialect:              Draft,
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: true,
	}
	for _, k := range r.Keywords() {
		s, err := FromKeyword(k)
		if err != nil {
			return nil, err
		}
		root.Properties[k.Name] = s
	}
	for _, t := range r.EntityTypes() {
		if root.Defs == nil {
			root.Defs = map[string]*Schema{}
		}
		def := &Schema{Title: t.Name, Description: t.Definition, Type: "object"}
		if t.Parent != "" {
			def.AllOf = []*Schema{{Ref: DefRef(t.Parent)}}
		}
		root.Defs[t.Name] = def
	}
	return root, nil
}

func wrap(item *Schema, s keyshape.Shape) *Schema {
	if s.IsSingleton() {
		// a bare value and a one-element array are the same (1,) value
		return &Schema{OneOf: []*Schema{item, {Type: "array", Items: item, MinItems: ptr(1), MaxItems: ptr(1)}}}
	}
	out := item
	for i := len(s) - 1; i >= 0; i-- {
		arr := &Schema{Type: "array", Items: out}
		if b := s[i]; b.Min != keyshape.NegInf && b.Min > 0 {
			arr.MinItems = ptr(b.Min)
		}
		if b := s[i]; b.Max != keyshape.PosInf {
			arr.MaxItems = ptr(b.Max)
		}
		out = arr
	}
	return out
}

func leaf(d keyshape.DType) *Schema {
	s := &Schema{Format: d.String()}
	k, _ := d.Kind()
	switch k {
	case keyshape.KindBool:
		s.Type = "boolean"
	case keyshape.KindInt:
		bits := d.Bits()
		s.Type = "integer"
		s.Minimum = number(strconv.FormatInt(-1<<(bits-1), 10))
		s.Maximum = number(strconv.FormatInt(1<<(bits-1)-1, 10))
	case keyshape.KindUint:
		s.Type = "integer"
		s.Minimum = "0"
		s.Maximum = number(strconv.FormatUint(math.MaxUint64>>(64-d.Bits()), 10))
	case keyshape.KindFloat, keyshape.KindComplex:
		// complex keywords accept real input
		s.Type = "number"
	case keyshape.KindString:
		s.Type = "string"
	}
	return s
}

func number(s string) json.Number { return json.Number(s) }

func ptr(v int64) *int64 { return &v }
