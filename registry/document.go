// Package registry loads keyword registries from YAML, JSON and HCL
// documents.
//
// A YAML document looks like:
//
//	keywords:
//	  VELOCITY: {definition: "Velocity of the point", type: double, shape: [3]}
//	  POSITIONS: {type: float64, shape: "(:, 3)"}
//	  MATERIAL_REF: {entity: MATERIAL}
//	entities:
//	  CUDS_COMPONENT: {definition: "Base of all components"}
//	  MATERIAL: {parent: CUDS_COMPONENT}
//
// A shape is either a list of positive sizes, where ":" or null marks an
// unbounded dimension, or a shape grammar string. Primitive keywords without
// a shape get (1,).
package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/reoring/keyshape"
)

type keywordEntry struct {
	Definition string
	Type       string
	Entity     string
	Shape      any
	HasShape   bool
}

type entityEntry struct {
	Definition string
	Parent     string
}

type document struct {
	Keywords map[string]keywordEntry
	Entities map[string]entityEntry
}

// build turns a decoded document into a Registry. Entries are queued in name
// order so Build reports problems deterministically.
func (d document) build() (*keyshape.Registry, error) {
	b := keyshape.NewBuilder()
	for _, name := range sortedKeys(d.Entities) {
		e := d.Entities[name]
		b.AddEntityType(keyshape.EntityType{Name: name, Parent: e.Parent, Definition: e.Definition})
	}
	for _, name := range sortedKeys(d.Keywords) {
		kw, err := d.Keywords[name].keyword(name)
		if err != nil {
			return nil, err
		}
		b.AddKeyword(kw)
	}
	return b.Build()
}

func (e keywordEntry) keyword(name string) (keyshape.Keyword, error) {
	dt, err := keyshape.ParseDType(e.Type)
	if err != nil {
		return keyshape.Keyword{}, invalid(name, err.Error())
	}
	if e.Entity != "" {
		if dt != keyshape.DTypeNone {
			return keyshape.Keyword{}, invalid(name, "entity keyword cannot declare dtype "+dt.String())
		}
		return keyshape.Keyword{Name: name, Definition: e.Definition, Kind: keyshape.EntityKind{Type: e.Entity}}, nil
	}
	pk := keyshape.PrimitiveKind{DType: dt, Dims: []keyshape.Dim{1}}
	if e.HasShape {
		pk.Dims, pk.ShapeText, err = shapeOf(e.Shape)
		if err != nil {
			return keyshape.Keyword{}, invalid(name, err.Error())
		}
	}
	return keyshape.Keyword{Name: name, Definition: e.Definition, Kind: pk}, nil
}

// shapeOf accepts a grammar string, a single size or a list of sizes.
func shapeOf(v any) ([]keyshape.Dim, string, error) {
	switch s := v.(type) {
	case nil:
		return []keyshape.Dim{1}, "", nil
	case string:
		if _, err := keyshape.DecodeShape(s); err != nil {
			return nil, "", err
		}
		return nil, s, nil
	case []any:
		dims := make([]keyshape.Dim, 0, len(s))
		for i, e := range s {
			d, err := dimOf(e)
			if err != nil {
				return nil, "", fmt.Errorf("shape[%d]: %w", i, err)
			}
			dims = append(dims, d)
		}
		return dims, "", nil
	}
	d, err := dimOf(v)
	if err != nil {
		return nil, "", fmt.Errorf("shape: %w", err)
	}
	return []keyshape.Dim{d}, "", nil
}

func dimOf(v any) (keyshape.Dim, error) {
	switch n := v.(type) {
	case nil:
		return keyshape.Unbounded, nil
	case string:
		if strings.TrimSpace(n) == ":" {
			return keyshape.Unbounded, nil
		}
	case int:
		return positive(int64(n))
	case int64:
		return positive(n)
	case uint64:
		if n <= math.MaxInt64 {
			return positive(int64(n))
		}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return positive(int64(n))
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return positive(i)
		}
	}
	return 0, fmt.Errorf("invalid dimension %v", v)
}

func positive(n int64) (keyshape.Dim, error) {
	if n <= 0 {
		return 0, fmt.Errorf("dimension size %d must be positive", n)
	}
	return keyshape.Dim(n), nil
}

// fromTree reads the generic value produced by the YAML and JSON decoders.
func fromTree(tree any) (document, error) {
	doc := document{Keywords: map[string]keywordEntry{}, Entities: map[string]entityEntry{}}
	if tree == nil {
		return doc, nil
	}
	root, ok := tree.(map[string]any)
	if !ok {
		return doc, fmt.Errorf("%w: document root must be a mapping", keyshape.ErrRegistry)
	}
	for key, section := range root {
		switch key {
		case "keywords":
			if err := eachEntry(section, key, func(name string, fields map[string]any) error {
				e, err := readKeyword(name, fields)
				doc.Keywords[name] = e
				return err
			}); err != nil {
				return doc, err
			}
		case "entities":
			if err := eachEntry(section, key, func(name string, fields map[string]any) error {
				e, err := readEntity(name, fields)
				doc.Entities[name] = e
				return err
			}); err != nil {
				return doc, err
			}
		default:
			return doc, fmt.Errorf("%w: unknown section %q", keyshape.ErrRegistry, key)
		}
	}
	return doc, nil
}

func eachEntry(section any, sectionName string, fn func(name string, fields map[string]any) error) error {
	if section == nil {
		return nil
	}
	entries, ok := section.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s must be a mapping", keyshape.ErrRegistry, sectionName)
	}
	for name, raw := range entries {
		fields := map[string]any{}
		if raw != nil {
			m, ok := raw.(map[string]any)
			if !ok {
				return invalid(name, "entry must be a mapping")
			}
			fields = m
		}
		if err := fn(name, fields); err != nil {
			return err
		}
	}
	return nil
}

func readKeyword(name string, fields map[string]any) (keywordEntry, error) {
	var e keywordEntry
	for k, v := range fields {
		var err error
		switch k {
		case "definition":
			e.Definition, err = text(v)
		case "type":
			e.Type, err = text(v)
		case "entity":
			e.Entity, err = text(v)
		case "shape":
			e.Shape, e.HasShape = v, true
		default:
			err = fmt.Errorf("unknown field %q", k)
		}
		if err != nil {
			return e, invalid(name, err.Error())
		}
	}
	return e, nil
}

func readEntity(name string, fields map[string]any) (entityEntry, error) {
	var e entityEntry
	for k, v := range fields {
		var err error
		switch k {
		case "definition":
			e.Definition, err = text(v)
		case "parent":
			e.Parent, err = text(v)
		default:
			err = fmt.Errorf("unknown field %q", k)
		}
		if err != nil {
			return e, invalid(name, err.Error())
		}
	}
	return e, nil
}

func text(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	}
	return "", fmt.Errorf("expected a string, got %T", v)
}

func invalid(name, reason string) error {
	return fmt.Errorf("%w: %s: %s", keyshape.ErrRegistry, name, reason)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
