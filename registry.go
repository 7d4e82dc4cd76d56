package keyshape

import (
	"reflect"
	"sort"
	"strings"
)

// KeywordKind is the closed set of keyword variants: PrimitiveKind or
// EntityKind. Switch on it exhaustively.
type KeywordKind interface {
	keywordKind()
}

// PrimitiveKind declares primitive data with a dtype and a shape.
type PrimitiveKind struct {
	DType DType
	// Dims is the registered shape. ShapeText, when set, takes precedence and
	// carries the full grammar (for example "(:, 3)" or "(1:4,)").
	Dims      []Dim
	ShapeText string
}

// EntityKind declares a reference to a composite entity type.
type EntityKind struct {
	Type string
}

func (PrimitiveKind) keywordKind() {}
func (EntityKind) keywordKind()    {}

// Shape decodes the registered shape.
func (p PrimitiveKind) Shape() (Shape, error) {
	if p.ShapeText != "" {
		return DecodeShape(p.ShapeText)
	}
	return DecodeShape(ShapeText(p.Dims...))
}

// Keyword is a registered schema attribute.
type Keyword struct {
	Name       string
	Definition string
	Kind       KeywordKind
}

// DType returns the keyword dtype; entity keywords report DTypeNone.
func (k Keyword) DType() DType {
	if p, ok := k.Kind.(PrimitiveKind); ok {
		return p.DType
	}
	return DTypeNone
}

// Shape returns the registered shape of the keyword. An entity keyword holds
// a single instance, so its shape is (1,).
func (k Keyword) Shape() (Shape, error) {
	switch kk := k.Kind.(type) {
	case PrimitiveKind:
		return kk.Shape()
	case EntityKind:
		return Shape{Exact(1)}, nil
	}
	return Shape{}, nil
}

// NormalizeKey strips a namespace prefix (anything up to the last '.' or
// ':') and upper-cases the remainder.
func NormalizeKey(key string) string {
	k := strings.TrimSpace(key)
	if i := strings.LastIndexAny(k, ".:"); i >= 0 {
		k = k[i+1:]
	}
	return strings.ToUpper(k)
}

// Registry is an immutable keyword and entity-type registry. Build one with
// NewBuilder; a built Registry is safe for concurrent readers.
type Registry struct {
	keywords map[string]Keyword
	types    map[string]EntityType
}

// Lookup resolves a keyword by (possibly namespaced) name.
func (r *Registry) Lookup(name string) (Keyword, bool) {
	if r == nil {
		return Keyword{}, false
	}
	k, ok := r.keywords[NormalizeKey(name)]
	return k, ok
}

// LookupType resolves an entity type by (possibly namespaced) name.
func (r *Registry) LookupType(name string) (EntityType, bool) {
	if r == nil {
		return EntityType{}, false
	}
	t, ok := r.types[NormalizeKey(name)]
	return t, ok
}

// IsInstance reports whether v is an Entity of typeName or of a type that
// descends from it.
func (r *Registry) IsInstance(v any, typeName string) bool {
	e, ok := v.(Entity)
	if !ok || e == nil {
		return false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false
	}
	want := NormalizeKey(typeName)
	cur := NormalizeKey(e.EntityType())
	// Build rejects parent cycles, so the walk terminates.
	for cur != "" {
		if cur == want {
			return true
		}
		t, ok := r.types[cur]
		if !ok {
			return false
		}
		cur = NormalizeKey(t.Parent)
	}
	return false
}

// Keywords returns the keywords sorted by name.
func (r *Registry) Keywords() []Keyword {
	out := make([]Keyword, 0, len(r.keywords))
	for _, k := range r.keywords {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EntityTypes returns the entity types sorted by name.
func (r *Registry) EntityTypes() []EntityType {
	out := make([]EntityType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Builder accumulates registry entries; Build validates and freezes them.
type Builder struct {
	keywords []Keyword
	types    []EntityType
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddKeyword queues a keyword. Names are normalized on Build.
func (b *Builder) AddKeyword(k Keyword) *Builder {
	b.keywords = append(b.keywords, k)
	return b
}

// Primitive is shorthand for AddKeyword with a PrimitiveKind.
func (b *Builder) Primitive(name string, d DType, dims ...Dim) *Builder {
	return b.AddKeyword(Keyword{Name: name, Kind: PrimitiveKind{DType: d, Dims: dims}})
}

// EntityRef is shorthand for AddKeyword with an EntityKind.
func (b *Builder) EntityRef(name, typeName string) *Builder {
	return b.AddKeyword(Keyword{Name: name, Kind: EntityKind{Type: typeName}})
}

// AddEntityType queues an entity type.
func (b *Builder) AddEntityType(t EntityType) *Builder {
	b.types = append(b.types, t)
	return b
}

// Build validates the queued entries and returns an immutable Registry.
// All problems are reported together.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		keywords: make(map[string]Keyword, len(b.keywords)),
		types:    make(map[string]EntityType, len(b.types)),
	}
	var iss Issues
	for _, t := range b.types {
		t.Name = NormalizeKey(t.Name)
		if t.Parent != "" {
			t.Parent = NormalizeKey(t.Parent)
		}
		if t.Name == "" {
			iss = append(iss, registryIssue(CodeRegistryInvalid, "", "empty entity type name"))
			continue
		}
		if _, dup := r.types[t.Name]; dup {
			iss = append(iss, registryIssue(CodeDuplicateKey, t.Name, ""))
			continue
		}
		r.types[t.Name] = t
	}
	for _, t := range r.types {
		if t.Parent == "" {
			continue
		}
		if _, ok := r.types[t.Parent]; !ok {
			iss = append(iss, registryIssue(CodeRegistryInvalid, t.Name, "unknown parent "+t.Parent))
			continue
		}
		if hasParentCycle(r.types, t.Name) {
			iss = append(iss, registryIssue(CodeRegistryInvalid, t.Name, "parent cycle"))
		}
	}
	for _, k := range b.keywords {
		k.Name = NormalizeKey(k.Name)
		if k.Name == "" {
			iss = append(iss, registryIssue(CodeRegistryInvalid, "", "empty keyword name"))
			continue
		}
		if _, dup := r.keywords[k.Name]; dup {
			iss = append(iss, registryIssue(CodeDuplicateKey, k.Name, ""))
			continue
		}
		switch kk := k.Kind.(type) {
		case PrimitiveKind:
			if kk.DType == DTypeNone {
				iss = append(iss, registryIssue(CodeRegistryInvalid, k.Name, "primitive keyword without dtype"))
				continue
			}
			if !validDims(kk.Dims) {
				iss = append(iss, registryIssue(CodeRegistryInvalid, k.Name, "dimension sizes must be positive"))
				continue
			}
			if _, err := kk.Shape(); err != nil {
				iss = append(iss, registryIssue(CodeRegistryInvalid, k.Name, err.Error()))
				continue
			}
		case EntityKind:
			kk.Type = NormalizeKey(kk.Type)
			if _, ok := r.types[kk.Type]; !ok {
				iss = append(iss, registryIssue(CodeRegistryInvalid, k.Name, "unknown entity type "+kk.Type))
				continue
			}
			k.Kind = kk
		default:
			iss = append(iss, registryIssue(CodeRegistryInvalid, k.Name, "missing keyword kind"))
			continue
		}
		r.keywords[k.Name] = k
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return r, nil
}

func validDims(dims []Dim) bool {
	for _, d := range dims {
		if d != Unbounded && d <= 0 {
			return false
		}
	}
	return true
}

func hasParentCycle(types map[string]EntityType, start string) bool {
	seen := map[string]bool{}
	for cur := start; cur != ""; cur = types[cur].Parent {
		if seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}

func registryIssue(code, name, reason string) Issue {
	it := newIssue(code, map[string]any{"name": name, "key": name, "reason": reason})
	it.Keyword = name
	return it
}
