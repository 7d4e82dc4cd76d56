// Package store provides an attribute container that casts and validates
// every value against a keyword registry before committing it.
package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reoring/keyshape"
)

// Container is a keyword-keyed attribute store for one entity instance. It
// implements keyshape.Entity so containers can be stored in each other.
type Container struct {
	id       uuid.UUID
	typeName string
	v        *keyshape.Validator
	c        *keyshape.Caster
	logger   *zap.Logger

	mu    sync.RWMutex
	attrs map[string]any
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for commit traces.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithID fixes the container identity instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(c *Container) { c.id = id }
}

// New returns an empty container of the given entity type. v and c must read
// from the same registry.
func New(v *keyshape.Validator, c *keyshape.Caster, typeName string, opts ...Option) *Container {
	ct := &Container{
		id:       uuid.New(),
		typeName: keyshape.NormalizeKey(typeName),
		v:        v,
		c:        c,
		logger:   zap.NewNop(),
		attrs:    map[string]any{},
	}
	for _, o := range opts {
		o(ct)
	}
	return ct
}

// ID returns the container identity.
func (ct *Container) ID() uuid.UUID { return ct.id }

// EntityType implements keyshape.Entity.
func (ct *Container) EntityType() string { return ct.typeName }

// Set casts value to key's dtype, validates it and commits it. On error the
// previous value is kept.
func (ct *Container) Set(key string, value any) (keyshape.Result, error) {
	cast, err := ct.c.Cast(value, key)
	if err != nil {
		return keyshape.Result{}, err
	}
	res, err := ct.v.ValidateKeyword(cast, key)
	if err != nil {
		return res, err
	}
	ct.commit(key, cast)
	return res, nil
}

// SetList commits a collection of key values laid out by explicit, for
// example (:) for a list of materials.
func (ct *Container) SetList(key string, explicit keyshape.Shape, value any) (keyshape.Result, error) {
	cast, err := ct.c.Cast(value, key)
	if err != nil {
		return keyshape.Result{}, err
	}
	res, err := ct.v.ValidateComposite(cast, explicit, key)
	if err != nil {
		return res, err
	}
	ct.commit(key, cast)
	return res, nil
}

func (ct *Container) commit(key string, value any) {
	name := keyshape.NormalizeKey(key)
	ct.mu.Lock()
	ct.attrs[name] = value
	ct.mu.Unlock()
	ct.logger.Debug("attribute committed",
		zap.Stringer("id", ct.id),
		zap.String("entity", ct.typeName),
		zap.String("keyword", name))
}

// Get returns the committed value for key.
func (ct *Container) Get(key string) (any, bool) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	v, ok := ct.attrs[keyshape.NormalizeKey(key)]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (ct *Container) Delete(key string) bool {
	name := keyshape.NormalizeKey(key)
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if _, ok := ct.attrs[name]; !ok {
		return false
	}
	delete(ct.attrs, name)
	return true
}

// Keys returns the committed keyword names in sorted order.
func (ct *Container) Keys() []string {
	ct.mu.RLock()
	keys := make([]string, 0, len(ct.attrs))
	for k := range ct.attrs {
		keys = append(keys, k)
	}
	ct.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of committed attributes.
func (ct *Container) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.attrs)
}
