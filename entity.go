package keyshape

// Entity is implemented by composite-entity instances (generated data
// containers). EntityType returns the registered type name.
type Entity interface {
	EntityType() string
}

// EntityType describes a registered composite entity type. Parent names the
// type it specializes, if any.
type EntityType struct {
	Name       string
	Parent     string
	Definition string
}
