package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/keyshape"
	"github.com/reoring/keyshape/source"
)

// LoadYAML builds a Registry from a YAML document. Duplicate keys are
// rejected with a *source.DuplicateKeyError.
func LoadYAML(data []byte) (*keyshape.Registry, error) {
	tree, err := source.YAML(data)
	if err != nil {
		return nil, err
	}
	return loadTree(tree)
}

// LoadJSON builds a Registry from a JSON document with the same layout as
// the YAML one.
func LoadJSON(data []byte) (*keyshape.Registry, error) {
	tree, err := source.JSON(data)
	if err != nil {
		return nil, err
	}
	return loadTree(tree)
}

func loadTree(tree any) (*keyshape.Registry, error) {
	doc, err := fromTree(tree)
	if err != nil {
		return nil, err
	}
	return doc.build()
}

// LoadFile reads path and dispatches on its extension: .yaml/.yml, .json or
// .hcl.
func LoadFile(path string) (*keyshape.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	var reg *keyshape.Registry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		reg, err = LoadYAML(data)
	case ".json":
		reg, err = LoadJSON(data)
	case ".hcl":
		reg, err = LoadHCL(data, path)
	default:
		return nil, fmt.Errorf("registry: unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("registry: load %s: %w", path, err)
	}
	return reg, nil
}
