package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/keyshape"
	"github.com/reoring/keyshape/registry"
	"github.com/reoring/keyshape/source"
)

const yamlDoc = `
keywords:
  VELOCITY: {definition: "Velocity of the point", type: double, shape: [3]}
  POSITIONS: {type: float64, shape: "(:, 3)"}
  FLAGS: {type: bool, shape: [":", 2]}
  GRID: {type: int32, shape: [null, 4]}
  MASS: {type: float}
  ANY: {type: str, shape: []}
  MATERIAL_REF: {entity: material}
entities:
  CUDS_COMPONENT: {definition: "Base of all components"}
  MATERIAL: {parent: CUDS_COMPONENT}
`

const jsonDoc = `{
  "keywords": {
    "VELOCITY": {"type": "double", "shape": [3]},
    "POSITIONS": {"type": "float64", "shape": "(:, 3)"},
    "FLAGS": {"type": "bool", "shape": [":", 2]},
    "GRID": {"type": "int32", "shape": [null, 4]},
    "MASS": {"type": "float"},
    "ANY": {"type": "str", "shape": []},
    "MATERIAL_REF": {"entity": "material"}
  },
  "entities": {
    "CUDS_COMPONENT": {},
    "MATERIAL": {"parent": "CUDS_COMPONENT"}
  }
}`

const hclDoc = `
keyword "VELOCITY" {
  definition = "Velocity of the point"
  type       = "double"
  shape      = [3]
}
keyword "POSITIONS" {
  type  = "float64"
  shape = "(:, 3)"
}
keyword "FLAGS" {
  type  = "bool"
  shape = [":", 2]
}
keyword "GRID" {
  type  = "int32"
  shape = [null, 4]
}
keyword "MASS" {
  type = "float"
}
keyword "ANY" {
  type  = "str"
  shape = []
}
keyword "MATERIAL_REF" {
  entity = "material"
}
entity "CUDS_COMPONENT" {}
entity "MATERIAL" {
  parent = "CUDS_COMPONENT"
}
`

func requireSampleRegistry(t *testing.T, reg *keyshape.Registry) {
	t.Helper()
	shapes := map[string]string{
		"VELOCITY":  "(3,)",
		"POSITIONS": "(:, 3)",
		"FLAGS":     "(:, 2)",
		"GRID":      "(:, 4)",
		"MASS":      "(1,)",
		"ANY":       "()",
	}
	for name, want := range shapes {
		kw, ok := reg.Lookup(name)
		require.True(t, ok, name)
		s, err := kw.Shape()
		require.NoError(t, err)
		require.Equal(t, want, s.String(), name)
	}
	v, _ := reg.Lookup("VELOCITY")
	require.Equal(t, keyshape.DTypeFloat64, v.DType())
	g, _ := reg.Lookup("GRID")
	require.Equal(t, keyshape.DTypeInt32, g.DType())

	ref, ok := reg.Lookup("MATERIAL_REF")
	require.True(t, ok)
	require.Equal(t, keyshape.EntityKind{Type: "MATERIAL"}, ref.Kind)
	mat, ok := reg.LookupType("material")
	require.True(t, ok)
	require.Equal(t, "CUDS_COMPONENT", mat.Parent)
}

func TestLoadYAML(t *testing.T) {
	reg, err := registry.LoadYAML([]byte(yamlDoc))
	require.NoError(t, err)
	requireSampleRegistry(t, reg)
	kw, _ := reg.Lookup("VELOCITY")
	require.Equal(t, "Velocity of the point", kw.Definition)
}

func TestLoadJSON(t *testing.T) {
	reg, err := registry.LoadJSON([]byte(jsonDoc))
	require.NoError(t, err)
	requireSampleRegistry(t, reg)
}

func TestLoadHCL(t *testing.T) {
	reg, err := registry.LoadHCL([]byte(hclDoc), "sample.hcl")
	require.NoError(t, err)
	requireSampleRegistry(t, reg)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown section":   "types: {}\n",
		"unknown field":     "keywords:\n  MASS: {type: float, unit: kg}\n",
		"negative size":     "keywords:\n  MASS: {type: float, shape: [-1]}\n",
		"fractional size":   "keywords:\n  MASS: {type: float, shape: [1.5]}\n",
		"bad grammar":       "keywords:\n  MASS: {type: float, shape: \"(3:1)\"}\n",
		"unknown dtype":     "keywords:\n  MASS: {type: quaternion}\n",
		"missing dtype":     "keywords:\n  MASS: {definition: mass}\n",
		"typed entity":      "keywords:\n  REF: {type: float, entity: A}\nentities:\n  A: {}\n",
		"unknown entity":    "keywords:\n  REF: {entity: A}\n",
		"unknown parent":    "entities:\n  A: {parent: B}\n",
		"non-mapping root":  "- a\n- b\n",
		"non-string type":   "keywords:\n  MASS: {type: 5}\n",
		"case-folded dupes": "keywords:\n  mass: {type: float}\n  MASS: {type: float}\n",
	}
	for name, doc := range cases {
		_, err := registry.LoadYAML([]byte(doc))
		require.ErrorIs(t, err, keyshape.ErrRegistry, name)
	}
}

func TestLoadYAML_DuplicateKey(t *testing.T) {
	_, err := registry.LoadYAML([]byte("keywords:\n  MASS: {type: float}\n  MASS: {type: double}\n"))
	var de *source.DuplicateKeyError
	require.True(t, errors.As(err, &de), "got %v", err)
	require.Equal(t, "MASS", de.Key)
}

func TestLoadHCL_Rejects(t *testing.T) {
	cases := map[string]string{
		"syntax":         `keyword "A" {`,
		"unknown attr":   `keyword "A" { unit = "kg" }`,
		"nested shape":   `keyword "A" { type = "int8" shape = [[1]] }`,
		"bool shape":     `keyword "A" { type = "int8" shape = true }`,
		"fraction shape": `keyword "A" { type = "int8" shape = [2.5] }`,
		"duplicate":      "keyword \"A\" { type = \"int8\" }\nkeyword \"A\" { type = \"int8\" }\n",
	}
	for name, doc := range cases {
		_, err := registry.LoadHCL([]byte(doc), "bad.hcl")
		require.Error(t, err, name)
	}
}

func TestLoadFile_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	for name, doc := range map[string]string{"reg.yaml": yamlDoc, "reg.json": jsonDoc, "reg.hcl": hclDoc} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
		reg, err := registry.LoadFile(path)
		require.NoError(t, err, name)
		requireSampleRegistry(t, reg)
	}

	path := filepath.Join(dir, "reg.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))
	_, err := registry.LoadFile(path)
	require.Error(t, err)

	_, err = registry.LoadFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadJSON_DuplicateKey(t *testing.T) {
	_, err := registry.LoadJSON([]byte(`{"keywords": {"MASS": {"type": "float"}, "MASS": {"type": "double"}}}`))
	var de *source.DuplicateKeyError
	require.True(t, errors.As(err, &de), "got %v", err)
	require.Equal(t, "/keywords", de.Path)
}
