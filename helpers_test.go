package keyshape_test

import (
	"testing"

	"github.com/reoring/keyshape"
)

type material struct{ name string }

func (material) EntityType() string { return "MATERIAL" }

type fluidMaterial struct{}

func (*fluidMaterial) EntityType() string { return "FLUID_MATERIAL" }

type atom struct{}

func (atom) EntityType() string { return "CUBA.ATOM" }

func testRegistry(t *testing.T) *keyshape.Registry {
	t.Helper()
	reg, err := keyshape.NewBuilder().
		AddEntityType(keyshape.EntityType{Name: "CUDS_COMPONENT"}).
		AddEntityType(keyshape.EntityType{Name: "material", Parent: "CUDS_COMPONENT"}).
		AddEntityType(keyshape.EntityType{Name: "FLUID_MATERIAL", Parent: "MATERIAL"}).
		AddEntityType(keyshape.EntityType{Name: "ATOM", Parent: "CUDS_COMPONENT"}).
		Primitive("VELOCITY", keyshape.DTypeFloat64, 3).
		Primitive("MASS", keyshape.DTypeFloat64, 1).
		Primitive("NAME", keyshape.DTypeString, 1).
		Primitive("COUNT", keyshape.DTypeInt32, 1).
		Primitive("INDEX", keyshape.DTypeUint8, 1).
		Primitive("SCALE", keyshape.DTypeFloat32, 1).
		Primitive("FLAGS", keyshape.DTypeBool, keyshape.Unbounded).
		AddKeyword(keyshape.Keyword{Name: "POSITIONS", Kind: keyshape.PrimitiveKind{DType: keyshape.DTypeFloat64, ShapeText: "(:, 3)"}}).
		EntityRef("MATERIAL_REF", "material").
		Build()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func issueOf(t *testing.T, err error) keyshape.Issue {
	t.Helper()
	iss, ok := keyshape.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	return iss[0]
}
