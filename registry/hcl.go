package registry

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/reoring/keyshape"
)

// hclFile mirrors the top-level blocks of an HCL registry:
//
//	keyword "VELOCITY" {
//	  type  = "double"
//	  shape = [3]
//	}
//	entity "MATERIAL" {
//	  parent = "CUDS_COMPONENT"
//	}
type hclFile struct {
	Keywords []*hclKeyword `hcl:"keyword,block"`
	Entities []*hclEntity  `hcl:"entity,block"`
}

type hclKeyword struct {
	Name       string         `hcl:"name,label"`
	Definition string         `hcl:"definition,optional"`
	Type       string         `hcl:"type,optional"`
	Entity     string         `hcl:"entity,optional"`
	Shape      hcl.Expression `hcl:"shape,optional"`
}

type hclEntity struct {
	Name       string `hcl:"name,label"`
	Definition string `hcl:"definition,optional"`
	Parent     string `hcl:"parent,optional"`
}

// LoadHCL builds a Registry from HCL source. filename is used in
// diagnostics only.
func LoadHCL(data []byte, filename string) (*keyshape.Registry, error) {
	f, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	var root hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	doc := document{Keywords: map[string]keywordEntry{}, Entities: map[string]entityEntry{}}
	for _, e := range root.Entities {
		if _, dup := doc.Entities[e.Name]; dup {
			return nil, invalid(e.Name, "duplicate entity block")
		}
		doc.Entities[e.Name] = entityEntry{Definition: e.Definition, Parent: e.Parent}
	}
	for _, k := range root.Keywords {
		if _, dup := doc.Keywords[k.Name]; dup {
			return nil, invalid(k.Name, "duplicate keyword block")
		}
		entry := keywordEntry{Definition: k.Definition, Type: k.Type, Entity: k.Entity}
		if k.Shape != nil {
			val, diags := k.Shape.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("keyword %s: shape: %w", k.Name, diags)
			}
			if !val.IsNull() {
				shape, err := ctyShape(val)
				if err != nil {
					return nil, invalid(k.Name, err.Error())
				}
				entry.Shape, entry.HasShape = shape, true
			}
		}
		doc.Keywords[k.Name] = entry
	}
	return doc.build()
}

// ctyShape lowers an evaluated shape attribute into the generic form read by
// shapeOf: a string, a number, or a list of numbers, ":" and nulls.
func ctyShape(v cty.Value) (any, error) {
	if !v.IsKnown() {
		return nil, fmt.Errorf("shape must be a constant")
	}
	ty := v.Type()
	switch {
	case v.IsNull():
		return nil, nil
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		return ctyInt(v)
	case ty.IsTupleType() || ty.IsListType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := ctyShape(ev)
			if err != nil {
				return nil, err
			}
			if _, nested := e.([]any); nested {
				return nil, fmt.Errorf("shape lists cannot be nested")
			}
			out = append(out, e)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported shape type %s", ty.FriendlyName())
}

func ctyInt(v cty.Value) (any, error) {
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return nil, fmt.Errorf("dimension %s is not an integer", bf.Text('g', -1))
	}
	i, _ := bf.Int64()
	return i, nil
}
