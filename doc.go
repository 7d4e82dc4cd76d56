// Package keyshape provides:
//
// - A compact shape grammar ("(:, 10:, 1:2, :5)") decoded into per-dimension bounds
// - Structural shape checks of scalar and nested-sequence values against those bounds
// - Keyword validation against an immutable Registry of primitive and entity keywords
// - Same-kind casting of values to a keyword's declared dtype via an explicit cast table
// - A stable error model via Issues (JSON Pointer, code, message, params)
//
// Design policy:
// - Keep the public API in the root package; loaders live under registry/, value
//   decoding under source/, the attribute container under store/ and the CLI under
//   cmd/keyshape.
// - The Registry is passed explicitly; there is no process-global lookup.
// - Validation never mutates its input; Cast returns new values.
//
// Typical usage:
//
//	reg, err := registry.LoadFile("keywords.yaml")
//	val := keyshape.NewValidator(reg, keyshape.WithLogger(logger))
//	cst := keyshape.NewCaster(reg)
//
//	v, err := cst.Cast([]any{1, 2, 3}, "CUBA.VELOCITY")
//	res, err := val.ValidateKeyword(v, "CUBA.VELOCITY")
//	if res.Outcome == keyshape.AcceptedWithAdvisory { ... }
package keyshape
