package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/keyshape"
	"github.com/reoring/keyshape/i18n"
)

const registryYAML = `
keywords:
  VELOCITY: {type: double, shape: [3]}
  COUNT: {type: int8}
  NAME: {type: string}
  MATERIAL_REF: {entity: MATERIAL}
entities:
  MATERIAL: {}
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() { i18n.SetTranslator(nil) })
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0o600))
	return path
}

func TestDecodeShape(t *testing.T) {
	out, _, err := run(t, "decode-shape", "(:, 3, 1:)")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "(:, 3, 1:)\n"), out)
	require.Contains(t, out, `"min": 3`)
	require.Contains(t, out, `"max": null`)

	_, _, err = run(t, "decode-shape", "(3:1)")
	require.ErrorIs(t, err, keyshape.ErrMalformedShape)
}

func TestCheckShape(t *testing.T) {
	out, _, err := run(t, "check-shape", "(:, 3)", "[[1,2,3],[4,5,6]]")
	require.NoError(t, err)
	require.Equal(t, "ok (2, 3)\n", out)

	_, _, err = run(t, "check-shape", "(2,)", "[1,2,3]")
	require.ErrorIs(t, err, keyshape.ErrShapeMismatch)

	out, _, err = run(t, "check-shape", "--yaml", "(1,)", "[4]")
	require.NoError(t, err)
	require.Equal(t, "ok (1,)\n", out)
}

func TestValidate(t *testing.T) {
	reg := writeRegistry(t)

	out, _, err := run(t, "validate", "--registry", reg, "cuba.velocity", "[1, 2.5, 3]")
	require.NoError(t, err)
	require.Equal(t, "accepted\n", out)

	_, _, err = run(t, "validate", "--registry", reg, "VELOCITY", "[1, 2]")
	require.ErrorIs(t, err, keyshape.ErrShapeMismatch)

	_, _, err = run(t, "validate", "--registry", reg, "COUNT", "2.5")
	require.ErrorIs(t, err, keyshape.ErrTypeMismatch)

	out, errOut, err := run(t, "validate", "--registry", reg, "COLOR", `"red"`)
	require.NoError(t, err)
	require.Equal(t, "accepted_with_advisory\n", out)
	require.Contains(t, errOut, "unknown_keyword")

	_, _, err = run(t, "validate", "--registry", reg, "--strict", "COLOR", `"red"`)
	require.ErrorIs(t, err, keyshape.ErrUnknownKeyword)

	out, _, err = run(t, "validate", "--registry", reg, "--shape", "(:)", "VELOCITY", "[[1,2,3],[4,5,6]]")
	require.NoError(t, err)
	require.Equal(t, "accepted\n", out)

	_, _, err = run(t, "validate", "VELOCITY", "[1,2,3]")
	require.Error(t, err)
}

func TestValidate_JapaneseMessages(t *testing.T) {
	reg := writeRegistry(t)
	_, _, err := run(t, "validate", "--registry", reg, "--lang", "ja", "VELOCITY", "[1, 2]")
	require.Error(t, err)
	iss, ok := keyshape.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, "形状が一致しません (宣言 (3,), 実際 (2,))", iss[0].Message)
}

func TestCast(t *testing.T) {
	reg := writeRegistry(t)

	out, _, err := run(t, "cast", "--registry", reg, "VELOCITY", "[1, 2, 3]")
	require.NoError(t, err)
	require.JSONEq(t, "[1, 2, 3]", out)

	out, _, err = run(t, "cast", "--registry", reg, "NAME", "12")
	require.NoError(t, err)
	require.JSONEq(t, `"12"`, out)

	_, _, err = run(t, "cast", "--registry", reg, "COUNT", "300")
	require.ErrorIs(t, err, keyshape.ErrValueLoss)
}

func TestSchema(t *testing.T) {
	reg := writeRegistry(t)
	out, _, err := run(t, "schema", "--registry", reg)
	require.NoError(t, err)
	require.Contains(t, out, `"$ref": "#/$defs/MATERIAL"`)
	require.Contains(t, out, `"VELOCITY"`)
}
