package source_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/reoring/keyshape/source"
)

func TestJSON_KeepsNumberLiterals(t *testing.T) {
	v, err := source.JSON([]byte(`{"v": [1, 2.5, "x", null, true]}`))
	require.NoError(t, err)
	want := map[string]any{"v": []any{json.Number("1"), json.Number("2.5"), "x", nil, true}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_Errors(t *testing.T) {
	for _, in := range []string{``, `[1,`, `1 2`, `{"a":1} x`} {
		_, err := source.JSON([]byte(in))
		require.Error(t, err, "input %q", in)
	}
}

func TestYAML_Scalars(t *testing.T) {
	v, err := source.YAML([]byte("a: 1\nb: 2.5\nc: true\nd: ~\ne: '7'\nf: .inf\ng: 18446744073709551615\nh: [1, x]\n"))
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(1), m["a"])
	require.Equal(t, 2.5, m["b"])
	require.Equal(t, true, m["c"])
	require.Nil(t, m["d"])
	require.Equal(t, "7", m["e"])
	require.True(t, math.IsInf(m["f"].(float64), 1))
	require.Equal(t, uint64(math.MaxUint64), m["g"])
	require.Equal(t, []any{int64(1), "x"}, m["h"])
}

func TestYAML_DuplicateKey(t *testing.T) {
	_, err := source.YAML([]byte("keywords:\n  MASS: {}\n  MASS: {}\n"))
	var de *source.DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateKeyError, got %T %v", err, err)
	}
	if de.Key != "MASS" || de.FirstLine != 2 || de.Line != 3 {
		t.Fatalf("unexpected positions %+v", de)
	}
}

func TestYAML_DocumentCount(t *testing.T) {
	v, err := source.YAML(nil)
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = source.YAML([]byte("a: 1\n---\nb: 2\n"))
	require.Error(t, err)
}

func TestYAMLReader_Aliases(t *testing.T) {
	v, err := source.YAML([]byte("base: &b [1, 2]\ncopy: *b\n"))
	require.NoError(t, err)
	m := v.(map[string]any)
	require.Equal(t, m["base"], m["copy"])
}

func TestJSON_DuplicateKey(t *testing.T) {
	_, err := source.JSON([]byte(`{"keywords": {"MASS": {}, "a/b": {"x": 1, "x": 2}}}`))
	var de *source.DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateKeyError, got %T %v", err, err)
	}
	if de.Key != "x" || de.Path != "/keywords/a~1b" {
		t.Fatalf("unexpected duplicate %+v", de)
	}

	v, err := source.JSON([]byte(`[{"a": 1}, {"a": 2}]`))
	require.NoError(t, err)
	require.Len(t, v, 2)
}
