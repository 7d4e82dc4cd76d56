package keyshape_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/keyshape"
)

const (
	ninf = keyshape.NegInf
	pinf = keyshape.PosInf
)

func TestDecodeShape_Examples(t *testing.T) {
	cases := []struct {
		in   string
		want keyshape.Shape
	}{
		{"(:)", keyshape.Shape{{ninf, pinf}}},
		{"()", keyshape.Shape{}},
		{"(1,)", keyshape.Shape{{1, 1}}},
		{"(1)", keyshape.Shape{{1, 1}}},
		{"(:, 10:, 1:2, :5)", keyshape.Shape{{ninf, pinf}, {10, pinf}, {1, 2}, {ninf, 5}}},
		{"  ( 3 ,  4 )  ", keyshape.Shape{{3, 3}, {4, 4}}},
		{"(0:0)", keyshape.Shape{{0, 0}}},
	}
	for _, tc := range cases {
		got, err := keyshape.DecodeShape(tc.in)
		if err != nil {
			t.Fatalf("DecodeShape(%q): %v", tc.in, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("DecodeShape(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestDecodeShape_Malformed(t *testing.T) {
	for _, in := range []string{"", "1", "(", ")", "[1]", "(a)", "(1:2:3)", "(,)", "(1,,)", "(,1)", "(3:1)", "(-1)", "((1))", "(1.5)", "(1 2)"} {
		_, err := keyshape.DecodeShape(in)
		if !errors.Is(err, keyshape.ErrMalformedShape) {
			t.Fatalf("DecodeShape(%q): expected ErrMalformedShape, got %v", in, err)
		}
		if it := issueOf(t, err); it.Code != keyshape.CodeMalformedShape {
			t.Fatalf("DecodeShape(%q): code %q", in, it.Code)
		}
	}
}

func TestShape_StringRoundTrip(t *testing.T) {
	for _, in := range []string{"()", "(1,)", "(:)", "(:, 10:, 1:2, :5)", "(3, 3)", "(0:4,)"} {
		s := keyshape.MustDecodeShape(in)
		back, err := keyshape.DecodeShape(s.String())
		if err != nil {
			t.Fatalf("re-decode %q (%q): %v", in, s.String(), err)
		}
		if diff := cmp.Diff(s, back); diff != "" {
			t.Fatalf("round trip of %q mismatch:\n%s", in, diff)
		}
	}
	if got := keyshape.MustDecodeShape("(:, 10:, 1:2, :5)").String(); got != "(:, 10:, 1:2, :5)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestShapeOf_RegisteredDims(t *testing.T) {
	got := keyshape.ShapeOf(3, keyshape.Unbounded)
	want := keyshape.Shape{{3, 3}, {ninf, pinf}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ShapeOf mismatch:\n%s", diff)
	}
	if txt := keyshape.ShapeText(1); txt != "(1,)" {
		t.Fatalf("ShapeText(1) = %q", txt)
	}
	if txt := keyshape.ShapeText(); txt != "()" {
		t.Fatalf("ShapeText() = %q", txt)
	}
}
