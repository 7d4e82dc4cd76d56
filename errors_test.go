package keyshape_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/reoring/keyshape"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := keyshape.Issues{
		{Path: "/1", Keyword: "VELOCITY", Code: keyshape.CodeShapeMismatch, Message: "declared (3,), got (2,)"},
		{Path: "/", Code: keyshape.CodeInvalidType},
		{Path: "/2", Code: keyshape.CodeOverflow},
		{Path: "/3", Code: keyshape.CodeOverflow},
	}
	got := iss.Error()
	if !strings.HasPrefix(got, "shape_mismatch at /1 (VELOCITY): declared (3,), got (2,); invalid_type at /") {
		t.Fatalf("unexpected summary %q", got)
	}
	if !strings.HasSuffix(got, "... (total 4)") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	if keyshape.Issues(nil).Error() != "" {
		t.Fatalf("empty issues should render empty")
	}
}

func TestIssues_IsMatchesKinds(t *testing.T) {
	cases := map[string]error{
		keyshape.CodeMalformedShape: keyshape.ErrMalformedShape,
		keyshape.CodeShapeMismatch:  keyshape.ErrShapeMismatch,
		keyshape.CodeNotInstance:    keyshape.ErrTypeMismatch,
		keyshape.CodeNotIterable:    keyshape.ErrTypeMismatch,
		keyshape.CodeOverflow:       keyshape.ErrValueLoss,
		keyshape.CodeDuplicateKey:   keyshape.ErrRegistry,
		keyshape.CodeUnknownKeyword: keyshape.ErrUnknownKeyword,
	}
	for code, kind := range cases {
		var err error = keyshape.Issues{{Code: code}}
		if !errors.Is(err, kind) {
			t.Fatalf("%s should match %v", code, kind)
		}
		wrapped := fmt.Errorf("loading: %w", err)
		if !errors.Is(wrapped, kind) {
			t.Fatalf("wrapped %s should match %v", code, kind)
		}
	}
	if errors.Is(keyshape.Issues{{Code: keyshape.CodeOverflow}}, keyshape.ErrTypeMismatch) {
		t.Fatalf("overflow must not be a type error")
	}
}

func TestIssues_UnwrapCauses(t *testing.T) {
	err := keyshape.Issues{{Code: keyshape.CodeInvalidValue, Cause: io.ErrUnexpectedEOF}}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("cause should be reachable through errors.Is")
	}
}

func TestAsIssues(t *testing.T) {
	if _, ok := keyshape.AsIssues(nil); ok {
		t.Fatalf("nil is not Issues")
	}
	if _, ok := keyshape.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain error is not Issues")
	}
	_, err := keyshape.DecodeShape("(")
	iss, ok := keyshape.AsIssues(fmt.Errorf("ctx: %w", err))
	if !ok || len(iss) != 1 || iss[0].Message == "" {
		t.Fatalf("expected one translated issue, got %#v", iss)
	}
	if got := keyshape.AppendIssues(nil, keyshape.Issue{Code: "x"}); len(got) != 1 {
		t.Fatalf("AppendIssues on nil: %#v", got)
	}
}
