package keyshape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/keyshape/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMalformedShape = "malformed_shape"
	CodeShapeMismatch  = "shape_mismatch"
	CodeInvalidType    = "invalid_type"
	CodeNotInstance    = "not_instance"
	CodeNotIterable    = "not_iterable"
	CodeOverflow       = "overflow"
	CodeInvalidValue   = "invalid_value"
	// Advisories (accepted, but worth surfacing)
	CodeUnknownKeyword     = "unknown_keyword"
	CodeStringShapeSkipped = "string_shape_skipped"
	// Registry construction
	CodeDuplicateKey    = "duplicate_key"
	CodeRegistryInvalid = "registry_invalid"
)

// Error kinds matched with errors.Is against any error returned by this package.
var (
	ErrMalformedShape = errors.New("keyshape: malformed shape spec")
	ErrShapeMismatch  = errors.New("keyshape: shape mismatch")
	ErrTypeMismatch   = errors.New("keyshape: type error")
	ErrValueLoss      = errors.New("keyshape: value error")
	ErrRegistry       = errors.New("keyshape: invalid registry")
	ErrUnknownKeyword = errors.New("keyshape: unknown keyword")
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Error Severity = iota
	Warn
)

func (s Severity) String() string {
	if s == Warn {
		return "warn"
	}
	return "error"
}

// Issue represents a single validation entry.
type Issue struct {
	Path     string // JSON Pointer into the candidate value (for example: /2/0).
	Keyword  string // Normalized keyword name, when known.
	Code     string // One of the codes listed above.
	Message  string
	Severity Severity
	Cause    error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"declared":"(3,)", "actual":"(2,)"})
	// for i18n and observability.
	Params map[string]any
}

// Kind returns the sentinel error kind for the issue code.
func (it Issue) Kind() error {
	switch it.Code {
	case CodeMalformedShape:
		return ErrMalformedShape
	case CodeShapeMismatch:
		return ErrShapeMismatch
	case CodeInvalidType, CodeNotInstance, CodeNotIterable:
		return ErrTypeMismatch
	case CodeOverflow, CodeInvalidValue:
		return ErrValueLoss
	case CodeDuplicateKey, CodeRegistryInvalid:
		return ErrRegistry
	case CodeUnknownKeyword:
		return ErrUnknownKeyword
	}
	return nil
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. shape_mismatch at /1 (VELOCITY): declared (3,), got (2,)
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Keyword != "" {
			fmt.Fprintf(b, " (%s)", it.Keyword)
		}
		if it.Message != "" {
			b.WriteString(": ")
			b.WriteString(it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue belongs to the target error kind.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if k := it.Kind(); k != nil && k == target {
			return true
		}
	}
	return false
}

// Unwrap exposes the issue causes to errors.Is/errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// newIssue builds an error-severity issue with a translated message.
func newIssue(code string, params map[string]any) Issue {
	return Issue{Path: "/", Code: code, Message: i18n.T(code, stringParams(params)), Params: params}
}

func fail(code string, params map[string]any) error {
	return Issues{newIssue(code, params)}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// withContext rewrites issues in err so they carry the keyword and a path
// prefixed by p. Errors that are not Issues are wrapped into one.
func withContext(err error, p PathRef, keyword string) error {
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: p.Pointer(), Keyword: keyword, Code: CodeInvalidValue, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = p.Join(it.Path)
		if it.Keyword == "" {
			it.Keyword = keyword
		}
		out[i] = it
	}
	return out
}
