package keyshape

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths into nested candidate values in a
// chain-safe way. The zero value is the root.
type PathRef struct {
	parts []string
}

// Root returns the root path.
func Root() PathRef { return PathRef{} }

// Index returns a child path for the i-th sequence element.
func (p PathRef) Index(i int) PathRef {
	return PathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Field returns a child path for a named member.
func (p PathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return PathRef{parts: append(append([]string{}, p.parts...), esc)}
}

// Depth returns the number of segments.
func (p PathRef) Depth() int { return len(p.parts) }

// Pointer renders the path as a JSON Pointer ("/" for the root).
func (p PathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Join appends a pointer relative to p.
func (p PathRef) Join(ptr string) string {
	if ptr == "" || ptr == "/" {
		return p.Pointer()
	}
	if len(p.parts) == 0 {
		return ptr
	}
	return p.Pointer() + ptr
}

// Issue creates an error-severity Issue at this path.
func (p PathRef) Issue(code string, params map[string]any) Issue {
	it := newIssue(code, params)
	it.Path = p.Pointer()
	return it
}
