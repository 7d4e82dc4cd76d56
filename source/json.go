// Package source decodes candidate values and registry documents from JSON
// and YAML into plain Go values (map[string]any, []any and scalars).
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// JSON decodes a single JSON value. Numbers are kept as json.Number so that
// integer literals stay integers when cast. Duplicate object keys are
// rejected with a *DuplicateKeyError.
func JSON(data []byte) (any, error) { return DecodeJSON(bytes.NewReader(data)) }

// DecodeJSON reads exactly one JSON value from r.
func DecodeJSON(r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &jsonTree{dec: dec}
	v, err := d.value(nil)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("source: decode json: unexpected data after top-level value")
	}
	return v, nil
}

// jsonTree builds values from the decoder's token stream so that object keys
// can be checked for duplicates before the map drops them.
type jsonTree struct {
	dec *j.Decoder
}

func (d *jsonTree) value(path []string) (any, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(j.Delim); ok {
		switch delim {
		case '{':
			return d.object(path)
		case '[':
			return d.array(path)
		}
		return nil, fmt.Errorf("unexpected %q", rune(delim))
	}
	return tok, nil
}

func (d *jsonTree) object(path []string) (any, error) {
	m := map[string]any{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		if _, dup := m[key]; dup {
			return nil, &DuplicateKeyError{Key: key, Path: pointer(path)}
		}
		v, err := d.value(append(path, key))
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
	// closing brace
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *jsonTree) array(path []string) (any, error) {
	arr := []any{}
	for d.dec.More() {
		v, err := d.value(append(path, strconv.Itoa(len(arr))))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func pointer(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, p := range path {
		b.WriteByte('/')
		b.WriteString(strings.NewReplacer("~", "~0", "/", "~1").Replace(p))
	}
	return b.String()
}
