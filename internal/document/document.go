// Package document loads the configuration documents that drive test
// generation.
//
// A document is an ordered mapping from top-level keys to JSON values.
// Nested objects decode to map[string]any, arrays to []any and numbers to
// json.Number so that they reach templates with their literal text.
//
// json.Number is a string kind, so the builtin comparison functions treat it
// as a string: compare numbers in templates after conversion, as in
// {{ if eq (int ._base) 16 }}.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"testgen/internal/config"
)

var (
	// ErrConfigParse reports a configuration file that is missing, unreadable
	// or not a valid JSON/YAML object.
	ErrConfigParse = errors.New("config parse error")

	// ErrMissingField reports a required key absent from the document.
	ErrMissingField = errors.New("missing field")
)

// Document is an ordered mapping of top-level keys to values.
type Document struct {
	keys   []string
	values map[string]any
}

// New creates an empty document
func New() *Document {
	return &Document{
		values: make(map[string]any),
	}
}

// Set stores a value. A new key is appended; an existing key keeps its
// position and takes the new value.
func (d *Document) Set(key string, value any) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	value, ok := d.values[key]
	return value, ok
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Template returns the name of the template the document asks for.
func (d *Document) Template() (string, error) {
	raw, ok := d.values[config.TemplateField]
	if !ok {
		return "", fmt.Errorf("%w: %q is required", ErrMissingField, config.TemplateField)
	}

	name, ok := raw.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", ErrMissingField, config.TemplateField)
	}

	return name, nil
}

// Map returns a shallow copy of all top-level values.
func (d *Document) Map() map[string]any {
	out := make(map[string]any, len(d.values))
	for key, value := range d.values {
		out[key] = value
	}
	return out
}

// Context returns the substitution context for a template. With no keys the
// whole document is returned; otherwise only the listed keys that are present.
func (d *Document) Context(keys ...string) map[string]any {
	if len(keys) == 0 {
		return d.Map()
	}

	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, ok := d.values[key]; ok {
			out[key] = value
		}
	}
	return out
}

// Load reads a document from disk. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfigParse, path, err)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = ParseYAML(data)
	default:
		doc, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Parse decodes a JSON object, keeping the order of its top-level keys.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty document", ErrConfigParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be a JSON object", ErrConfigParse)
	}

	doc := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrConfigParse, tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: value of %q: %w", ErrConfigParse, key, err)
		}
		doc.Set(key, value)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
		}
		return nil, fmt.Errorf("%w: unexpected data after top-level object: %v", ErrConfigParse, tok)
	}

	return doc, nil
}
