// Package mapping translates loosely structured VanillaSoft webhook JSON into
// the fixed column set of the persistence models.
//
// The vendor is inconsistent: payloads are sometimes wrapped in a "contact"
// envelope and sometimes not, several keys are misspelled, and casing varies
// between releases. All of that tolerance lives here as data (envelope keys
// and per-column candidate key lists) rather than as conditionals scattered
// through handlers.
package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrNotObject is returned by Decode when the body is valid JSON but not an
// object (e.g. an array or a bare string).
var ErrNotObject = errors.New("payload must be a JSON object")

// EnvelopeKeys lists the wrapper keys VanillaSoft may nest the real record
// under. The first key holding a JSON object wins.
var EnvelopeKeys = []string{"contact"}

// Payload is a decoded webhook body. Numbers are kept as json.Number so the
// exact text the vendor sent reaches the database.
type Payload map[string]any

// Decode parses a raw request body into a Payload. An empty (or
// whitespace-only) body is an empty object: every column ends up NULL.
func Decode(raw []byte) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode payload: trailing data after JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Payload(obj), nil
}

// Unwrap returns the record nested under the first envelope key that holds
// an object, or p itself when the payload is not wrapped.
func Unwrap(p Payload) Payload {
	for _, k := range EnvelopeKeys {
		if inner, ok := p[k].(map[string]any); ok {
			return Payload(inner)
		}
	}
	return p
}

// Entry is a single top-level key/value pair of a payload, with a JSON type
// name, for diagnostic logging.
type Entry struct {
	Key   string
	Value any
	Type  string
}

// Entries returns the top-level fields of p sorted by key.
func Entries(p Payload) []Entry {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: k, Value: p[k], Type: jsonType(p[k])})
	}
	return out
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
