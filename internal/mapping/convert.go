package mapping

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
)

// Lookup returns the value of the first key in keys that is present in p
// with a usable value. JSON null and the empty string count as absent so the
// next candidate spelling gets a chance.
func Lookup(p Payload, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// Text renders a payload value as column text. Objects and arrays are stored
// as compact JSON.
func Text(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		s = strconv.FormatBool(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			s = fmt.Sprint(x)
		} else {
			s = string(b)
		}
	}
	return &s
}

// Converter turns the looked-up value of a column into the Go value assigned
// to the model field. ok is false when none of the candidate keys was present.
type Converter func(v any, ok bool) (any, error)

// TextColumn is the default Converter: a nullable *string.
func TextColumn(v any, ok bool) (any, error) {
	if !ok {
		return (*string)(nil), nil
	}
	return Text(v), nil
}

// EmployeeCount normalizes the vendor's employee-count field, which arrives
// either as a scalar or as a list. The stored form is always a JSON array:
// 5 becomes [5], [5,10] stays [5,10]. An absent value stays NULL.
func EmployeeCount(v any, ok bool) (any, error) {
	if !ok {
		return datatypes.JSON(nil), nil
	}
	list, isList := v.([]any)
	if !isList {
		list = []any{v}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode employee count: %w", err)
	}
	return datatypes.JSON(b), nil
}
