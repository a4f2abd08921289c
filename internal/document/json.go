package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// FromJSON parses a JSON document into a Node tree. gjson iterates object
// members in document order, which keeps mapping keys ordered.
func FromJSON(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	return fromJSONValue(gjson.ParseBytes(data))
}

func fromJSONValue(r gjson.Result) (*Node, error) {
	switch {
	case r.IsObject():
		m := Mapping()
		var walkErr error
		r.ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			if m.has(key) {
				walkErr = fmt.Errorf("duplicate object key %q", key)
				return false
			}
			child, err := fromJSONValue(v)
			if err != nil {
				walkErr = err
				return false
			}
			m.Set(key, child)
			return true
		})
		if walkErr != nil {
			return nil, walkErr
		}
		return m, nil

	case r.IsArray():
		raw := r.Array()
		items := make([]*Node, 0, len(raw))
		for _, el := range raw {
			child, err := fromJSONValue(el)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return Sequence(items...), nil
	}

	switch r.Type {
	case gjson.Null:
		return Null(), nil
	case gjson.True:
		return Bool(true), nil
	case gjson.False:
		return Bool(false), nil
	case gjson.String:
		return String(r.Str), nil
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return Int(i), nil
			}
		}
		return Float(r.Num), nil
	}

	return nil, fmt.Errorf("unsupported JSON value: %s", r.Type)
}
