package jsonvalue

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a document is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse parses a complete JSON document.
func Parse(text string) (Value, error) {
	if !gjson.Valid(text) {
		return Value{}, ErrInvalidJSON
	}
	return FromResult(gjson.Parse(text)), nil
}

// ParseBytes is like Parse for a byte slice.
func ParseBytes(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return FromResult(gjson.ParseBytes(data)), nil
}

// FromResult converts an already validated gjson result into a Value.
// Repeated object member names collapse into one member that keeps the
// position of the first occurrence and the value of the last.
func FromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return NullValue()
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return NumberValue(r.Raw)
	case gjson.String:
		return StringValue(r.Str)
	}

	if r.IsArray() {
		var items []Value
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, FromResult(item))
			return true
		})
		return ArrayValue(items...)
	}

	if r.IsObject() {
		var members []Member
		seen := make(map[string]int)
		r.ForEach(func(key, item gjson.Result) bool {
			if i, ok := seen[key.Str]; ok {
				members[i].Value = FromResult(item)
				return true
			}
			seen[key.Str] = len(members)
			members = append(members, Member{Name: key.Str, Value: FromResult(item)})
			return true
		})
		return ObjectValue(members...)
	}

	return NullValue()
}
