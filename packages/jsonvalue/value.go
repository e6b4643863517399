package jsonvalue

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single name/value pair of an object.
type Member struct {
	Name  string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string content, or the number literal
	items   []Value
	members []Member
}

func NullValue() Value {
	return Value{kind: Null}
}

func BoolValue(b bool) Value {
	return Value{kind: Bool, boolean: b}
}

// NumberValue wraps a JSON number literal. The literal is not validated.
func NumberValue(literal string) Value {
	return Value{kind: Number, text: literal}
}

func StringValue(s string) Value {
	return Value{kind: String, text: s}
}

func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: items}
}

func ObjectValue(members ...Member) Value {
	return Value{kind: Object, members: members}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

// Bool returns the boolean held by v, false for any other kind.
func (v Value) Bool() bool {
	return v.kind == Bool && v.boolean
}

// Str returns the content of a string value, or the literal of a number.
func (v Value) Str() string {
	if v.kind == String || v.kind == Number {
		return v.text
	}
	return ""
}

// Len returns the number of array items or object members.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th item of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Get returns the member named name of an object value. When a document
// repeats a member name the last occurrence wins.
func (v Value) Get(name string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Name == name {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// Items returns the items of an array value.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Members returns the members of an object value in document order.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.members
}

// Depth returns the container nesting depth; scalars have depth 0.
func (v Value) Depth() int {
	switch v.kind {
	case Array:
		max := 0
		for _, item := range v.items {
			if d := item.Depth(); d > max {
				max = d
			}
		}
		return max + 1
	case Object:
		max := 0
		for _, m := range v.members {
			if d := m.Value.Depth(); d > max {
				max = d
			}
		}
		return max + 1
	default:
		return 0
	}
}
