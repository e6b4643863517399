package jsonvalue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
	}{
		{"null", `null`, Null},
		{"true", `true`, Bool},
		{"false", `false`, Bool},
		{"integer", `42`, Number},
		{"float", `-1.5e3`, Number},
		{"string", `"hello"`, String},
		{"array", `[1, 2, 3]`, Array},
		{"object", `{"a": 1}`, Object},
		{"surrounding whitespace", "  \n{\"a\": 1}\n", Object},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "not json", `{"a":`, `[1, 2`, `{"a" 1}`} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.ErrorIs(t, err, ErrInvalidJSON)
		})
	}
}

func TestMarshal_Canonical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"compacts whitespace", `{ "a" : [ 1 , 2 ] }`, `{"a":[1,2]}`},
		{"keeps member order", `{"b":1,"a":2}`, `{"b":1,"a":2}`},
		{"string escapes", `"line\nbreak \"q\""`, `"line\nbreak \"q\""`},
		{"html characters are not escaped", `"<a&b>"`, `"<a&b>"`},
		{"non-ascii kept", `"é"`, `"é"`},
		{"unicode escape decoded", `"\u00e9"`, `"é"`},
		{"fraction normalized", `1.0`, `1`},
		{"exponent normalized", `1e2`, `100`},
		{"fraction kept", `2.50`, `2.5`},
		{"negative zero", `-0`, `0`},
		{"nested", `{"data":{"users":[{"name":"John","tags":[]}]}}`, `{"data":{"users":[{"name":"John","tags":[]}]}}`},
		{"duplicate members keep last value", `{"a":1,"b":2,"a":3}`, `{"a":3,"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Marshal(v))
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	docs := []string{
		`{"user":{"name":"John","age":30,"roles":["admin","dev"],"active":true,"manager":null}}`,
		`[{"id":1},{"id":2,"tags":["a","b"]}]`,
		`"plain"`,
		`-12.75`,
	}
	for _, doc := range docs {
		v, err := Parse(doc)
		require.NoError(t, err)

		again, err := Parse(Marshal(v))
		require.NoError(t, err)
		assert.Equal(t, Marshal(v), Marshal(again))
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "john", Text(StringValue("john")))
	assert.Equal(t, "30", Text(NumberValue("30")))
	assert.Equal(t, `{"a":"b"}`, Text(ObjectValue(Member{Name: "a", Value: StringValue("b")})))
	assert.Equal(t, "null", Text(NullValue()))
}

func TestValue_Accessors(t *testing.T) {
	v, err := Parse(`{"items":[10,20],"name":"x","ok":true}`)
	require.NoError(t, err)

	items, ok := v.Get("items")
	require.True(t, ok)
	assert.Equal(t, 2, items.Len())

	second, ok := items.Index(1)
	require.True(t, ok)
	assert.Equal(t, "20", second.Str())

	_, ok = items.Index(2)
	assert.False(t, ok)

	_, ok = v.Get("missing")
	assert.False(t, ok)

	flag, ok := v.Get("ok")
	require.True(t, ok)
	assert.True(t, flag.Bool())

	_, ok = flag.Get("anything")
	assert.False(t, ok)
}

func TestFormatAndMinify(t *testing.T) {
	formatted := Format(`{"name":"John","age":30}`)
	assert.Contains(t, formatted, "\n")
	assert.Contains(t, formatted, "  ")

	assert.Equal(t, `{"name":"John","age":30}`, strings.TrimSpace(Minify("{\n  \"name\": \"John\",\n  \"age\": 30\n}")))

	assert.Equal(t, "not json", Format("not json"))
	assert.Equal(t, "not json", Minify("not json"))
}

func TestInspect(t *testing.T) {
	info := Inspect(`{"a":{"b":[1,2]},"c":1}`)
	assert.True(t, info.Valid)
	assert.Equal(t, "object", info.Type)
	assert.Equal(t, 2, info.Keys)
	assert.Equal(t, 3, info.Depth)

	info = Inspect(`[1,2,3]`)
	assert.Equal(t, 3, info.Length)
	assert.Equal(t, 1, info.Depth)

	info = Inspect("nope")
	assert.False(t, info.Valid)
	assert.Equal(t, 4, info.Size)

	assert.True(t, Valid(`{"valid": true}`))
	assert.False(t, Valid("not json"))
}
