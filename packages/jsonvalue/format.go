package jsonvalue

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Info summarizes a JSON document for large-response handling.
type Info struct {
	Valid  bool   `json:"valid"`
	Size   int    `json:"size"`
	Type   string `json:"type,omitempty"`
	Depth  int    `json:"depth"`
	Keys   int    `json:"keys"`
	Length int    `json:"length"`
}

var formatOptions = &pretty.Options{
	Width:  80,
	Prefix: "",
	Indent: "  ",
}

// Valid reports whether text is a valid JSON document.
func Valid(text string) bool {
	return gjson.Valid(text)
}

// Format pretty-prints text. Invalid input is returned unchanged.
func Format(text string) string {
	if !gjson.Valid(text) {
		return text
	}
	return string(pretty.PrettyOptions([]byte(text), formatOptions))
}

// Minify removes insignificant whitespace. Invalid input is returned unchanged.
func Minify(text string) string {
	if !gjson.Valid(text) {
		return text
	}
	return string(pretty.Ugly([]byte(text)))
}

// Inspect returns size and shape information about text.
func Inspect(text string) Info {
	v, err := Parse(text)
	if err != nil {
		return Info{Valid: false, Size: len(text)}
	}
	info := Info{
		Valid: true,
		Size:  len(text),
		Type:  v.Kind().String(),
		Depth: v.Depth(),
	}
	switch v.Kind() {
	case Object:
		info.Keys = v.Len()
	case Array:
		info.Length = v.Len()
	}
	return info
}
