package jsonvalue

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Marshal returns the canonical compact serialization of v. Two values are
// considered equal by the assertion engine when their serializations match.
func Marshal(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

// Text returns the string form of v: the raw content for strings and the
// canonical serialization for every other kind.
func Text(v Value) string {
	if v.kind == String {
		return v.text
	}
	return Marshal(v)
}

func writeValue(sb *strings.Builder, v Value) {
	switch v.kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		if v.boolean {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Number:
		sb.WriteString(CanonicalNumber(v.text))
	case String:
		writeString(sb, v.text)
	case Array:
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeValue(sb, item)
		}
		sb.WriteByte(']')
	case Object:
		sb.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeString(sb, m.Name)
			sb.WriteByte(':')
			writeValue(sb, m.Value)
		}
		sb.WriteByte('}')
	}
}

// writeString quotes s without HTML escaping, so <, > and & stay literal.
func writeString(sb *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		sb.WriteString(strconv.Quote(s))
		return
	}
	sb.Write(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
}

// CanonicalNumber normalizes a JSON number literal. Integer literals are kept
// as written; fractional and exponent forms are reformatted so that 1.0 and
// 1e0 both serialize as 1.
func CanonicalNumber(literal string) string {
	if !strings.ContainsAny(literal, ".eE") {
		if literal == "-0" {
			return "0"
		}
		return literal
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return literal
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
