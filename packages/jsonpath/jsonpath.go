package jsonpath

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
)

var indexedSegment = regexp.MustCompile(`^(.+)\[(\d+)\]$`)

// Segment is one dot-separated step of a path.
type Segment struct {
	Key      string
	Index    int
	HasIndex bool
	// invalid is set when the index literal does not fit in an int; such a
	// segment never resolves.
	invalid bool
}

// Path is a compiled path expression.
type Path struct {
	raw      string
	segments []Segment
}

// Lookup is the outcome of resolving a path.
type Lookup struct {
	Value jsonvalue.Value
	Found bool
}

// NotFound is the Lookup returned when a path does not resolve.
func NotFound() Lookup {
	return Lookup{}
}

// Compile splits path into segments. An empty path selects the root.
func Compile(path string) Path {
	p := Path{raw: path}
	if path == "" {
		return p
	}
	for _, part := range strings.Split(path, ".") {
		p.segments = append(p.segments, parseSegment(part))
	}
	return p
}

func parseSegment(part string) Segment {
	m := indexedSegment.FindStringSubmatch(part)
	if m == nil {
		return Segment{Key: part}
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return Segment{Key: m[1], HasIndex: true, invalid: true}
	}
	return Segment{Key: m[1], Index: idx, HasIndex: true}
}

func (p Path) String() string {
	return p.raw
}

// Segments returns the compiled segments of p.
func (p Path) Segments() []Segment {
	return p.segments
}

// Resolve walks v along p.
func (p Path) Resolve(v jsonvalue.Value) Lookup {
	current := v
	for _, seg := range p.segments {
		next, ok := current.Get(seg.Key)
		if !ok {
			return NotFound()
		}
		if seg.HasIndex {
			if seg.invalid {
				return NotFound()
			}
			next, ok = next.Index(seg.Index)
			if !ok {
				return NotFound()
			}
		}
		current = next
	}
	return Lookup{Value: current, Found: true}
}

// Resolve compiles path and resolves it against v.
func Resolve(v jsonvalue.Value, path string) Lookup {
	return Compile(path).Resolve(v)
}

// Serialized returns the canonical serialization of the resolved value, or
// "undefined" when the path did not resolve.
func (l Lookup) Serialized() string {
	if !l.Found {
		return "undefined"
	}
	return jsonvalue.Marshal(l.Value)
}

// Text returns the string form of the resolved value.
func (l Lookup) Text() string {
	if !l.Found {
		return ""
	}
	return jsonvalue.Text(l.Value)
}
