package assertions

import (
	"errors"
	"strconv"

	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
	"github.com/abdul-hamid-achik/volt/packages/probe"
)

var (
	ErrUnknownType     = errors.New("unknown assertion type")
	ErrUnknownOperator = errors.New("unknown operator")
)

// CompileError reports an assertion that cannot be compiled. Its message is
// the one shown to users as the failed result's message.
type CompileError struct {
	Kind  error
	Value string
}

func (e *CompileError) Error() string {
	if e.Kind == ErrUnknownType {
		return "Unknown assertion type: " + e.Value
	}
	return "Unknown operator: " + e.Value
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

// Check is a compiled assertion. The variants are StatusCheck,
// ResponseTimeCheck, BodyContainsCheck, BodyJSONCheck, HeaderExistsCheck and
// HeaderEqualsCheck; each carries only the operators valid for its type.
type Check interface {
	Type() Type
	evaluate(p probe.Probe) (passed bool, actual, message string)
}

type NumericOp int

const (
	NumericEquals NumericOp = iota
	NumericNotEquals
	NumericLessThan
	NumericGreaterThan
)

type TimingOp int

const (
	TimingLessThan TimingOp = iota
	TimingGreaterThan
)

type BodyOp int

const (
	BodyContains BodyOp = iota
	BodyNotContains
	BodyMatches
)

type JSONOp int

const (
	JSONExists JSONOp = iota
	JSONNotExists
	JSONEquals
	JSONNotEquals
	JSONContains
)

type PresenceOp int

const (
	PresenceExists PresenceOp = iota
	PresenceNotExists
)

type HeaderOp int

const (
	HeaderEquals HeaderOp = iota
	HeaderNotEquals
	HeaderContains
)

// Integer is an expected value parsed as an integer. A value that does not
// parse never compares equal, less or greater.
type Integer struct {
	Value int64
	Text  string
	Valid bool
}

func ParseInteger(text string) Integer {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Integer{Text: text}
	}
	return Integer{Value: v, Text: text, Valid: true}
}

func (i Integer) String() string {
	if !i.Valid {
		return i.Text
	}
	return strconv.FormatInt(i.Value, 10)
}

type StatusCheck struct {
	Op       NumericOp
	Expected Integer
}

type ResponseTimeCheck struct {
	Op       TimingOp
	Expected Integer
}

type BodyContainsCheck struct {
	Op      BodyOp
	Pattern string
}

type BodyJSONCheck struct {
	Op       JSONOp
	Property string
	Expected string
	// canonical is the serialization of Expected parsed as JSON; it is
	// empty when Expected is not valid JSON, which never equals anything.
	canonical string
}

type HeaderExistsCheck struct {
	Op   PresenceOp
	Name string
}

type HeaderEqualsCheck struct {
	Op       HeaderOp
	Name     string
	Expected string
}

func (StatusCheck) Type() Type       { return TypeStatus }
func (ResponseTimeCheck) Type() Type { return TypeResponseTime }
func (BodyContainsCheck) Type() Type { return TypeBodyContains }
func (BodyJSONCheck) Type() Type     { return TypeBodyJSON }
func (HeaderExistsCheck) Type() Type { return TypeHeaderExists }
func (HeaderEqualsCheck) Type() Type { return TypeHeaderEquals }

var (
	numericOps  = map[Operator]NumericOp{OpEquals: NumericEquals, OpNotEquals: NumericNotEquals, OpLessThan: NumericLessThan, OpGreaterThan: NumericGreaterThan}
	timingOps   = map[Operator]TimingOp{OpLessThan: TimingLessThan, OpGreaterThan: TimingGreaterThan}
	bodyOps     = map[Operator]BodyOp{OpContains: BodyContains, OpNotContains: BodyNotContains, OpMatches: BodyMatches}
	jsonOps     = map[Operator]JSONOp{OpExists: JSONExists, OpNotExists: JSONNotExists, OpEquals: JSONEquals, OpNotEquals: JSONNotEquals, OpContains: JSONContains}
	presenceOps = map[Operator]PresenceOp{OpExists: PresenceExists, OpNotExists: PresenceNotExists}
	headerOps   = map[Operator]HeaderOp{OpEquals: HeaderEquals, OpNotEquals: HeaderNotEquals, OpContains: HeaderContains}
)

// Compile turns a stored assertion into a Check. It fails with a
// *CompileError for an unknown type or an operator the type does not allow.
func Compile(a Assertion) (Check, error) {
	badOp := &CompileError{Kind: ErrUnknownOperator, Value: string(a.Operator)}

	switch a.Type {
	case TypeStatus:
		op, ok := numericOps[a.Operator]
		if !ok {
			return nil, badOp
		}
		return StatusCheck{Op: op, Expected: ParseInteger(a.Expected)}, nil
	case TypeResponseTime:
		op, ok := timingOps[a.Operator]
		if !ok {
			return nil, badOp
		}
		return ResponseTimeCheck{Op: op, Expected: ParseInteger(a.Expected)}, nil
	case TypeBodyContains:
		op, ok := bodyOps[a.Operator]
		if !ok {
			return nil, badOp
		}
		return BodyContainsCheck{Op: op, Pattern: a.Expected}, nil
	case TypeBodyJSON:
		op, ok := jsonOps[a.Operator]
		if !ok {
			return nil, badOp
		}
		c := BodyJSONCheck{Op: op, Property: a.Property, Expected: a.Expected}
		// An expected value that is not JSON leaves canonical empty, so equals
		// never matches and notEquals always passes.
		if op == JSONEquals || op == JSONNotEquals {
			if v, err := jsonvalue.Parse(a.Expected); err == nil {
				c.canonical = jsonvalue.Marshal(v)
			}
		}
		return c, nil
	case TypeHeaderExists:
		op, ok := presenceOps[a.Operator]
		if !ok {
			return nil, badOp
		}
		return HeaderExistsCheck{Op: op, Name: a.Property}, nil
	case TypeHeaderEquals:
		op, ok := headerOps[a.Operator]
		if !ok {
			return nil, badOp
		}
		return HeaderEqualsCheck{Op: op, Name: a.Property, Expected: a.Expected}, nil
	default:
		return nil, &CompileError{Kind: ErrUnknownType, Value: string(a.Type)}
	}
}

// Validate reports whether a compiles.
func Validate(a Assertion) error {
	_, err := Compile(a)
	return err
}
