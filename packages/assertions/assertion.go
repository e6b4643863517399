package assertions

// Type names the aspect of a response an assertion checks.
type Type string

const (
	TypeStatus       Type = "status"
	TypeResponseTime Type = "responseTime"
	TypeBodyContains Type = "bodyContains"
	TypeBodyJSON     Type = "bodyJson"
	TypeHeaderExists Type = "headerExists"
	TypeHeaderEquals Type = "headerEquals"
)

// Operator is the comparison an assertion applies.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpLessThan    Operator = "lessThan"
	OpGreaterThan Operator = "greaterThan"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpMatches     Operator = "matches"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "notExists"
)

// Assertion is a user-authored check in its stored form. Expected is always
// text and is interpreted per type when the assertion is compiled.
type Assertion struct {
	ID       string   `json:"id" yaml:"id"`
	Type     Type     `json:"type" yaml:"type"`
	Property string   `json:"property" yaml:"property"`
	Operator Operator `json:"operator" yaml:"operator"`
	Expected string   `json:"expected" yaml:"expected"`
	Enabled  bool     `json:"enabled" yaml:"enabled"`
}

// Result is the outcome of evaluating one assertion. Actual is always a
// readable rendering of the observed value and Message a full sentence.
type Result struct {
	AssertionID string `json:"assertionId"`
	Passed      bool   `json:"passed"`
	Actual      string `json:"actual"`
	Message     string `json:"message"`
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

func (s Summary) AllPassed() bool {
	return s.Failed == 0
}

func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

var allowed = map[Type][]Operator{
	TypeStatus:       {OpEquals, OpNotEquals, OpLessThan, OpGreaterThan},
	TypeResponseTime: {OpLessThan, OpGreaterThan},
	TypeBodyContains: {OpContains, OpNotContains, OpMatches},
	TypeBodyJSON:     {OpExists, OpNotExists, OpEquals, OpNotEquals, OpContains},
	TypeHeaderExists: {OpExists, OpNotExists},
	TypeHeaderEquals: {OpEquals, OpNotEquals, OpContains},
}

// Types returns every assertion type.
func Types() []Type {
	return []Type{TypeStatus, TypeResponseTime, TypeBodyContains, TypeBodyJSON, TypeHeaderExists, TypeHeaderEquals}
}

// AllowedOperators returns the operators valid for t, or nil for an unknown type.
func AllowedOperators(t Type) []Operator {
	ops := allowed[t]
	if ops == nil {
		return nil
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}
