package assertions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/volt/packages/probe"
)

const displayLimit = 100

func (c StatusCheck) evaluate(p probe.Probe) (bool, string, string) {
	code := int64(p.Response().StatusCode)
	actual := strconv.FormatInt(code, 10)
	exp := c.Expected

	switch c.Op {
	case NumericEquals:
		if exp.Valid && code == exp.Value {
			return true, actual, fmt.Sprintf("Status code is %d", code)
		}
		return false, actual, fmt.Sprintf("Expected %s, got %d", exp, code)
	case NumericNotEquals:
		if !exp.Valid || code != exp.Value {
			return true, actual, fmt.Sprintf("Status code is not %s", exp)
		}
		return false, actual, fmt.Sprintf("Expected not %s, got %d", exp, code)
	case NumericLessThan:
		if exp.Valid && code < exp.Value {
			return true, actual, fmt.Sprintf("Status code %d < %s", code, exp)
		}
		return false, actual, fmt.Sprintf("Expected < %s, got %d", exp, code)
	default:
		if exp.Valid && code > exp.Value {
			return true, actual, fmt.Sprintf("Status code %d > %s", code, exp)
		}
		return false, actual, fmt.Sprintf("Expected > %s, got %d", exp, code)
	}
}

func (c ResponseTimeCheck) evaluate(p probe.Probe) (bool, string, string) {
	ms := p.Response().TimingMs
	actual := fmt.Sprintf("%dms", ms)
	exp := c.Expected

	if c.Op == TimingLessThan {
		if exp.Valid && ms < exp.Value {
			return true, actual, fmt.Sprintf("Response time %dms < %sms", ms, exp)
		}
		return false, actual, fmt.Sprintf("Expected < %sms, got %dms", exp, ms)
	}
	if exp.Valid && ms > exp.Value {
		return true, actual, fmt.Sprintf("Response time %dms > %sms", ms, exp)
	}
	return false, actual, fmt.Sprintf("Expected > %sms, got %dms", exp, ms)
}

func (c BodyContainsCheck) evaluate(p probe.Probe) (bool, string, string) {
	body := p.Response().Body
	actual := truncate(body, displayLimit)

	switch c.Op {
	case BodyContains:
		if strings.Contains(body, c.Pattern) {
			return true, actual, fmt.Sprintf(`Body contains "%s"`, c.Pattern)
		}
		return false, actual, fmt.Sprintf(`Body does not contain "%s"`, c.Pattern)
	case BodyNotContains:
		if !strings.Contains(body, c.Pattern) {
			return true, actual, fmt.Sprintf(`Body does not contain "%s"`, c.Pattern)
		}
		return false, actual, fmt.Sprintf(`Body contains "%s"`, c.Pattern)
	default:
		re, err := p.Regexp(c.Pattern)
		if err != nil {
			return false, actual, "Invalid regex pattern: " + c.Pattern
		}
		if re.MatchString(body) {
			return true, actual, fmt.Sprintf(`Body matches pattern "%s"`, c.Pattern)
		}
		return false, actual, fmt.Sprintf(`Body does not match pattern "%s"`, c.Pattern)
	}
}

func (c BodyJSONCheck) evaluate(p probe.Probe) (bool, string, string) {
	lookup, err := p.JSON(c.Property)
	if err != nil {
		return false, "Invalid JSON", "Response body is not valid JSON"
	}
	actual := lookup.Serialized()

	switch c.Op {
	case JSONExists:
		if lookup.Found {
			return true, actual, fmt.Sprintf(`Property "%s" exists`, c.Property)
		}
		return false, actual, fmt.Sprintf(`Property "%s" does not exist`, c.Property)
	case JSONNotExists:
		if !lookup.Found {
			return true, actual, fmt.Sprintf(`Property "%s" does not exist`, c.Property)
		}
		return false, actual, fmt.Sprintf(`Property "%s" exists`, c.Property)
	case JSONEquals:
		if c.equal(lookup.Found, actual) {
			return true, actual, fmt.Sprintf("%s equals %s", c.Property, c.Expected)
		}
		return false, actual, fmt.Sprintf("Expected %s, got %s", c.Expected, actual)
	case JSONNotEquals:
		if !c.equal(lookup.Found, actual) {
			return true, actual, fmt.Sprintf("%s does not equal %s", c.Property, c.Expected)
		}
		return false, actual, fmt.Sprintf("Expected not %s, got %s", c.Expected, actual)
	default:
		if lookup.Found && strings.Contains(lookup.Text(), c.Expected) {
			return true, actual, fmt.Sprintf(`%s contains "%s"`, c.Property, c.Expected)
		}
		return false, actual, fmt.Sprintf(`%s does not contain "%s"`, c.Property, c.Expected)
	}
}

func (c BodyJSONCheck) equal(found bool, serialized string) bool {
	return found && c.canonical != "" && serialized == c.canonical
}

func (c HeaderExistsCheck) evaluate(p probe.Probe) (bool, string, string) {
	exists := p.Response().Headers.Has(c.Name)
	actual := "not found"
	if exists {
		actual = "exists"
	}

	if c.Op == PresenceExists {
		if exists {
			return true, actual, fmt.Sprintf(`Header "%s" exists`, c.Name)
		}
		return false, actual, fmt.Sprintf(`Header "%s" not found`, c.Name)
	}
	if !exists {
		return true, actual, fmt.Sprintf(`Header "%s" does not exist`, c.Name)
	}
	return false, actual, fmt.Sprintf(`Header "%s" exists`, c.Name)
}

func (c HeaderEqualsCheck) evaluate(p probe.Probe) (bool, string, string) {
	value, ok := p.Response().Headers.Get(c.Name)
	if !ok {
		return false, "not found", fmt.Sprintf(`Header "%s" not found`, c.Name)
	}

	switch c.Op {
	case HeaderEquals:
		if value == c.Expected {
			return true, value, fmt.Sprintf(`Header "%s" equals "%s"`, c.Name, c.Expected)
		}
		return false, value, fmt.Sprintf(`Expected "%s", got "%s"`, c.Expected, value)
	case HeaderNotEquals:
		if value != c.Expected {
			return true, value, fmt.Sprintf(`Header "%s" does not equal "%s"`, c.Name, c.Expected)
		}
		return false, value, fmt.Sprintf(`Expected not "%s", got "%s"`, c.Expected, value)
	default:
		if strings.Contains(value, c.Expected) {
			return true, value, fmt.Sprintf(`Header "%s" contains "%s"`, c.Name, c.Expected)
		}
		return false, value, fmt.Sprintf(`Header does not contain "%s"`, c.Expected)
	}
}

// truncate shortens s to at most n characters, marking the cut with "...".
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
