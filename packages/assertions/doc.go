// Package assertions evaluates declarative checks against a response.
//
// Supported assertion types and their operators:
//   - status: equals, notEquals, lessThan, greaterThan
//   - responseTime: lessThan, greaterThan
//   - bodyContains: contains, notContains, matches
//   - bodyJson: exists, notExists, equals, notEquals, contains
//   - headerExists: exists, notExists
//   - headerEquals: equals, notEquals, contains
//
// An Assertion is compiled into a Check before evaluation; a type/operator
// pair outside the table above cannot be compiled and evaluates to a failed
// Result. Evaluation never panics and never returns an error: invalid
// patterns, invalid JSON and missing values are all failed Results.
package assertions
