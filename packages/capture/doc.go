// Package capture extracts values from HTTP responses for use in subsequent requests.
//
// It supports extracting values from:
//   - Response body (JSON paths)
//   - Response headers (case-insensitive)
//   - Response body (regular expressions, first capture group)
//   - Response status code
//   - The full response body
//
// Extracted values become chain variables, kept in a Store keyed by name, and
// are substituted into later requests via the {{name}} syntax.
package capture
