// Package suite loads volt suite files.
//
// A suite is a YAML or JSON document with a name, a variable map and an
// ordered list of requests. Each request either describes a live HTTP call
// or points at a recorded response file, and carries the assertions and
// extractions to run against the response.
//
// Documents are validated against an embedded JSON schema before decoding,
// then every assertion is compiled so operator mistakes are reported with
// the request they belong to.
package suite
