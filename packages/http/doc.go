// Package http provides the response snapshot consumed by the assertion
// engine and a small client that produces it.
//
// It provides:
//   - Response, an immutable snapshot of a completed HTTP exchange
//   - Headers, a header map with case-insensitive lookups
//   - Client, a transport with timeouts, redirect, TLS and proxy options
//   - Request validation (scheme, method, body size limits)
package http
