// Package env handles variable maps and {{variable}} template substitution.
//
// It provides functionality for:
//   - Substituting {{name}} tokens in text, batches of text and headers
//   - Finding the variable names a template references
//   - Loading environment files (.env, .env.local, etc.)
//   - Merging environment and chain variables (chain variables win)
//   - Staged resolution with {{$NAME}} process environment lookups
//
// Unknown tokens are never removed: substitution leaves them byte-for-byte
// unchanged so that a later pass can resolve them.
package env
