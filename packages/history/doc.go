// Package history records suite runs in a SQLite database.
//
// Each run stores its suite, engine and counts, plus one entry per executed
// request with the request line, response status and timing. Credentials
// are filtered out of request headers before anything is written.
package history
