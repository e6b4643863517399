// Package output renders runner results.
//
// Console output is colored and meant for people; JSON, JUnit XML and TAP 13
// are meant for CI. The accumulating formats implement Flushable and write
// nothing until Flush is called with the total run time.
package output
