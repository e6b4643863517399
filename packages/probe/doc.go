// Package probe defines how the assertion evaluator and the value extractor
// look into a response. Implementations differ only in how much work they
// share between calls, never in what they answer.
package probe
