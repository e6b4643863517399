// Package jsonvalue provides a tagged JSON value used by the path resolver,
// the assertion evaluator and the extractor.
//
// It provides functionality for:
//   - Parsing response bodies into Null/Bool/Number/String/Array/Object values
//   - Canonical compact serialization used for equality comparisons
//   - Formatting, minifying and inspecting JSON documents
//
// Object members keep document order. Serialization is therefore sensitive to
// member order: {"a":1,"b":2} and {"b":2,"a":1} serialize differently.
package jsonvalue
