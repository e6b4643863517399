// Package jsonpath resolves dot/bracket paths such as "data.users[0].name"
// against parsed JSON values.
//
// Resolution never fails with an error: navigating into a non-object, a
// missing member, a non-array where an index is requested, or an
// out-of-range index yields a Lookup with Found set to false. A present JSON
// null is reported as Found with a null value.
package jsonpath
