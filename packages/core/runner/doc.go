// Package runner executes volt suites.
//
// It provides functionality for:
//   - Running the requests of a suite in order
//   - Resolving {{variables}} from suite, environment file and chain values
//   - Evaluating each request's assertions in one batch on the selected tier
//   - Capturing response values into chain variables for later requests
//   - Request retry handling, name/tag filters and bail mode
//
// Recorded responses can stand in for live requests, which lets a suite
// check saved fixtures without a server.
package runner
