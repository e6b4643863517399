// Package cmd implements the volt CLI commands using Cobra.
//
// Available commands:
//   - run: Execute request suites and report assertion results
//   - check: Evaluate assertions against a recorded response
//   - extract: Pull one value out of a recorded response
//   - subst: Substitute {{variables}} in text
//   - validate: Check suite files without executing them
//   - bench: Compare the reference and accelerated engines
//   - history: Browse recorded runs
//   - json: Format, minify, validate and inspect JSON documents
//   - config: Show or create the config file
//   - version: Show volt version information
//
// Most flags can also be set through VOLT_* environment variables and the
// .volt.config.json file; flags win over both.
package cmd
