// Package output renders command results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned columns, with wide-only fields
//   - json.go, yaml.go: machine-readable output
//   - spinner.go, progress.go: feedback on stderr for slow calls
//
// Hashes and cell ids print in their u-prefixed text form in every format.
package output
