// Package config provides the hc-state CLI configuration.
//
//   - cliconfig.go: CLIConfig (~/.hc-state/cli.yaml), profiles, validation
//   - loader.go: loading, saving and flag merging
//
// Values are resolved as flags > HCSTATE_* environment > file > defaults.
// A profile, when selected, overrides the endpoint fields.
package config
