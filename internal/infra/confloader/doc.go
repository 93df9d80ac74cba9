// Package confloader layers configuration sources with koanf.
//
// Load applies Sources in order, later ones winning. hc-state passes
//
//  1. defaults (Map)
//  2. the YAML config file (File)
//  3. HCSTATE_* environment variables (Env)
//  4. command-line flags (Map)
//
// Watch reports writes to the config file so a REPL session can reload it.
package confloader
