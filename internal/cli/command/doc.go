// Package command defines the hc-state commands.
//
// App wires global flags, config loading, logging, metrics and the
// connection manager into a Runtime stored in the app metadata. Each
// command takes the Runtime, makes its conductor calls through the
// manager and renders the result with the output package. The REPL runs
// the same commands line by line on one Runtime.
package command
