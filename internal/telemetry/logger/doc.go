// Package logger is the structured diagnostic log of hc-state, built on
// log/slog. It writes to stderr so stdout carries only command results,
// masks app tokens and capability secrets, and tags each command line
// with a ULID request ID.
package logger
