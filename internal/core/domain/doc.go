// Package domain defines the error taxonomy shared by the hc-state CLI
// layers.
//
// Every failure that reaches the command boundary is a *DomainError with a
// stable code, so scripts can match on the code and humans read the
// message:
//
//   - HC-CONN: reaching the conductor
//   - HC-COND: what the conductor answered
//   - HC-ARG: command-line arguments
//   - HC-CFG: configuration files
//
// Codec failures live in pkg/holohash with the HC-HASH prefix and the same
// shape.
package domain
