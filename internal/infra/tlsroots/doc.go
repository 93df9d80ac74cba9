// Package tlsroots builds the client TLS configuration used to dial wss://
// conductor interfaces: the system roots plus an optional CA file or
// directory, and an optional client key pair for mutual TLS.
package tlsroots
