// Package main provides the entry point for hc-state.
//
// hc-state talks to a Holochain conductor over its admin and app
// WebSocket interfaces and works with HoloHashes offline:
//
//   - list DNAs, cells and running apps
//   - dump cell state, one cell or all of them
//   - show app info and call zome functions
//   - inspect, build and checksum hashes; parse cell ids
//
// Usage:
//
//	hc-state list-cell-ids
//	hc-state state-dump 0
//	hc-state -o json zome-call 0 posts get_all_posts
//	hc-state hash inspect uhC0k...
//	hc-state repl
//
// CELL arguments accept an index from list-cell-ids or the pair form
// "[DNA_HASH, AGENT_PUB_KEY]".
package main
