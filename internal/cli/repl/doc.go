// Package repl runs interactive hc-state sessions.
//
// Every line goes through the same commands as single-shot mode, but on
// one connection manager owned by the session. On a terminal the line
// editor from golang.org/x/term provides history browsing and Tab
// completion; piped input is read line by line. The config file is
// watched and a change reconfigures the session's connections.
package repl
