// Package shutdown ties a command's context to SIGINT and SIGTERM and runs
// its cleanup hooks, such as closing conductor connections and flushing
// the metrics textfile, exactly once on the way out.
package shutdown
