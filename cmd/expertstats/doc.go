// Command expertstats syncs a freelancing platform account into a local
// SQLite database and reports on it.
//
//	expertstats login --email me@example.com
//	expertstats sync
//	expertstats stats
//	expertstats tasks --flag won
//
// An interrupted sync continues where it stopped with `expertstats sync --resume`.
package main
