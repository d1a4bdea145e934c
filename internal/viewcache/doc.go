// Package viewcache keeps computed report views in a JSON file so repeated
// CLI invocations do not recompute them from the database.
//
// The sync pipeline calls Flush after every processed step; any view cached
// before that point is considered stale.
package viewcache
