// Package preflight provides readiness checks for the filesystem paths and
// the remote API that expertstats depends on.
//
// The CLI "expertstats status" command renders RunAll's results, and
// "expertstats sync" runs the directory checks before taking the sync lock.
package preflight
