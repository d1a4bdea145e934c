// Package report computes account summary views from the local store and
// caches them in the view cache until the next sync step flushes it.
package report
