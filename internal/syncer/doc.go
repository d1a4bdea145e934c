// Package syncer pulls the expert's account from the remote API into the
// local store one queue step at a time.
//
// BuildQueue returns the fixed step order: profile, transactions, the bulk
// "lost" transition, then each task filter. Processor.Process runs a single
// step, returning the same step with the next page when more data remains,
// or nil once the step is exhausted. Every processed step flushes the view
// cache. Runner drives the whole queue for the CLI, tagging the run with a
// uuid and persisting a cursor so an interrupted sync can resume.
//
// Rows the API returns without a usable id are skipped. Any storage write
// failure aborts the run with an ErrStorage error naming the record.
package syncer
