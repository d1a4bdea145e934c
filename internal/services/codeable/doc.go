// Package codeable talks to the freelancing platform's REST API on behalf of
// the signed-in expert.
//
// The Client fetches the account profile, paginated transactions, and
// filtered task lists, and doubles as the session guard the sync pipeline
// consults before any remote call. Payload types decode the API's loosely
// typed JSON into explicit Go values: booleans default to false, ids that are
// not JSON integers decode to zero, money is decimal, and the positional
// credit/debit arrays become named line items.
package codeable
