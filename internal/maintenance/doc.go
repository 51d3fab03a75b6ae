// Package maintenance is the operation engine: a registry of maintenance
// operations, the executor contract they implement, and the Engine that runs
// a selection of them and reports the outcome.
//
// Operations run one at a time in registry order. The Engine holds no locks:
// two overlapping RunSelected calls against the same database can race (two
// revision prunes deleting the same rows, for example), so callers that can
// trigger runs concurrently must serialize them.
package maintenance
