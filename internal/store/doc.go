// Package store provides SQLite-backed storage for tablet transcriptions.
//
// The store holds four tables:
//   - tablets: one row per tablet
//   - epigraphic_units: physical elements, ordered by seq
//   - markups: qualifiers attached to units (broken, undeterminedLines, ...)
//   - discourse_nodes: the discourse tree, ordered by seq
//
// # Ordering
//
// seq is the authored sort key maintained by the editing layer. All ordered
// reads use ORDER BY seq ASC, id ASC COLLATE BINARY so row order is total and
// identical across runs. Derived position columns are never used for ordering.
//
// # Transactions
//
// Store and Tx expose the same read, update and edit methods. A recompute
// must run inside WithTx so that either every changed row is written or none
// is. RecomputeTablet does exactly that for one tablet.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
