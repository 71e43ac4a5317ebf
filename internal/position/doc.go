// Package position recomputes the derived position fields of one tablet.
//
// After any edit to a tablet's transcription the rest of the system addresses
// units as "the 7th sign on line 3" and discourse nodes as "the 2nd child of
// X". Those addresses are derived from row order by three passes:
//
//   - NumberOffsets: object-on-tablet, char-on-tablet and char-on-line
//   - NumberLines: logical line numbers, honoring broken regions and
//     undetermined-line spans
//   - NumberDiscourse: object-in-text, word-on-tablet and child-num
//
// Each pass is a pure fold over the ordered rows: an explicit state value is
// threaded through a step function, one row at a time. Lookups the passes
// need (markups per unit, sibling groups per parent) are built in bulk before
// the scan, never issued per row.
//
// # Compute and Persist
//
// Compute turns a Snapshot into a Plan listing only the rows whose derived
// fields differ from their stored values. Plan.Apply writes those rows through
// a Writer. Recomputer ties the two together for one tablet inside a write
// transaction supplied by the caller. A second run over consistent rows
// produces an empty Plan and writes nothing.
//
// # Failure Semantics
//
// The passes never fail. Unknown kinds fall through to the no-effect branch
// and a missing markup reads as "not broken" or "zero lines". The only error
// Compute reports is an IntegrityError for a discourse node whose parent is
// not part of the tablet; persistence errors propagate unchanged so the
// caller's transaction rolls back.
package position
