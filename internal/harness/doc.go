// Package harness runs recompute conformance scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files combining a tablet fixture, optional edits and
// assertions:
//
//	name: delete_sign
//	description: "Deleting a sign renumbers the rest of the tablet"
//	fixture:
//	  tablet: { id: t1 }
//	  units:
//	    - { id: u1, kind: line }
//	    - { id: u2, kind: sign }
//	    - { id: u3, kind: sign }
//	edits:
//	  - { op: delete_unit, id: u2 }
//	assertions:
//	  - type: char_on_tablet
//	    expect: ["-", "1"]
//	  - type: writes
//	    units: 1
//	  - type: idempotent
//
// A scenario may name a fixture file instead with fixture_file, resolved
// relative to the scenario.
//
// # Execution
//
// Run imports the fixture into a fresh in-memory store, recomputes, applies
// the edits in one transaction, recomputes again and then recomputes once
// more to measure idempotence. Generated row IDs are sequential (gen-1,
// gen-2, ...) so results are reproducible.
//
// # Assertion Types
//
//   - line_numbers, char_on_tablet, char_on_line, object_on_tablet: unit
//     fields in physical order, "-" for null
//   - object_in_text, word_on_tablet, child_num: node fields in discourse order
//   - writes: row writes of the recompute after the edits
//   - idempotent: the rerun wrote nothing
//
// # Golden Snapshots
//
// Snapshot renders every row and write count as text. RunWithGolden compares
// it against testdata/golden/<name>.golden with goldie.
package harness
