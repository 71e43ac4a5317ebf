// Package fixture turns a human-written tablet description into store rows.
//
// A fixture is a YAML (or CUE) document naming a tablet, its epigraphic units
// in physical order and its discourse nodes in discourse order:
//
//	tablet:
//	  id: bm-12345
//	  designation: BM 12345
//	units:
//	  - kind: line
//	  - kind: sign
//	    reading: "šu"
//	  - kind: region
//	    markups:
//	      - kind: broken
//	discourse:
//	  - id: du1
//	    kind: discourseUnit
//	  - parent: du1
//	    kind: word
//	    transcription: "šumma"
//
// Every fixture is checked against an embedded CUE schema before it is
// converted. Sort keys are assigned from list position, IDs left empty are
// generated, and readings are NFC-normalized. Derived position fields are
// never read from a fixture; they are left null for the recompute to fill.
package fixture
