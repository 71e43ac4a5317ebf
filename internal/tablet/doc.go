// Package tablet defines the row types of a transliterated tablet: its
// epigraphic units, the markup annotations attached to them, and the nodes of
// the discourse tree overlaid on the transcription.
//
// This package contains type definitions and small value helpers only. Every
// other internal package imports tablet; tablet imports nothing internal.
//
// Derived fields (object/char offsets, line numbers, sibling ranks, word
// indexes) are nullable and are never authored directly. They are recomputed
// from row order by package position.
package tablet
