package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// compileSchema builds the #Fixture definition in ctx.
func compileSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile fixture schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Fixture")), nil
}

// Validate checks f against the embedded CUE schema, then checks the
// references the schema cannot express: ID uniqueness and parent links.
func Validate(f *Fixture) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}

	ctx := cuecontext.New()
	def, err := compileSchema(ctx)
	if err != nil {
		return err
	}

	v := def.Unify(ctx.CompileBytes(data, cue.Filename("fixture.json")))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}

	return checkReferences(f)
}

// DecodeCUE compiles a CUE fixture, unifies it with the schema and decodes
// the result.
func DecodeCUE(src []byte, filename string) (*Fixture, error) {
	ctx := cuecontext.New()
	def, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}

	raw := ctx.CompileBytes(src, cue.Filename(filename))
	if err := raw.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := def.Unify(raw)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var f Fixture
	if err := v.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	if err := checkReferences(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// formatCUEError converts the first CUE error into an *Error with position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	fe := &Error{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		fe.Pos = positions[0]
	}
	return fe
}

// checkReferences enforces unique IDs per row type and that every parent
// names a node of the same fixture other than itself.
func checkReferences(f *Fixture) error {
	seen := make(map[string]bool, len(f.Units))
	markups := make(map[string]bool)
	for i, u := range f.Units {
		if u.ID != "" {
			if seen[u.ID] {
				return &Error{Field: fmt.Sprintf("units[%d].id", i), Message: fmt.Sprintf("duplicate unit id %q", u.ID)}
			}
			seen[u.ID] = true
		}
		for j, m := range u.Markups {
			if m.ID == "" {
				continue
			}
			if markups[m.ID] {
				return &Error{Field: fmt.Sprintf("units[%d].markups[%d].id", i, j), Message: fmt.Sprintf("duplicate markup id %q", m.ID)}
			}
			markups[m.ID] = true
		}
	}

	nodes := make(map[string]bool, len(f.Discourse))
	for i, n := range f.Discourse {
		if n.ID == "" {
			continue
		}
		if nodes[n.ID] {
			return &Error{Field: fmt.Sprintf("discourse[%d].id", i), Message: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		nodes[n.ID] = true
	}
	for i, n := range f.Discourse {
		if n.Parent == "" {
			continue
		}
		if n.Parent == n.ID {
			return &Error{Field: fmt.Sprintf("discourse[%d].parent", i), Message: "node cannot be its own parent"}
		}
		if !nodes[n.Parent] {
			return &Error{Field: fmt.Sprintf("discourse[%d].parent", i), Message: fmt.Sprintf("unknown parent %q", n.Parent)}
		}
	}
	return nil
}
