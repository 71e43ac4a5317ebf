package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tabletpos/internal/fixture"
)

// Scenario is one recompute conformance case: a tablet, optional edits
// applied after the first recompute, and assertions on the final rows.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the tablet, inline. Exactly one of Fixture and FixtureFile
	// must be set.
	Fixture *fixture.Fixture `yaml:"fixture,omitempty"`

	// FixtureFile is a fixture path relative to the scenario file.
	FixtureFile string `yaml:"fixture_file,omitempty"`

	// Edits are applied in order, in one transaction, after the initial
	// recompute. The tablet is then recomputed again.
	Edits []Edit `yaml:"edits,omitempty"`

	// Assertions validate the rows after the last recompute.
	Assertions []Assertion `yaml:"assertions"`
}

// Edit is one structural change to the tablet, standing in for an editor.
type Edit struct {
	// Op is one of the Edit* constants.
	Op string `yaml:"op"`

	// ID names the row the edit targets or creates. Inserts without an ID
	// get a generated one.
	ID string `yaml:"id,omitempty"`

	// After places an inserted or moved row directly after the row with this
	// ID. Empty means first.
	After string `yaml:"after,omitempty"`

	// Kind is the unit, node or markup kind for inserts.
	Kind string `yaml:"kind,omitempty"`

	// Reading is the reading of an inserted unit.
	Reading string `yaml:"reading,omitempty"`

	// Parent is the parent of an inserted or moved node. Empty means root.
	Parent string `yaml:"parent,omitempty"`

	// Unit is the unit a markup is added to.
	Unit string `yaml:"unit,omitempty"`

	// Value is the numeric value of an added markup.
	Value *int64 `yaml:"value,omitempty"`
}

// Edit operations.
const (
	EditInsertUnit   = "insert_unit"
	EditDeleteUnit   = "delete_unit"
	EditMoveUnit     = "move_unit"
	EditAddMarkup    = "add_markup"
	EditRemoveMarkup = "remove_markup"
	EditInsertNode   = "insert_node"
	EditDeleteNode   = "delete_node"
	EditMoveNode     = "move_node"
)

// Assertion validates the final rows or the recompute reports.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Expect lists rendered field values ("-" for null), one per row in
	// stored order, for the column assertions.
	Expect []string `yaml:"expect,omitempty"`

	// IDs restricts a column assertion to these rows, in this order.
	IDs []string `yaml:"ids,omitempty"`

	// Units and Nodes are the expected write counts for writes.
	Units *int `yaml:"units,omitempty"`
	Nodes *int `yaml:"nodes,omitempty"`
}

// Assertion type constants.
const (
	AssertLineNumbers    = "line_numbers"
	AssertCharOnTablet   = "char_on_tablet"
	AssertCharOnLine     = "char_on_line"
	AssertObjectOnTablet = "object_on_tablet"
	AssertObjectInText   = "object_in_text"
	AssertWordOnTablet   = "word_on_tablet"
	AssertChildNum       = "child_num"
	AssertWrites         = "writes"
	AssertIdempotent     = "idempotent"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// FixtureFile is resolved relative to the scenario's directory and loaded.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.FixtureFile != "" && scenario.Fixture == nil {
		fixturePath := scenario.FixtureFile
		if !filepath.IsAbs(fixturePath) {
			fixturePath = filepath.Join(filepath.Dir(path), fixturePath)
		}
		f, err := fixture.Load(fixturePath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: fixture_file: %w", err)
		}
		scenario.Fixture = f
	} else if scenario.Fixture != nil {
		if scenario.FixtureFile != "" {
			return nil, fmt.Errorf("invalid scenario: fixture and fixture_file are mutually exclusive")
		}
		if err := fixture.Validate(scenario.Fixture); err != nil {
			return nil, fmt.Errorf("invalid scenario: fixture: %w", err)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Fixture == nil {
		return fmt.Errorf("fixture or fixture_file is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, e := range s.Edits {
		if err := validateEdit(i, e); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateEdit checks that an edit carries the fields its op needs.
func validateEdit(index int, e Edit) error {
	switch e.Op {
	case EditInsertUnit, EditInsertNode:
		if e.Kind == "" {
			return fmt.Errorf("edits[%d]: kind is required for %s", index, e.Op)
		}
	case EditDeleteUnit, EditDeleteNode, EditRemoveMarkup, EditMoveUnit, EditMoveNode:
		if e.ID == "" {
			return fmt.Errorf("edits[%d]: id is required for %s", index, e.Op)
		}
		if e.ID == e.After {
			return fmt.Errorf("edits[%d]: cannot place %s after itself", index, e.ID)
		}
	case EditAddMarkup:
		if e.Unit == "" || e.Kind == "" {
			return fmt.Errorf("edits[%d]: unit and kind are required for add_markup", index)
		}
	case "":
		return fmt.Errorf("edits[%d]: op is required", index)
	default:
		return fmt.Errorf("edits[%d]: unknown op %q", index, e.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertLineNumbers, AssertCharOnTablet, AssertCharOnLine, AssertObjectOnTablet,
		AssertObjectInText, AssertWordOnTablet, AssertChildNum:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
		if a.IDs != nil && len(a.IDs) != len(a.Expect) {
			return fmt.Errorf("assertions[%d]: ids and expect must have the same length", index)
		}
	case AssertWrites:
		if a.Units == nil && a.Nodes == nil {
			return fmt.Errorf("assertions[%d]: units or nodes is required for writes", index)
		}
	case AssertIdempotent:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
