package fixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Fixture is the decoded form of a fixture file.
type Fixture struct {
	Tablet    TabletSpec `yaml:"tablet" json:"tablet"`
	Units     []UnitSpec `yaml:"units,omitempty" json:"units,omitempty"`
	Discourse []NodeSpec `yaml:"discourse,omitempty" json:"discourse,omitempty"`
}

// TabletSpec names the tablet.
type TabletSpec struct {
	ID          string `yaml:"id" json:"id"`
	Designation string `yaml:"designation,omitempty" json:"designation,omitempty"`
}

// UnitSpec is one epigraphic unit. Its position in Fixture.Units is its
// physical order.
type UnitSpec struct {
	ID      string       `yaml:"id,omitempty" json:"id,omitempty"`
	Kind    string       `yaml:"kind" json:"kind"`
	Reading string       `yaml:"reading,omitempty" json:"reading,omitempty"`
	Markups []MarkupSpec `yaml:"markups,omitempty" json:"markups,omitempty"`
}

// MarkupSpec is one markup on the enclosing unit. A nil Value is stored as null.
type MarkupSpec struct {
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
	Kind  string `yaml:"kind" json:"kind"`
	Value *int64 `yaml:"value,omitempty" json:"value,omitempty"`
}

// NodeSpec is one discourse node. Its position in Fixture.Discourse is its
// discourse order. Parent must name the ID of another node in the fixture.
type NodeSpec struct {
	ID            string `yaml:"id,omitempty" json:"id,omitempty"`
	Parent        string `yaml:"parent,omitempty" json:"parent,omitempty"`
	Kind          string `yaml:"kind" json:"kind"`
	Transcription string `yaml:"transcription,omitempty" json:"transcription,omitempty"`
}

// Error describes an invalid fixture.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads, decodes and validates a fixture file. The format is chosen by
// extension: .yaml and .yml are YAML, .cue is CUE.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".cue":
		return DecodeCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// DecodeYAML parses a YAML fixture and validates it against the schema.
// Unknown fields are rejected.
func DecodeYAML(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
