// Package script loads YAML replay scripts and plays them against a
// challenge rendered on a layout.Board.
package script

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/dragdrop"
	"github.com/kyiku/tile-captcha/internal/input"
)

// ErrInvalidScript is returned when a script fails schema validation.
var ErrInvalidScript = errors.New("invalid replay script")

const schemaURL = "https://github.com/kyiku/tile-captcha/script.schema.json"

//go:embed script.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Event is one scripted input event. Without Item, the board hit-tests X and Y.
type Event struct {
	Type string  `yaml:"type"`
	Item *int    `yaml:"item"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Script is a replayable sequence of input events for one challenge.
type Script struct {
	Name             string  `yaml:"name"`
	Kind             string  `yaml:"kind"`
	Items            int     `yaml:"items"`
	Steps            int     `yaml:"steps"`
	Columns          int     `yaml:"columns"`
	Policy           string  `yaml:"policy"`
	CounterClockwise bool    `yaml:"counter_clockwise"`
	Cell             float64 `yaml:"cell"`
	Tolerance        float64 `yaml:"tolerance"`
	Events           []Event `yaml:"events"`
	Expect           any     `yaml:"expect"`
}

// Parse validates data against the script schema and decodes it.
func Parse(data []byte) (*Script, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	// round-trip through JSON so the validator sees JSON types
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile script schema: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Options returns the challenge options, starting from the kind defaults.
func (s *Script) Options() (challenge.Kind, challenge.Options, error) {
	kind, err := challenge.ParseKind(s.Kind)
	if err != nil {
		return "", challenge.Options{}, err
	}

	opts := challenge.DefaultOptions(kind)
	if s.Steps > 0 {
		opts.Steps = s.Steps
	}
	if s.Columns > 0 {
		opts.Columns = s.Columns
	}
	if s.Policy != "" {
		p, err := dragdrop.ParsePolicy(s.Policy)
		if err != nil {
			return "", challenge.Options{}, err
		}
		opts.Policy = p
	}
	opts.CounterClockwise = s.CounterClockwise
	return kind, opts, nil
}

// Expected returns the expected solution, if the script has one.
func (s *Script) Expected(kind challenge.Kind) (challenge.Solution, bool, error) {
	if s.Expect == nil {
		return challenge.Solution{}, false, nil
	}
	raw, err := json.Marshal(s.Expect)
	if err != nil {
		return challenge.Solution{}, false, err
	}
	sol, err := challenge.ParseSolution(kind, raw)
	if err != nil {
		return challenge.Solution{}, false, err
	}
	return sol, true, nil
}

func (e Event) kind() (input.Kind, error) {
	return input.ParseKind(e.Type)
}
