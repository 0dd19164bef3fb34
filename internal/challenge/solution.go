package challenge

import (
	"encoding/json"
	"fmt"

	"github.com/kyiku/tile-captcha/internal/arrangement"
	"github.com/kyiku/tile-captcha/internal/rotation"
)

// Placement is the slot and angle of one grid item.
// It is encoded as a two element JSON array.
type Placement struct {
	Slot  int
	Angle float64
}

// MarshalJSON encodes the placement as [slot, angle].
func (p Placement) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Slot, p.Angle})
}

// UnmarshalJSON decodes [slot, angle].
func (p *Placement) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("placement must have 2 elements, got %d", len(pair))
	}
	var slot int
	if err := json.Unmarshal(pair[0], &slot); err != nil {
		return fmt.Errorf("placement slot: %w", err)
	}
	var angle float64
	if err := json.Unmarshal(pair[1], &angle); err != nil {
		return fmt.Errorf("placement angle: %w", err)
	}
	p.Slot = slot
	p.Angle = angle
	return nil
}

// Solution is a read-only view of the manipulation state.
// Exactly one of Angles, Order or Placements is set, depending on Kind.
type Solution struct {
	Kind       Kind
	Angles     []float64
	Order      []int
	Placements []Placement
}

// MarshalJSON encodes the solution as the bare list for its kind.
func (s Solution) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindCircles:
		return json.Marshal(nonNil(s.Angles))
	case KindRows:
		return json.Marshal(nonNil(s.Order))
	case KindGrid:
		return json.Marshal(nonNil(s.Placements))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
}

// Len returns the number of entries.
func (s Solution) Len() int {
	switch s.Kind {
	case KindCircles:
		return len(s.Angles)
	case KindRows:
		return len(s.Order)
	case KindGrid:
		return len(s.Placements)
	}
	return 0
}

// ParseSolution decodes a bare list produced by MarshalJSON for kind.
func ParseSolution(kind Kind, data []byte) (Solution, error) {
	s := Solution{Kind: kind}
	var err error
	switch kind {
	case KindCircles:
		err = json.Unmarshal(data, &s.Angles)
	case KindRows:
		err = json.Unmarshal(data, &s.Order)
	case KindGrid:
		err = json.Unmarshal(data, &s.Placements)
	default:
		return Solution{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return Solution{}, fmt.Errorf("failed to decode %s solution: %w", kind, err)
	}
	return s, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Collector derives the solution from live controller state. Nothing is
// cached, so it can be read mid-gesture.
type Collector struct {
	kind      Kind
	rotations []*rotation.Controller
	model     *arrangement.Model
}

// NewCollector creates a collector. rotations are indexed by render order;
// model may be nil for circles and rotations empty for rows.
func NewCollector(kind Kind, rotations []*rotation.Controller, model *arrangement.Model) *Collector {
	return &Collector{
		kind:      kind,
		rotations: rotations,
		model:     model,
	}
}

// Solution reads the current solution.
func (c *Collector) Solution() (Solution, error) {
	s := Solution{Kind: c.kind}
	switch c.kind {
	case KindCircles:
		s.Angles = make([]float64, len(c.rotations))
		for i, r := range c.rotations {
			s.Angles[i] = r.Current()
		}
	case KindRows:
		s.Order = c.model.Order()
	case KindGrid:
		s.Placements = make([]Placement, len(c.rotations))
		for i, r := range c.rotations {
			slot, err := c.model.SlotOf(i)
			if err != nil {
				return Solution{}, err
			}
			s.Placements[i] = Placement{Slot: slot, Angle: r.Current()}
		}
	default:
		return Solution{}, fmt.Errorf("%w: %q", ErrUnknownKind, c.kind)
	}
	return s, nil
}
