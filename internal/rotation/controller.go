// Package rotation turns pointer gestures and discrete steps into a snapped
// rotation angle for a single item.
package rotation

import (
	"errors"
	"fmt"

	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
)

var (
	ErrInvalidStepCount = errors.New("step count must be at least 1")
	ErrDestroyed        = errors.New("rotation controller destroyed")
	ErrNoBounds         = errors.New("no bounds provider configured")
	ErrInvalidAngle     = errors.New("angle must be finite")
)

// BoundsProvider returns the current visual bounds of an item.
type BoundsProvider interface {
	Bounds(item input.ItemID) (geometry.Rect, error)
}

// RotationSink receives every committed angle change.
type RotationSink interface {
	ApplyVisualRotation(item input.ItemID, degrees float64)
}

type nopSink struct{}

func (nopSink) ApplyVisualRotation(input.ItemID, float64) {}

// State is the gesture state of a Controller.
type State int

const (
	Idle State = iota
	Rotating
)

func (s State) String() string {
	if s == Rotating {
		return "rotating"
	}
	return "idle"
}

// Controller owns the rotation state of one item.
type Controller struct {
	item    input.ItemID
	steps   int
	current float64
	state   State
	pivot   geometry.Point

	bounds BoundsProvider
	sink   RotationSink

	subs      []*input.Subscription
	destroyed bool
}

// NewController creates a controller for item with steps snap positions.
// bounds may be nil when only discrete input is used.
func NewController(item input.ItemID, steps int, bounds BoundsProvider, sink RotationSink) (*Controller, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStepCount, steps)
	}
	if sink == nil {
		sink = nopSink{}
	}
	return &Controller{
		item:   item,
		steps:  steps,
		bounds: bounds,
		sink:   sink,
	}, nil
}

// Item returns the item this controller rotates.
func (c *Controller) Item() input.ItemID { return c.item }

// Steps returns the number of snap positions around the circle.
func (c *Controller) Steps() int { return c.steps }

// Current returns the current angle in [0, 360).
func (c *Controller) Current() float64 { return c.current }

// State returns the gesture state.
func (c *Controller) State() State { return c.state }

// IsActive reports whether a rotate gesture is in progress.
func (c *Controller) IsActive() bool { return c.state == Rotating }

// Pivot returns the pivot captured at the last gesture start.
func (c *Controller) Pivot() geometry.Point { return c.pivot }

// Rotate sets the angle. Input is reduced with a true modulo and snapped to the
// step grid. The sink is only notified when the stored angle changes.
func (c *Controller) Rotate(degrees float64) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if !geometry.Finite(degrees) {
		return fmt.Errorf("%w: got %v", ErrInvalidAngle, degrees)
	}
	angle := geometry.Snap(degrees, c.steps)
	if angle == c.current {
		return nil
	}
	c.current = angle
	c.sink.ApplyVisualRotation(c.item, angle)
	return nil
}

// StepClockwise rotates one step clockwise. Valid in any state.
func (c *Controller) StepClockwise() error {
	return c.Rotate(c.current + geometry.StepSize(c.steps))
}

// StepCounterClockwise rotates one step counter-clockwise. Valid in any state.
func (c *Controller) StepCounterClockwise() error {
	return c.Rotate(c.current - geometry.StepSize(c.steps))
}

// Reset ends any gesture and rotates back to 0.
func (c *Controller) Reset() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.state = Idle
	return c.Rotate(0)
}

// BeginGesture samples the pivot from the item's current bounds and enters Rotating.
// The pivot stays fixed until the next BeginGesture so the item's own rotation
// cannot feed back into the angle.
func (c *Controller) BeginGesture() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.bounds == nil {
		return ErrNoBounds
	}
	rect, err := c.bounds.Bounds(c.item)
	if err != nil {
		return fmt.Errorf("failed to read bounds of item %d: %w", c.item, err)
	}
	c.pivot = rect.Center()
	c.state = Rotating
	return nil
}

// MoveGesture commits the snapped angle of pointer around the pivot.
// It returns false when no gesture is active.
func (c *Controller) MoveGesture(pointer geometry.Point) (bool, error) {
	if c.destroyed {
		return false, ErrDestroyed
	}
	if c.state != Rotating {
		return false, nil
	}
	if !pointer.Finite() {
		return false, fmt.Errorf("%w: pointer (%v, %v)", ErrInvalidAngle, pointer.X, pointer.Y)
	}
	if err := c.Rotate(geometry.SnappedAngle(c.pivot, pointer, c.steps)); err != nil {
		return false, err
	}
	return true, nil
}

// EndGesture leaves Rotating without changing the angle.
// It returns false when no gesture was active.
func (c *Controller) EndGesture() bool {
	if c.state != Rotating {
		return false
	}
	c.state = Idle
	return true
}

// Bind subscribes the controller to events on its item, feeding them through
// the given input strategies in order.
func (c *Controller) Bind(d *input.Dispatcher, inputs ...Input) (*input.Subscription, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	sub := d.Subscribe(c.item, input.HandlerFunc(func(sub *input.Subscription, ev input.Event) error {
		var errs []error
		for _, in := range inputs {
			if err := in.Handle(c, sub, ev); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}))
	c.subs = append(c.subs, sub)
	return sub, nil
}

// Destroy releases every subscription. The controller is unusable afterwards.
func (c *Controller) Destroy() error {
	if c.destroyed {
		return ErrDestroyed
	}
	for _, sub := range c.subs {
		sub.Release()
	}
	c.subs = nil
	c.state = Idle
	c.destroyed = true
	return nil
}
