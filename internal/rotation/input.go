package rotation

import (
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
)

// Input is a strategy that maps normalized events to controller operations.
// A controller can be bound with several strategies at once.
type Input interface {
	Handle(c *Controller, sub *input.Subscription, ev input.Event) error
}

// DragInput rotates the item while the pointer is held down on it.
// It captures the pointer for the duration of the gesture.
type DragInput struct{}

// Handle implements Input.
func (DragInput) Handle(c *Controller, sub *input.Subscription, ev input.Event) error {
	switch ev.Kind {
	case input.PointerDown:
		if err := c.BeginGesture(); err != nil {
			return err
		}
		return sub.Capture()
	case input.PointerMove:
		// a gesture that lost the pointer stops following it
		if !sub.HasCapture() {
			return nil
		}
		_, err := c.MoveGesture(geometry.Point{X: ev.X, Y: ev.Y})
		return err
	case input.PointerUp:
		c.EndGesture()
		sub.ReleaseCapture()
	}
	return nil
}

// ClickInput rotates the item one step per click.
type ClickInput struct {
	CounterClockwise bool
}

// Handle implements Input.
func (in ClickInput) Handle(c *Controller, _ *input.Subscription, ev input.Event) error {
	if ev.Kind != input.Click {
		return nil
	}
	if in.CounterClockwise {
		return c.StepCounterClockwise()
	}
	return c.StepClockwise()
}
