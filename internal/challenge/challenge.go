// Package challenge composes rotation controllers and drag coordinators into
// the three CAPTCHA challenge types and exposes their solution.
package challenge

import (
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/arrangement"
	"github.com/kyiku/tile-captcha/internal/dragdrop"
	"github.com/kyiku/tile-captcha/internal/input"
	"github.com/kyiku/tile-captcha/internal/rotation"
)

var (
	ErrDestroyed      = errors.New("challenge destroyed")
	ErrInvalidOptions = errors.New("invalid challenge options")
)

// Adapter is implemented by the UI layer. It answers bounds queries and
// applies visual state computed by the controllers.
type Adapter interface {
	rotation.BoundsProvider
	rotation.RotationSink
	dragdrop.OrderSink
	dragdrop.HighlightSink
}

// Challenge is one rendered challenge instance.
type Challenge struct {
	kind    Kind
	size    int
	options Options

	rotations   []*rotation.Controller
	coordinator *dragdrop.Coordinator
	collector   *Collector

	dispatcher *input.Dispatcher
	logger     *log.Logger
	destroyed  bool
}

// New renders a challenge of kind with n items, subscribing its controllers
// to d. Item IDs are render indices 0..n-1.
func New(kind Kind, n int, adapter Adapter, d *input.Dispatcher, opts Options) (*Challenge, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d items", ErrInvalidOptions, n)
	}
	if opts.Steps < 1 || opts.Columns < 1 {
		return nil, fmt.Errorf("%w: steps=%d columns=%d", ErrInvalidOptions, opts.Steps, opts.Columns)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New("challenge")
	}

	c := &Challenge{
		kind:       kind,
		size:       n,
		options:    opts,
		dispatcher: d,
		logger:     logger,
	}
	if err := c.build(adapter); err != nil {
		c.release()
		return nil, err
	}

	var model *arrangement.Model
	if c.coordinator != nil {
		model = c.coordinator.Model()
	}
	c.collector = NewCollector(kind, c.rotations, model)

	logger.Infof("rendered %s challenge with %d items", kind, n)
	return c, nil
}

func (c *Challenge) build(adapter Adapter) error {
	if c.kind.Arranges() {
		model, err := arrangement.NewModel(c.size)
		if err != nil {
			return err
		}
		coordinator, err := dragdrop.NewCoordinator(model, c.options.Policy, adapter, adapter)
		if err != nil {
			return err
		}
		c.coordinator = coordinator
		if err := coordinator.Bind(c.dispatcher); err != nil {
			return err
		}
	}

	if !c.kind.Rotates() {
		return nil
	}

	var inputs []rotation.Input
	switch c.kind {
	case KindCircles:
		inputs = []rotation.Input{rotation.DragInput{}}
	case KindGrid:
		inputs = []rotation.Input{rotation.ClickInput{CounterClockwise: c.options.CounterClockwise}}
	}
	for i := 0; i < c.size; i++ {
		r, err := rotation.NewController(input.ItemID(i), c.options.Steps, adapter, adapter)
		if err != nil {
			return err
		}
		c.rotations = append(c.rotations, r)
		if _, err := r.Bind(c.dispatcher, inputs...); err != nil {
			return err
		}
	}
	return nil
}

// Kind returns the challenge type.
func (c *Challenge) Kind() Kind { return c.kind }

// Len returns the number of items.
func (c *Challenge) Len() int { return c.size }

// Columns returns the layout width.
func (c *Challenge) Columns() int { return c.options.Columns }

// Options returns the options the challenge was rendered with.
func (c *Challenge) Options() Options { return c.options }

// Rotation returns the controller of item, or nil for kinds without rotation.
func (c *Challenge) Rotation(item int) *rotation.Controller {
	if item < 0 || item >= len(c.rotations) {
		return nil
	}
	return c.rotations[item]
}

// Coordinator returns the drag coordinator, or nil for kinds without arrangement.
func (c *Challenge) Coordinator() *dragdrop.Coordinator {
	return c.coordinator
}

// Handle dispatches ev. Rejected events are logged and returned so the adapter
// can ignore the gesture; the challenge stays consistent either way.
func (c *Challenge) Handle(ev input.Event) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if err := c.dispatcher.Dispatch(ev); err != nil {
		c.logger.Debugf("ignored %s on item %d: %v", ev.Kind, ev.Item, err)
		return err
	}
	return nil
}

// Solution reads the live solution.
func (c *Challenge) Solution() (Solution, error) {
	if c.destroyed {
		return Solution{}, ErrDestroyed
	}
	return c.collector.Solution()
}

// Reset restores every item to its post-render state. Calling it repeatedly
// has the same effect as calling it once.
func (c *Challenge) Reset() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.coordinator != nil {
		if err := c.coordinator.Reset(); err != nil {
			return err
		}
	}
	for _, r := range c.rotations {
		if err := r.Reset(); err != nil {
			return err
		}
	}
	if captured, ok := c.dispatcher.Captured(); ok {
		captured.ReleaseCapture()
	}
	return nil
}

// Destroy releases every controller and subscription. It is terminal.
func (c *Challenge) Destroy() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.release()
	c.destroyed = true
	c.logger.Infof("destroyed %s challenge", c.kind)
	return nil
}

func (c *Challenge) release() {
	for _, r := range c.rotations {
		_ = r.Destroy()
	}
	if c.coordinator != nil {
		_ = c.coordinator.Destroy()
	}
}
