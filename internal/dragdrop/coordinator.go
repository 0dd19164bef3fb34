// Package dragdrop interprets drag gestures against an arrangement.Model.
package dragdrop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kyiku/tile-captcha/internal/arrangement"
	"github.com/kyiku/tile-captcha/internal/input"
)

var (
	ErrUnknownPolicy = errors.New("unknown drop policy")
	ErrNoDragSession = errors.New("no drag in progress")
	ErrDestroyed     = errors.New("drag coordinator destroyed")
)

// Policy selects how a drop reorders the arrangement.
type Policy int

const (
	// PolicyInsert moves the dragged item next to the drop target and shifts
	// the items in between.
	PolicyInsert Policy = iota
	// PolicySwap exchanges the dragged item with the drop target.
	PolicySwap
)

func (p Policy) String() string {
	switch p {
	case PolicyInsert:
		return "insert"
	case PolicySwap:
		return "swap"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy parses "insert" or "swap".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return PolicyInsert, nil
	case "swap":
		return PolicySwap, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Highlight is the set of transient visual states of one item.
type Highlight uint8

const (
	HighlightDragged Highlight = 1 << iota
	HighlightDropTarget
	HighlightOver

	HighlightNone Highlight = 0
)

// Has reports whether every flag in f is set.
func (h Highlight) Has(f Highlight) bool {
	return h&f == f
}

// NoTarget marks a session without a hover target.
const NoTarget = -1

// Session describes the drag in progress.
type Session struct {
	SourceIndex int
	DraggedItem int
	HoverTarget int
}

// OrderSink receives the committed order after each reorder.
type OrderSink interface {
	ApplyVisualOrder(order []int)
}

// HighlightSink receives highlight changes per item.
type HighlightSink interface {
	ApplyHighlight(item input.ItemID, h Highlight)
}

// Coordinator owns one arrangement and the transient state of the drag on it.
type Coordinator struct {
	model  *arrangement.Model
	policy Policy

	orderSink     OrderSink
	highlightSink HighlightSink

	session    *Session
	highlights map[int]Highlight

	subs      []*input.Subscription
	destroyed bool
}

// NewCoordinator creates a coordinator for model with a fixed drop policy.
// Either sink may be nil.
func NewCoordinator(model *arrangement.Model, policy Policy, orderSink OrderSink, highlightSink HighlightSink) (*Coordinator, error) {
	if policy != PolicyInsert && policy != PolicySwap {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}
	return &Coordinator{
		model:         model,
		policy:        policy,
		orderSink:     orderSink,
		highlightSink: highlightSink,
		highlights:    make(map[int]Highlight),
	}, nil
}

// Policy returns the drop policy.
func (c *Coordinator) Policy() Policy { return c.policy }

// Model returns the arrangement the coordinator mutates.
func (c *Coordinator) Model() *arrangement.Model { return c.model }

// Session returns the drag in progress, if any.
func (c *Coordinator) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Highlight returns the transient highlight of item.
func (c *Coordinator) Highlight(item int) Highlight {
	return c.highlights[item]
}

// DragStart begins a drag from slot. The dragged item is marked Dragged and
// every other item becomes a drop target.
func (c *Coordinator) DragStart(slot int) (Session, error) {
	if c.destroyed {
		return Session{}, ErrDestroyed
	}
	item, err := c.model.At(slot)
	if err != nil {
		return Session{}, err
	}
	c.clearHighlights()

	c.session = &Session{
		SourceIndex: slot,
		DraggedItem: item,
		HoverTarget: NoTarget,
	}
	for _, it := range c.model.Order() {
		if it == item {
			c.setHighlight(it, HighlightDragged)
		} else {
			c.setHighlight(it, HighlightDropTarget)
		}
	}
	return *c.session, nil
}

// DragEnter marks the item in slot as hovered, unless it is the dragged item.
// It only touches highlight state, never the order.
func (c *Coordinator) DragEnter(slot int) error {
	if c.destroyed {
		return ErrDestroyed
	}
	item, err := c.model.At(slot)
	if err != nil {
		return err
	}
	if c.session == nil || item == c.session.DraggedItem {
		return nil
	}
	c.session.HoverTarget = item
	c.setHighlight(item, c.highlights[item]|HighlightOver)
	return nil
}

// DragOver reports whether a drop on slot would be accepted.
func (c *Coordinator) DragOver(slot int) bool {
	if c.destroyed || c.session == nil {
		return false
	}
	_, err := c.model.At(slot)
	return err == nil
}

// DragLeave removes the hover mark from the item in slot.
func (c *Coordinator) DragLeave(slot int) error {
	if c.destroyed {
		return ErrDestroyed
	}
	item, err := c.model.At(slot)
	if err != nil {
		return err
	}
	if h, ok := c.highlights[item]; ok && h.Has(HighlightOver) {
		c.setHighlight(item, h&^HighlightOver)
	}
	if c.session != nil && c.session.HoverTarget == item {
		c.session.HoverTarget = NoTarget
	}
	return nil
}

// Drop commits the drag onto slot according to the policy. Dropping on the
// source slot is a no-op that returns false. Transient state is cleared in
// every case.
func (c *Coordinator) Drop(slot int) (bool, error) {
	if c.destroyed {
		return false, ErrDestroyed
	}
	session := c.session
	c.endSession()

	if session == nil {
		return false, ErrNoDragSession
	}
	if slot == session.SourceIndex {
		return false, nil
	}

	var (
		changed bool
		err     error
	)
	switch c.policy {
	case PolicySwap:
		changed, err = c.model.Swap(session.SourceIndex, slot)
	case PolicyInsert:
		// dragging rightwards lands after the target, leftwards before it
		if session.SourceIndex < slot {
			changed, err = c.model.InsertAfter(session.SourceIndex, slot)
		} else {
			changed, err = c.model.InsertBefore(session.SourceIndex, slot)
		}
	}
	if err != nil {
		return false, err
	}
	if changed && c.orderSink != nil {
		c.orderSink.ApplyVisualOrder(c.model.Order())
	}
	return changed, nil
}

// DragEnd clears all transient state. It covers cancelled drags and drops
// outside any target.
func (c *Coordinator) DragEnd() {
	c.endSession()
}

// Reset cancels any drag and restores render order.
func (c *Coordinator) Reset() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.endSession()
	c.model.Reset()
	if c.orderSink != nil {
		c.orderSink.ApplyVisualOrder(c.model.Order())
	}
	return nil
}

// Bind subscribes the coordinator to drag events on every item.
func (c *Coordinator) Bind(d *input.Dispatcher) error {
	if c.destroyed {
		return ErrDestroyed
	}
	for item := 0; item < c.model.Len(); item++ {
		c.subs = append(c.subs, d.Subscribe(input.ItemID(item), input.HandlerFunc(c.handleEvent)))
	}
	return nil
}

func (c *Coordinator) handleEvent(_ *input.Subscription, ev input.Event) error {
	if ev.Kind == input.DragEnd {
		c.DragEnd()
		return nil
	}

	var slot int
	switch ev.Kind {
	case input.DragStart, input.DragEnter, input.DragOver, input.DragLeave, input.Drop:
		s, err := c.model.SlotOf(int(ev.Item))
		if err != nil {
			return err
		}
		slot = s
	default:
		return nil
	}

	switch ev.Kind {
	case input.DragStart:
		_, err := c.DragStart(slot)
		return err
	case input.DragEnter:
		return c.DragEnter(slot)
	case input.DragOver:
		c.DragOver(slot)
	case input.DragLeave:
		return c.DragLeave(slot)
	case input.Drop:
		_, err := c.Drop(slot)
		return err
	}
	return nil
}

// Destroy releases subscriptions and transient state.
func (c *Coordinator) Destroy() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.endSession()
	for _, sub := range c.subs {
		sub.Release()
	}
	c.subs = nil
	c.destroyed = true
	return nil
}

func (c *Coordinator) endSession() {
	c.session = nil
	c.clearHighlights()
}

func (c *Coordinator) clearHighlights() {
	for item := range c.highlights {
		c.setHighlight(item, HighlightNone)
	}
}

func (c *Coordinator) setHighlight(item int, h Highlight) {
	old, ok := c.highlights[item]
	if (ok && old == h) || (!ok && h == HighlightNone) {
		return
	}
	if h == HighlightNone {
		delete(c.highlights, item)
	} else {
		c.highlights[item] = h
	}
	if c.highlightSink != nil {
		c.highlightSink.ApplyHighlight(input.ItemID(item), h)
	}
}
