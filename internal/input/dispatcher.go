// Package input routes normalized pointer and drag events from an adapter to
// the controllers that subscribed to them.
package input

import (
	"errors"
	"fmt"
)

// ItemID identifies a rendered item by its render index.
type ItemID int

// NoItem is used for events that are not bound to an item.
const NoItem ItemID = -1

// Kind is the type of a normalized input event.
type Kind int

// Event kinds.
const (
	PointerDown Kind = iota + 1
	PointerMove
	PointerUp
	Click
	DragStart
	DragEnter
	DragOver
	DragLeave
	DragEnd
	Drop
)

var kindNames = map[Kind]string{
	PointerDown: "pointer_down",
	PointerMove: "pointer_move",
	PointerUp:   "pointer_up",
	Click:       "click",
	DragStart:   "drag_start",
	DragEnter:   "drag_enter",
	DragOver:    "drag_over",
	DragLeave:   "drag_leave",
	DragEnd:     "drag_end",
	Drop:        "drop",
}

// String returns the snake_case name used in replay scripts.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Event is one normalized input event.
// Item is the element the event fired on; X and Y are only meaningful for pointer events.
type Event struct {
	Kind Kind
	Item ItemID
	X    float64
	Y    float64
}

// Handler consumes events delivered by a Dispatcher.
type Handler interface {
	HandleEvent(sub *Subscription, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(sub *Subscription, ev Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(sub *Subscription, ev Event) error {
	return f(sub, ev)
}

// ErrReleased is returned when a released subscription is used.
var ErrReleased = errors.New("subscription released")

// Dispatcher delivers events to per-item subscriptions.
// It is not safe for concurrent use; all events of one challenge arrive on one goroutine.
type Dispatcher struct {
	subs    map[ItemID][]*Subscription
	capture *Subscription
	count   int
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subs: make(map[ItemID][]*Subscription),
	}
}

// Subscribe registers h for events fired on item.
// The returned handle must be released when the subscriber is destroyed.
func (d *Dispatcher) Subscribe(item ItemID, h Handler) *Subscription {
	sub := &Subscription{
		dispatcher: d,
		item:       item,
		handler:    h,
	}
	d.subs[item] = append(d.subs[item], sub)
	d.count++
	return sub
}

// Len returns the number of live subscriptions.
func (d *Dispatcher) Len() int {
	return d.count
}

// Captured returns the subscription holding pointer capture, if any.
func (d *Dispatcher) Captured() (*Subscription, bool) {
	return d.capture, d.capture != nil
}

// Dispatch delivers ev. While a subscription holds pointer capture, PointerMove
// and PointerUp go only to it regardless of ev.Item; without capture they are dropped
// unless some subscriber is bound to ev.Item.
func (d *Dispatcher) Dispatch(ev Event) error {
	if d.capture != nil && (ev.Kind == PointerMove || ev.Kind == PointerUp) {
		return d.capture.handler.HandleEvent(d.capture, ev)
	}

	targets := append([]*Subscription(nil), d.subs[ev.Item]...)

	var errs []error
	for _, sub := range targets {
		if sub.released {
			continue
		}
		if err := sub.handler.HandleEvent(sub, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s on item %d: %w", ev.Kind, ev.Item, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) remove(sub *Subscription) {
	list := d.subs[sub.item]
	for i, s := range list {
		if s == sub {
			d.subs[sub.item] = append(list[:i], list[i+1:]...)
			d.count--
			break
		}
	}
	if len(d.subs[sub.item]) == 0 {
		delete(d.subs, sub.item)
	}
	if d.capture == sub {
		d.capture = nil
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	dispatcher *Dispatcher
	item       ItemID
	handler    Handler
	released   bool
}

// Item returns the item this subscription listens on.
func (s *Subscription) Item() ItemID {
	return s.item
}

// Capture routes all following PointerMove and PointerUp events to s until
// ReleaseCapture. A new capture replaces the previous one.
func (s *Subscription) Capture() error {
	if s.released {
		return ErrReleased
	}
	s.dispatcher.capture = s
	return nil
}

// ReleaseCapture ends pointer capture if s holds it.
func (s *Subscription) ReleaseCapture() {
	if s.dispatcher.capture == s {
		s.dispatcher.capture = nil
	}
}

// HasCapture reports whether s currently holds pointer capture.
func (s *Subscription) HasCapture() bool {
	return s.dispatcher.capture == s
}

// Release unregisters the subscription. Releasing twice is a no-op.
func (s *Subscription) Release() {
	if s.released {
		return
	}
	s.released = true
	s.dispatcher.remove(s)
}

// Released reports whether Release was called.
func (s *Subscription) Released() bool {
	return s.released
}
