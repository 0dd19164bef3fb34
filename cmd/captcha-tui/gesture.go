package main

import (
	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
	"github.com/kyiku/tile-captcha/internal/layout"
)

// gesture turns raw button press/motion/release into normalized events,
// the way a browser turns them into pointer and drag events.
type gesture struct {
	kind    challenge.Kind
	board   *layout.Board
	pressed bool
	origin  input.ItemID
	hover   input.ItemID
	moved   bool
}

func newGesture(kind challenge.Kind, board *layout.Board) *gesture {
	return &gesture{
		kind:   kind,
		board:  board,
		origin: input.NoItem,
		hover:  input.NoItem,
	}
}

// mouse feeds one mouse sample; down is the primary button state.
func (g *gesture) mouse(p geometry.Point, down bool) []input.Event {
	switch {
	case down && !g.pressed:
		return g.press(p)
	case down:
		return g.move(p)
	case g.pressed:
		return g.release(p)
	}
	return nil
}

func (g *gesture) itemAt(p geometry.Point) input.ItemID {
	item, ok := g.board.ItemAt(p)
	if !ok {
		return input.NoItem
	}
	return item
}

func (g *gesture) press(p geometry.Point) []input.Event {
	g.pressed = true
	g.moved = false
	g.origin = g.itemAt(p)
	g.hover = g.origin
	if g.origin == input.NoItem {
		return nil
	}

	if g.kind == challenge.KindCircles {
		return []input.Event{{Kind: input.PointerDown, Item: g.origin, X: p.X, Y: p.Y}}
	}
	return []input.Event{{Kind: input.DragStart, Item: g.origin}}
}

func (g *gesture) move(p geometry.Point) []input.Event {
	if g.kind == challenge.KindCircles {
		return []input.Event{{Kind: input.PointerMove, Item: g.itemAt(p), X: p.X, Y: p.Y}}
	}
	if g.origin == input.NoItem {
		return nil
	}

	var events []input.Event
	item := g.itemAt(p)
	if item != g.hover {
		if g.hover != input.NoItem {
			events = append(events, input.Event{Kind: input.DragLeave, Item: g.hover})
		}
		if item != input.NoItem {
			events = append(events, input.Event{Kind: input.DragEnter, Item: item})
		}
		g.hover = item
		g.moved = true
	}
	if item != input.NoItem {
		events = append(events, input.Event{Kind: input.DragOver, Item: item})
	}
	return events
}

func (g *gesture) release(p geometry.Point) []input.Event {
	g.pressed = false
	origin := g.origin
	g.origin = input.NoItem
	g.hover = input.NoItem

	if g.kind == challenge.KindCircles {
		return []input.Event{{Kind: input.PointerUp, Item: g.itemAt(p), X: p.X, Y: p.Y}}
	}
	if origin == input.NoItem {
		return nil
	}

	var events []input.Event
	item := g.itemAt(p)
	if item != input.NoItem && item != origin {
		events = append(events, input.Event{Kind: input.Drop, Item: item})
	}
	events = append(events, input.Event{Kind: input.DragEnd, Item: origin})
	if g.kind == challenge.KindGrid && item == origin && !g.moved {
		events = append(events, input.Event{Kind: input.Click, Item: origin})
	}
	return events
}
