package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
	"github.com/kyiku/tile-captcha/internal/layout"
)

func kinds(events []input.Event) []input.Kind {
	out := make([]input.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestGesture_GridClick(t *testing.T) {
	g := newGesture(challenge.KindGrid, layout.NewGridBoard(4, 2, 10, 10))
	p := geometry.Point{X: 15, Y: 5}

	assert.Equal(t, []input.Event{{Kind: input.DragStart, Item: 1}}, g.mouse(p, true))
	assert.Equal(t, []input.Kind{input.DragOver}, kinds(g.mouse(p, true)))
	assert.Equal(t, []input.Event{
		{Kind: input.DragEnd, Item: 1},
		{Kind: input.Click, Item: 1},
	}, g.mouse(p, false))
}

func TestGesture_DragToOtherSlot(t *testing.T) {
	g := newGesture(challenge.KindRows, layout.NewGridBoard(3, 1, 10, 10))

	g.mouse(geometry.Point{X: 5, Y: 5}, true)
	assert.Equal(t, []input.Event{
		{Kind: input.DragLeave, Item: 0},
		{Kind: input.DragEnter, Item: 2},
		{Kind: input.DragOver, Item: 2},
	}, g.mouse(geometry.Point{X: 5, Y: 25}, true))

	assert.Equal(t, []input.Event{
		{Kind: input.Drop, Item: 2},
		{Kind: input.DragEnd, Item: 0},
	}, g.mouse(geometry.Point{X: 5, Y: 25}, false))

	assert.Nil(t, g.mouse(geometry.Point{X: 5, Y: 25}, false), "hover without a button does nothing")
}

func TestGesture_PressOutside(t *testing.T) {
	g := newGesture(challenge.KindGrid, layout.NewGridBoard(4, 2, 10, 10))
	outside := geometry.Point{X: 50, Y: 50}

	assert.Nil(t, g.mouse(outside, true))
	assert.Nil(t, g.mouse(geometry.Point{X: 5, Y: 5}, true))
	assert.Nil(t, g.mouse(outside, false))
}

func TestGesture_CirclesPointer(t *testing.T) {
	board := layout.NewConcentricBoard(2, 10)
	g := newGesture(challenge.KindCircles, board)
	c := board.Center()

	down := g.mouse(geometry.Point{X: c.X, Y: c.Y - 15}, true)
	assert.Equal(t, []input.Event{{Kind: input.PointerDown, Item: 0, X: c.X, Y: c.Y - 15}}, down)

	move := g.mouse(geometry.Point{X: c.X + 25, Y: c.Y}, true)
	assert.Equal(t, []input.Kind{input.PointerMove}, kinds(move))

	up := g.mouse(geometry.Point{X: c.X + 25, Y: c.Y}, false)
	assert.Equal(t, []input.Kind{input.PointerUp}, kinds(up))
}
