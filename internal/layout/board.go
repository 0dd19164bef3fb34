// Package layout is a reference UI adapter: it positions items, answers bounds
// queries and keeps the visual state the core applies.
package layout

import (
	"math"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/dragdrop"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
)

// Mode selects how items are positioned.
type Mode int

const (
	// ModeGrid lays slots out row by row; an item's bounds follow its slot.
	ModeGrid Mode = iota
	// ModeConcentric stacks items as rings around one center, innermost first.
	ModeConcentric
)

// Board implements challenge.Adapter.
type Board struct {
	mode    Mode
	columns int
	cellW   float64
	cellH   float64
	ringW   float64

	order      []int
	angles     []float64
	highlights []dragdrop.Highlight
}

var _ challenge.Adapter = (*Board)(nil)

// NewGridBoard creates a grid of n cells of cellW x cellH.
func NewGridBoard(n, columns int, cellW, cellH float64) *Board {
	if columns < 1 {
		columns = 1
	}
	b := &Board{
		mode:    ModeGrid,
		columns: columns,
		cellW:   cellW,
		cellH:   cellH,
	}
	b.init(n)
	return b
}

// NewConcentricBoard creates n rings of width ringW. Ring i spans radii
// ringW*(i+1) to ringW*(i+2); the innermost disc belongs to the background.
func NewConcentricBoard(n int, ringW float64) *Board {
	b := &Board{
		mode:    ModeConcentric,
		columns: 1,
		ringW:   ringW,
	}
	b.init(n)
	return b
}

// ForChallenge picks the layout used by kind.
func ForChallenge(kind challenge.Kind, n, columns int, cell float64) *Board {
	if kind == challenge.KindCircles {
		return NewConcentricBoard(n, cell/2)
	}
	return NewGridBoard(n, columns, cell, cell)
}

func (b *Board) init(n int) {
	b.order = make([]int, n)
	for i := range b.order {
		b.order[i] = i
	}
	b.angles = make([]float64, n)
	b.highlights = make([]dragdrop.Highlight, n)
}

// Mode returns the layout mode.
func (b *Board) Mode() Mode { return b.mode }

// Len returns the number of items.
func (b *Board) Len() int { return len(b.order) }

// Columns returns the grid width.
func (b *Board) Columns() int { return b.columns }

// Size returns the width and height covered by the board.
func (b *Board) Size() (float64, float64) {
	if b.mode == ModeConcentric {
		d := 2 * b.outerRadius(len(b.order)-1)
		return d, d
	}
	rows := (len(b.order) + b.columns - 1) / b.columns
	return float64(b.columns) * b.cellW, float64(rows) * b.cellH
}

// Center returns the shared ring center of a concentric board.
func (b *Board) Center() geometry.Point {
	w, h := b.Size()
	return geometry.Point{X: w / 2, Y: h / 2}
}

// SlotRect returns the rectangle of a grid slot.
func (b *Board) SlotRect(slot int) geometry.Rect {
	col := slot % b.columns
	row := slot / b.columns
	return geometry.Rect{
		Left:   float64(col) * b.cellW,
		Top:    float64(row) * b.cellH,
		Width:  b.cellW,
		Height: b.cellH,
	}
}

// Bounds implements rotation.BoundsProvider.
func (b *Board) Bounds(item input.ItemID) (geometry.Rect, error) {
	i := int(item)
	if i < 0 || i >= len(b.order) {
		return geometry.Rect{}, errUnknownItem(item)
	}
	if b.mode == ModeConcentric {
		c := b.Center()
		r := b.outerRadius(i)
		return geometry.Rect{Left: c.X - r, Top: c.Y - r, Width: 2 * r, Height: 2 * r}, nil
	}
	return b.SlotRect(b.SlotOf(i)), nil
}

// ApplyVisualRotation implements rotation.RotationSink.
func (b *Board) ApplyVisualRotation(item input.ItemID, degrees float64) {
	if i := int(item); i >= 0 && i < len(b.angles) {
		b.angles[i] = degrees
	}
}

// ApplyVisualOrder implements dragdrop.OrderSink.
func (b *Board) ApplyVisualOrder(order []int) {
	if len(order) == len(b.order) {
		copy(b.order, order)
	}
}

// ApplyHighlight implements dragdrop.HighlightSink.
func (b *Board) ApplyHighlight(item input.ItemID, h dragdrop.Highlight) {
	if i := int(item); i >= 0 && i < len(b.highlights) {
		b.highlights[i] = h
	}
}

// Angle returns the last applied angle of item.
func (b *Board) Angle(item int) float64 { return b.angles[item] }

// Highlight returns the last applied highlight of item.
func (b *Board) Highlight(item int) dragdrop.Highlight { return b.highlights[item] }

// Order returns a copy of the displayed order.
func (b *Board) Order() []int { return append([]int(nil), b.order...) }

// ItemInSlot returns the item displayed in slot.
func (b *Board) ItemInSlot(slot int) int { return b.order[slot] }

// SlotOf returns the slot where item is displayed.
func (b *Board) SlotOf(item int) int {
	for slot, it := range b.order {
		if it == item {
			return slot
		}
	}
	return -1
}

// ItemAt hit-tests p and returns the item under it.
func (b *Board) ItemAt(p geometry.Point) (input.ItemID, bool) {
	if b.mode == ModeConcentric {
		c := b.Center()
		d := math.Hypot(p.X-c.X, p.Y-c.Y)
		i := int(math.Floor(d/b.ringW)) - 1
		if i < 0 || i >= len(b.order) {
			return input.NoItem, false
		}
		return input.ItemID(i), true
	}
	for slot := range b.order {
		if b.SlotRect(slot).Contains(p) {
			return input.ItemID(b.order[slot]), true
		}
	}
	return input.NoItem, false
}

func (b *Board) outerRadius(i int) float64 {
	return b.ringW * float64(i+2)
}
