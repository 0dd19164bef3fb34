package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
)

func TestGridBoard_Bounds(t *testing.T) {
	b := NewGridBoard(4, 2, 100, 50)

	r, err := b.Bounds(3)
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{Left: 100, Top: 50, Width: 100, Height: 50}, r)

	// bounds follow the item once the order changes
	b.ApplyVisualOrder([]int{3, 1, 2, 0})
	r, err = b.Bounds(3)
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{Left: 0, Top: 0, Width: 100, Height: 50}, r)

	_, err = b.Bounds(4)
	assert.ErrorIs(t, err, ErrUnknownItem)

	w, h := b.Size()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 100.0, h)
}

func TestGridBoard_ItemAt(t *testing.T) {
	b := NewGridBoard(3, 2, 10, 10)
	b.ApplyVisualOrder([]int{2, 0, 1})

	tests := []struct {
		name   string
		p      geometry.Point
		want   input.ItemID
		wantOK bool
	}{
		{name: "正常系: 左上", p: geometry.Point{X: 1, Y: 1}, want: 2, wantOK: true},
		{name: "正常系: 右上", p: geometry.Point{X: 15, Y: 5}, want: 0, wantOK: true},
		{name: "正常系: 2行目", p: geometry.Point{X: 5, Y: 15}, want: 1, wantOK: true},
		{name: "異常系: 空きセル", p: geometry.Point{X: 15, Y: 15}, want: input.NoItem, wantOK: false},
		{name: "異常系: 盤外", p: geometry.Point{X: -1, Y: 0}, want: input.NoItem, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.ItemAt(tt.p)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConcentricBoard(t *testing.T) {
	b := NewConcentricBoard(3, 10)

	w, h := b.Size()
	assert.Equal(t, 80.0, w)
	assert.Equal(t, 80.0, h)
	assert.Equal(t, geometry.Point{X: 40, Y: 40}, b.Center())

	for item := 0; item < 3; item++ {
		r, err := b.Bounds(input.ItemID(item))
		require.NoError(t, err)
		assert.Equal(t, b.Center(), r.Center(), "every ring pivots on the shared center")
	}

	got, ok := b.ItemAt(geometry.Point{X: 40, Y: 25})
	require.True(t, ok)
	assert.Equal(t, input.ItemID(0), got)

	got, ok = b.ItemAt(geometry.Point{X: 40 + 35, Y: 40})
	require.True(t, ok)
	assert.Equal(t, input.ItemID(2), got)

	_, ok = b.ItemAt(geometry.Point{X: 40, Y: 40})
	assert.False(t, ok, "inner disc is background")
}

func TestBoard_DrivesChallenge(t *testing.T) {
	b := ForChallenge(challenge.KindGrid, 4, 2, 100)
	d := input.NewDispatcher()
	c, err := challenge.New(challenge.KindGrid, 4, b, d, challenge.DefaultOptions(challenge.KindGrid))
	require.NoError(t, err)

	require.NoError(t, c.Handle(input.Event{Kind: input.Click, Item: 1}))
	require.NoError(t, c.Handle(input.Event{Kind: input.DragStart, Item: 1}))
	require.NoError(t, c.Handle(input.Event{Kind: input.Drop, Item: 2}))

	assert.Equal(t, 90.0, b.Angle(1))
	assert.Equal(t, []int{0, 2, 1, 3}, b.Order())
	assert.Equal(t, 2, b.SlotOf(1))
}
