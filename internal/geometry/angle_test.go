package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "正常系: 範囲内", in: 90, want: 90},
		{name: "正常系: 360は0", in: 360, want: 0},
		{name: "正常系: 負の値は正に折り返す", in: -90, want: 270},
		{name: "正常系: -360は0", in: -360, want: 0},
		{name: "正常系: 複数回転", in: 810, want: 90},
		{name: "正常系: 大きな負の値", in: -450, want: 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.Signbit(got), "negative zero leaked")
		})
	}
}

func TestSnappedAngle(t *testing.T) {
	pivot := Point{X: 0, Y: 0}

	tests := []struct {
		name    string
		pointer Point
		steps   int
		want    float64
	}{
		{name: "正常系: 真上は0度", pointer: Point{X: 0, Y: -10}, steps: 360, want: 0},
		{name: "正常系: 右は90度", pointer: Point{X: 10, Y: 0}, steps: 360, want: 90},
		{name: "正常系: 真下は180度", pointer: Point{X: 0, Y: 10}, steps: 360, want: 180},
		{name: "正常系: 左は270度", pointer: Point{X: -10, Y: 0}, steps: 360, want: 270},
		{name: "境界値: 45度は90度グリッドで90度に丸める", pointer: Point{X: 1, Y: -1}, steps: 4, want: 90},
		{name: "境界値: 359度付近は0度に折り返す", pointer: Point{X: -0.1, Y: -10}, steps: 4, want: 0},
		{name: "正常系: 右下は135度", pointer: Point{X: 1, Y: 1}, steps: 8, want: 135},
		{name: "境界値: 中心と同じ位置は0度", pointer: Point{X: 0, Y: 0}, steps: 4, want: 0},
		{name: "境界値: ステップ数1は常に0度", pointer: Point{X: 0, Y: 10}, steps: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnappedAngle(pivot, tt.pointer, tt.steps)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSnappedAngle_RangeAndGrid(t *testing.T) {
	pivot := Point{X: 50, Y: 50}

	for _, steps := range []int{1, 2, 3, 4, 6, 7, 12, 360} {
		step := StepSize(steps)
		for i := 0; i < 72; i++ {
			rad := float64(i) * 5 * math.Pi / 180
			pointer := Point{X: 50 + 30*math.Sin(rad), Y: 50 - 30*math.Cos(rad)}

			got := SnappedAngle(pivot, pointer, steps)

			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 360.0)
			ratio := got / step
			assert.InDelta(t, math.Round(ratio), ratio, 1e-9, "steps=%d angle=%v", steps, got)
		}
	}
}

func TestSnap_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   float64
	}{
		{name: "異常系: NaN", in: math.NaN()},
		{name: "異常系: +Inf", in: math.Inf(1)},
		{name: "異常系: -Inf", in: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, steps := range []int{4, 7, 360} {
				assert.Equal(t, 0.0, Snap(tt.in, steps), "steps=%d", steps)
			}
		})
	}

	nan := Point{X: math.NaN(), Y: 0}
	assert.False(t, nan.Finite())
	assert.Equal(t, 0.0, SnappedAngle(Point{}, nan, 7))
}

func TestRect_Center(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Width: 100, Height: 50}

	assert.Equal(t, Point{X: 60, Y: 45}, r.Center())
	assert.True(t, r.Contains(Point{X: 10, Y: 20}))
	assert.False(t, r.Contains(Point{X: 110, Y: 20}))
}

func TestAngularDistance(t *testing.T) {
	assert.InDelta(t, 20.0, AngularDistance(350, 10), 1e-9)
	assert.InDelta(t, 180.0, AngularDistance(0, 180), 1e-9)
	assert.InDelta(t, 0.0, AngularDistance(360, 0), 1e-9)
}
