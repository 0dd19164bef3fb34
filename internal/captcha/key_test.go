package captcha

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyiku/tile-captcha/internal/challenge"
)

func TestKey_Verify(t *testing.T) {
	circles := NewKey(challenge.Solution{Kind: challenge.KindCircles, Angles: []float64{0, 120, 300}})
	rows := NewKey(challenge.Solution{Kind: challenge.KindRows, Order: []int{2, 0, 1}})
	grid := NewKey(challenge.Solution{Kind: challenge.KindGrid, Placements: []challenge.Placement{{Slot: 1, Angle: 90}, {Slot: 0, Angle: 270}}})

	tests := []struct {
		name      string
		key       Key
		solution  challenge.Solution
		tolerance float64
		wantErr   error
	}{
		{
			name:     "正常系: circles 完全一致",
			key:      circles,
			solution: challenge.Solution{Kind: challenge.KindCircles, Angles: []float64{0, 120, 300}},
		},
		{
			name:      "正常系: circles 許容誤差内 (0度をまたぐ)",
			key:       circles,
			solution:  challenge.Solution{Kind: challenge.KindCircles, Angles: []float64{358, 121, 300}},
			tolerance: 2,
		},
		{
			name:      "異常系: circles 許容誤差外",
			key:       circles,
			solution:  challenge.Solution{Kind: challenge.KindCircles, Angles: []float64{0, 125, 300}},
			tolerance: 2,
			wantErr:   ErrIncorrect,
		},
		{
			name:     "正常系: rows",
			key:      rows,
			solution: challenge.Solution{Kind: challenge.KindRows, Order: []int{2, 0, 1}},
		},
		{
			name:     "異常系: rows 順序違い",
			key:      rows,
			solution: challenge.Solution{Kind: challenge.KindRows, Order: []int{0, 1, 2}},
			wantErr:  ErrIncorrect,
		},
		{
			name:     "正常系: grid",
			key:      grid,
			solution: challenge.Solution{Kind: challenge.KindGrid, Placements: []challenge.Placement{{Slot: 1, Angle: 90}, {Slot: 0, Angle: 270}}},
		},
		{
			name:     "異常系: grid 角度違い",
			key:      grid,
			solution: challenge.Solution{Kind: challenge.KindGrid, Placements: []challenge.Placement{{Slot: 1, Angle: 90}, {Slot: 0, Angle: 90}}},
			wantErr:  ErrIncorrect,
		},
		{
			name:     "異常系: grid 位置違い",
			key:      grid,
			solution: challenge.Solution{Kind: challenge.KindGrid, Placements: []challenge.Placement{{Slot: 0, Angle: 90}, {Slot: 1, Angle: 270}}},
			wantErr:  ErrIncorrect,
		},
		{
			name:     "異常系: 種類違い",
			key:      rows,
			solution: challenge.Solution{Kind: challenge.KindCircles, Angles: []float64{0, 0, 0}},
			wantErr:  ErrKindMismatch,
		},
		{
			name:     "異常系: 長さ違い",
			key:      rows,
			solution: challenge.Solution{Kind: challenge.KindRows, Order: []int{0, 1}},
			wantErr:  ErrLengthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Verify(tt.solution, tt.tolerance)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
