package arrangement

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, n int) *Model {
	t.Helper()
	m, err := NewModel(n)
	require.NoError(t, err)
	return m
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, m.Order())
	assert.Equal(t, 4, m.Len())

	_, err := NewModel(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestModel_InsertBefore(t *testing.T) {
	tests := []struct {
		name        string
		source      int
		target      int
		want        []int
		wantChanged bool
	}{
		{name: "正常系: 左から右へ", source: 0, target: 2, want: []int{1, 0, 2, 3}, wantChanged: true},
		{name: "正常系: 右から左へ", source: 3, target: 1, want: []int{0, 3, 1, 2}, wantChanged: true},
		{name: "正常系: 末尾の前へ", source: 0, target: 3, want: []int{1, 2, 0, 3}, wantChanged: true},
		{name: "正常系: 先頭へ", source: 2, target: 0, want: []int{2, 0, 1, 3}, wantChanged: true},
		{name: "境界値: 既に直前にある", source: 1, target: 2, want: []int{0, 1, 2, 3}, wantChanged: false},
		{name: "境界値: 同じスロット", source: 2, target: 2, want: []int{0, 1, 2, 3}, wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, 4)

			changed, err := m.InsertBefore(tt.source, tt.target)

			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, m.Order())
		})
	}
}

func TestModel_InsertAfter(t *testing.T) {
	tests := []struct {
		name   string
		source int
		target int
		want   []int
	}{
		{name: "正常系: 左から右へ", source: 0, target: 2, want: []int{1, 2, 0, 3}},
		{name: "正常系: 末尾へ", source: 0, target: 3, want: []int{1, 2, 3, 0}},
		{name: "正常系: 右から左へ", source: 3, target: 1, want: []int{0, 1, 3, 2}},
		{name: "境界値: 既に直後にある", source: 1, target: 0, want: []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, 4)

			_, err := m.InsertAfter(tt.source, tt.target)

			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Order())
		})
	}
}

func TestModel_Swap(t *testing.T) {
	t.Run("正常系: 両端の入れ替え", func(t *testing.T) {
		m := newTestModel(t, 4)

		changed, err := m.Swap(0, 3)

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []int{3, 1, 2, 0}, m.Order())
	})

	t.Run("正常系: 隣接の入れ替え", func(t *testing.T) {
		m := newTestModel(t, 4)

		_, err := m.Swap(2, 1)

		require.NoError(t, err)
		assert.Equal(t, []int{0, 2, 1, 3}, m.Order())
	})

	t.Run("正常系: 2回で元に戻る", func(t *testing.T) {
		for a := 0; a < 5; a++ {
			for b := 0; b < 5; b++ {
				m := newTestModel(t, 5)
				_, err := m.InsertBefore(4, 0)
				require.NoError(t, err)
				before := m.Order()

				_, err = m.Swap(a, b)
				require.NoError(t, err)
				_, err = m.Swap(a, b)
				require.NoError(t, err)

				assert.Equal(t, before, m.Order(), "swap(%d,%d)", a, b)
			}
		}
	})

	t.Run("境界値: 同じスロット", func(t *testing.T) {
		m := newTestModel(t, 4)

		changed, err := m.Swap(1, 1)

		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestModel_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		op   func(m *Model) error
	}{
		{name: "異常系: InsertBefore 負のスロット", op: func(m *Model) error { _, err := m.InsertBefore(-1, 0); return err }},
		{name: "異常系: InsertAfter 範囲外", op: func(m *Model) error { _, err := m.InsertAfter(0, 4); return err }},
		{name: "異常系: Swap 範囲外", op: func(m *Model) error { _, err := m.Swap(4, 4); return err }},
		{name: "異常系: At 範囲外", op: func(m *Model) error { _, err := m.At(9); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, 4)

			err := tt.op(m)

			assert.ErrorIs(t, err, ErrSlotOutOfRange)
			assert.Equal(t, []int{0, 1, 2, 3}, m.Order())
		})
	}
}

func TestModel_PermutationInvariant(t *testing.T) {
	const n = 6
	m := newTestModel(t, n)

	for source := 0; source < n; source++ {
		for target := 0; target < n; target++ {
			_, err := m.InsertBefore(source, target)
			require.NoError(t, err)
			_, err = m.InsertAfter(target, source)
			require.NoError(t, err)
			_, err = m.Swap(source, (target+1)%n)
			require.NoError(t, err)

			got := m.Order()
			sort.Ints(got)
			assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got)
		}
	}
}

func TestModel_SlotOfAndReset(t *testing.T) {
	m := newTestModel(t, 4)
	_, err := m.Swap(0, 3)
	require.NoError(t, err)

	slot, err := m.SlotOf(0)
	require.NoError(t, err)
	assert.Equal(t, 3, slot)

	item, err := m.At(0)
	require.NoError(t, err)
	assert.Equal(t, 3, item)

	_, err = m.SlotOf(7)
	assert.ErrorIs(t, err, ErrUnknownItem)

	m.Reset()
	assert.Equal(t, []int{0, 1, 2, 3}, m.Order())
}
