package script

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/tile-captcha/internal/captcha"
	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/dragdrop"
	"github.com/kyiku/tile-captcha/internal/input"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "正常系: 最小構成",
			data: "kind: rows\nitems: 2\nevents: []\n",
		},
		{
			name: "正常系: 全項目",
			data: "name: x\nkind: grid\nitems: 4\nsteps: 8\ncolumns: 2\npolicy: insert\ncounter_clockwise: true\ncell: 40\ntolerance: 2\nevents:\n  - {type: click, item: 0}\nexpect: [[0, 45]]\n",
		},
		{
			name:    "異常系: 未知の種類",
			data:    "kind: spiral\nitems: 2\nevents: []\n",
			wantErr: ErrInvalidScript,
		},
		{
			name:    "異常系: アイテム数0",
			data:    "kind: rows\nitems: 0\nevents: []\n",
			wantErr: ErrInvalidScript,
		},
		{
			name:    "異常系: 未知のイベント",
			data:    "kind: rows\nitems: 2\nevents:\n  - {type: hover, item: 0}\n",
			wantErr: ErrInvalidScript,
		},
		{
			name:    "異常系: 未知のキー",
			data:    "kind: rows\nitems: 2\nevents: []\nspeed: 3\n",
			wantErr: ErrInvalidScript,
		},
		{
			name:    "異常系: events なし",
			data:    "kind: rows\nitems: 2\n",
			wantErr: ErrInvalidScript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, s.Kind)
		})
	}

	_, err := Parse([]byte("kind: [unclosed"))
	assert.Error(t, err)
}

func TestScript_Options(t *testing.T) {
	s, err := Parse([]byte("kind: grid\nitems: 4\nsteps: 8\npolicy: insert\ncounter_clockwise: true\nevents: []\n"))
	require.NoError(t, err)

	kind, opts, err := s.Options()
	require.NoError(t, err)
	assert.Equal(t, challenge.KindGrid, kind)
	assert.Equal(t, 8, opts.Steps)
	assert.Equal(t, 2, opts.Columns)
	assert.Equal(t, dragdrop.PolicyInsert, opts.Policy)
	assert.True(t, opts.CounterClockwise)
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		file         string
		wantKind     challenge.Kind
		wantSolution string
		wantRejected int
		wantVerify   error
	}{
		{
			file:         "grid.yaml",
			wantKind:     challenge.KindGrid,
			wantSolution: `[[0,0],[2,90],[1,90],[3,0]]`,
		},
		{
			file:         "circles.yaml",
			wantKind:     challenge.KindCircles,
			wantSolution: `[90,0,180]`,
		},
		{
			file:         "rows.yaml",
			wantKind:     challenge.KindRows,
			wantSolution: `[3,0,1,2]`,
			wantRejected: 1,
			wantVerify:   captcha.ErrIncorrect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			s, err := Load(filepath.Join("testdata", tt.file))
			require.NoError(t, err)

			res, err := NewRunner(nil).Run(s)
			require.NoError(t, err)

			assert.Equal(t, tt.wantKind, res.Kind)
			data, err := res.Solution.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantSolution, string(data))
			assert.Len(t, res.Rejected, tt.wantRejected)
			require.NotNil(t, res.Expected)
			if tt.wantVerify != nil {
				assert.ErrorIs(t, res.VerifyErr, tt.wantVerify)
				assert.False(t, res.Passed())
			} else {
				assert.NoError(t, res.VerifyErr)
				assert.True(t, res.Passed())
			}
		})
	}
}

func TestRunner_RejectedEventDetails(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "rows.yaml"))
	require.NoError(t, err)

	res, err := NewRunner(nil).Run(s)
	require.NoError(t, err)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 0, res.Rejected[0].Index)
	assert.Equal(t, input.Drop, res.Rejected[0].Event.Kind)
	assert.ErrorIs(t, res.Rejected[0].Err, dragdrop.ErrNoDragSession)
	assert.Equal(t, []int{3, 0, 1, 2}, res.Board.Order())
}

func TestRunner_NoExpectation(t *testing.T) {
	s, err := Parse([]byte("kind: grid\nitems: 4\nevents:\n  - {type: click, item: 3}\n"))
	require.NoError(t, err)

	res, err := NewRunner(nil).Run(s)
	require.NoError(t, err)

	assert.Nil(t, res.Expected)
	assert.True(t, res.Passed())
	assert.Equal(t, 90.0, res.Board.Angle(3))
}
