package script

import (
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/captcha"
	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
	"github.com/kyiku/tile-captcha/internal/layout"
)

// DefaultCell is the board cell size used when a script sets none.
const DefaultCell = 100.0

// Rejection is a scripted event the challenge refused.
type Rejection struct {
	Index int
	Event input.Event
	Err   error
}

// Result is the outcome of one replay.
type Result struct {
	Kind     challenge.Kind
	Solution challenge.Solution
	Board    *layout.Board
	Rejected []Rejection

	// Expected is set when the script declares one; VerifyErr is the
	// verification outcome against it.
	Expected  *challenge.Solution
	VerifyErr error
}

// Passed reports whether the replay matched its expectation, if any.
func (r *Result) Passed() bool {
	return r.VerifyErr == nil
}

// Runner plays scripts.
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a runner. A nil logger gets a default one.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New("replay")
	}
	return &Runner{logger: logger}
}

// Run renders the scripted challenge on a fresh board, dispatches every
// event and collects the solution. Rejected events are recorded and the
// replay continues.
func (r *Runner) Run(s *Script) (*Result, error) {
	kind, opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = r.logger

	cell := s.Cell
	if cell <= 0 {
		cell = DefaultCell
	}
	board := layout.ForChallenge(kind, s.Items, opts.Columns, cell)

	c, err := challenge.New(kind, s.Items, board, input.NewDispatcher(), opts)
	if err != nil {
		return nil, err
	}

	res, err := r.play(s, board, c)
	if derr := c.Destroy(); derr != nil && err == nil {
		return nil, fmt.Errorf("failed to destroy challenge: %w", derr)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) play(s *Script, board *layout.Board, c *challenge.Challenge) (*Result, error) {
	kind := c.Kind()
	res := &Result{Kind: kind, Board: board}
	for i, e := range s.Events {
		ev, err := resolve(board, e)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if err := c.Handle(ev); err != nil {
			r.logger.Warnf("event %d (%s) rejected: %v", i, ev.Kind, err)
			res.Rejected = append(res.Rejected, Rejection{Index: i, Event: ev, Err: err})
		}
	}

	var err error
	if res.Solution, err = c.Solution(); err != nil {
		return nil, err
	}

	expected, ok, err := s.Expected(kind)
	if err != nil {
		return nil, fmt.Errorf("expect: %w", err)
	}
	if ok {
		res.Expected = &expected
		res.VerifyErr = captcha.NewKey(expected).Verify(res.Solution, s.Tolerance)
	}

	r.logger.Infof("replayed %q: %d events, %d rejected", s.Name, len(s.Events), len(res.Rejected))
	return res, nil
}

// resolve turns a scripted event into an input event, hit-testing the board
// when no item is given.
func resolve(board *layout.Board, e Event) (input.Event, error) {
	kind, err := e.kind()
	if err != nil {
		return input.Event{}, err
	}

	ev := input.Event{Kind: kind, Item: input.NoItem, X: e.X, Y: e.Y}
	if e.Item != nil {
		ev.Item = input.ItemID(*e.Item)
	} else if item, ok := board.ItemAt(geometry.Point{X: e.X, Y: e.Y}); ok {
		ev.Item = item
	}
	return ev, nil
}
