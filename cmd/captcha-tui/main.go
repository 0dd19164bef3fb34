// Terminal front end for playing challenges with the mouse.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/captcha"
	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/config"
	"github.com/kyiku/tile-captcha/internal/dragdrop"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
	"github.com/kyiku/tile-captcha/internal/layout"
	"github.com/kyiku/tile-captcha/internal/rotation"
	"github.com/kyiku/tile-captcha/internal/session"
	"github.com/kyiku/tile-captcha/internal/storage"
)

// board origin on screen
const (
	originX = 2
	originY = 2
)

// sweepInterval is how often expired challenges are collected.
const sweepInterval = time.Second

var arrows = []rune{'↑', '→', '↓', '←'}

type app struct {
	screen     tcell.Screen
	cfg        *config.Config
	logger     *log.Logger
	store      *session.Store
	dispatcher *input.Dispatcher

	bundle *storage.Bundle

	id      string
	kind    challenge.Kind
	board   *layout.Board
	gesture *gesture
	message string
}

func main() {
	bundlePath := flag.String("bundle", "", "play a scrambled bundle (file or s3://bucket/key) and verify against its key")
	kindFlag := flag.String("kind", string(challenge.KindGrid), "challenge kind when no bundle is given")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	logger := log.New("captcha-tui")
	logger.SetOutput(io.Discard)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.SetOutput(os.Stderr)
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.SetOutput(os.Stderr)
		logger.Fatalf("Invalid config: %v", err)
	}
	logger.SetLevel(cfg.Level())

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.SetOutput(os.Stderr)
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		store:      session.NewStoreWithExpiry(cfg.ChallengeExpiry),
		dispatcher: input.NewDispatcher(),
	}

	kind, err := challenge.ParseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *bundlePath != "" {
		b, err := loadBundle(*bundlePath, s3Opener(cfg.AWSRegion))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read bundle: %v\n", err)
			os.Exit(1)
		}
		a.bundle = b
		kind = b.Kind
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()
	a.screen = screen

	if err := a.load(kind); err != nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.ChallengeExpiry > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go a.sweepLoop(stop)
	}
	a.run()
}

// sweepLoop wakes the event loop periodically so expired challenges are
// collected even while no input arrives.
func (a *app) sweepLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}
}

func (a *app) itemCount(kind challenge.Kind) int {
	if a.bundle != nil && a.bundle.Kind == kind {
		return len(a.bundle.Tiles)
	}
	switch kind {
	case challenge.KindCircles:
		return a.cfg.CircleRings
	case challenge.KindRows:
		return a.cfg.RowTiles
	}
	return 4
}

// load renders a fresh challenge of kind, replacing the current one.
func (a *app) load(kind challenge.Kind) error {
	opts, err := a.cfg.Options(kind)
	if err != nil {
		return err
	}
	opts.Logger = a.logger

	var key *captcha.Key
	if a.bundle != nil && a.bundle.Kind == kind {
		if a.bundle.Columns > 0 {
			opts.Columns = a.bundle.Columns
		}
		k := a.bundle.Key
		key = &k
	}

	n := a.itemCount(kind)
	board := newBoard(kind, n, opts.Columns)
	c, err := challenge.New(kind, n, board, a.dispatcher, opts)
	if err != nil {
		return err
	}

	if a.id == "" || errors.Is(a.store.Replace(a.id, c, key), session.ErrNotFound) {
		a.id = a.store.Create(c, key)
	}
	a.kind = kind
	a.board = board
	a.gesture = newGesture(kind, board)
	return nil
}

func newBoard(kind challenge.Kind, n, columns int) *layout.Board {
	switch kind {
	case challenge.KindCircles:
		return layout.NewConcentricBoard(n, 2)
	case challenge.KindRows:
		return layout.NewGridBoard(n, columns, 32, 2)
	}
	return layout.NewGridBoard(n, columns, 12, 5)
}

// xScale compensates for terminal cells being about twice as tall as wide.
func (a *app) xScale() float64 {
	if a.board.Mode() == layout.ModeConcentric {
		return 2
	}
	return 1
}

func (a *app) toBoard(x, y int) geometry.Point {
	return geometry.Point{
		X: float64(x-originX)/a.xScale() + 0.5/a.xScale(),
		Y: float64(y-originY) + 0.5,
	}
}

func (a *app) run() {
	for {
		a.draw()
		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventInterrupt:
			if n := a.store.Sweep(); n > 0 {
				a.logger.Infof("swept %d expired challenges", n)
				a.message = "challenge expired, press n"
			}
		case *tcell.EventKey:
			if !a.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			x, y := ev.Position()
			down := ev.Buttons()&tcell.Button1 != 0
			for _, e := range a.gesture.mouse(a.toBoard(x, y), down) {
				a.handle(e)
			}
		}
	}
}

func (a *app) current() (*challenge.Challenge, bool) {
	entry, ok := a.store.Get(a.id)
	if !ok {
		return nil, false
	}
	return entry.Challenge, true
}

func (a *app) handle(ev input.Event) {
	c, ok := a.current()
	if !ok {
		a.message = "challenge expired, press n"
		return
	}
	if err := c.Handle(ev); err != nil {
		a.logger.Debugf("%s on %d: %v", ev.Kind, ev.Item, err)
	}
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		a.verify()
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'r':
		if c, ok := a.current(); ok {
			if err := c.Reset(); err != nil {
				a.message = err.Error()
			} else {
				a.message = "reset"
			}
		}
	case 'n':
		next := challenge.Kinds[0]
		for i, k := range challenge.Kinds {
			if k == a.kind {
				next = challenge.Kinds[(i+1)%len(challenge.Kinds)]
			}
		}
		if err := a.load(next); err != nil {
			a.message = err.Error()
		} else {
			a.message = ""
		}
	}
	return true
}

func (a *app) verify() {
	err := a.store.Verify(a.id, a.cfg.AngleTolerance)
	switch {
	case err == nil:
		a.message = "correct!"
		a.logger.Infof("%s challenge solved", a.kind)
		if err := a.load(a.kind); err != nil {
			a.message = err.Error()
		}
	case errors.Is(err, session.ErrNoKey):
		a.message = "no answer key (start with -bundle)"
	default:
		a.message = err.Error()
	}
}

func (a *app) draw() {
	a.screen.Clear()
	c, live := a.current()
	if a.board.Mode() == layout.ModeConcentric {
		a.drawRings(c)
	} else {
		a.drawSlots(c)
	}

	_, h := a.board.Size()
	y := originY + int(h) + 1
	a.text(0, 0, tcell.StyleDefault.Bold(true), fmt.Sprintf("%s challenge  [drag] move  [enter] verify  [r] reset  [n] next  [q] quit", a.kind))
	if live {
		if s, err := c.Solution(); err == nil {
			data, _ := json.Marshal(s)
			a.text(0, y, tcell.StyleDefault, "solution: "+string(data))
		}
		if co := c.Coordinator(); co != nil {
			if sess, ok := co.Session(); ok {
				a.text(0, y+2, tcell.StyleDefault.Dim(true), fmt.Sprintf("dragging #%d from slot %d", sess.DraggedItem, sess.SourceIndex))
			}
		}
	}
	a.text(0, y+1, tcell.StyleDefault.Foreground(tcell.ColorYellow), a.message)
	a.screen.Show()
}

// drawSlots draws grid and rows boards. c is nil once the challenge expired.
func (a *app) drawSlots(c *challenge.Challenge) {
	for slot := 0; slot < a.board.Len(); slot++ {
		r := a.board.SlotRect(slot)
		item := a.board.ItemInSlot(slot)
		style := highlightStyle(a.board.Highlight(item))

		x0, y0 := originX+int(r.Left), originY+int(r.Top)
		x1, y1 := x0+int(r.Width)-1, y0+int(r.Height)-1
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				ch := ' '
				switch {
				case (x == x0 || x == x1) && (y == y0 || y == y1):
					ch = '+'
				case y == y0 || y == y1:
					ch = '-'
				case x == x0 || x == x1:
					ch = '|'
				}
				a.screen.SetContent(x, y, ch, nil, style)
			}
		}

		label := fmt.Sprintf("#%d", item)
		if ctl := rotationOf(c, item); ctl != nil {
			angle := a.board.Angle(item)
			if ctl.Steps() == len(arrows) {
				label = fmt.Sprintf("#%d %c %3.0f", item, arrows[int(math.Round(angle/90))%len(arrows)], angle)
			} else {
				label = fmt.Sprintf("#%d %3.0f", item, angle)
			}
		}
		ly := y0 + int(r.Height)/2
		if r.Height <= 2 {
			ly = y0
		}
		a.text(x0+2, ly, style, label)
	}
}

func (a *app) drawRings(ch *challenge.Challenge) {
	w, h := a.board.Size()
	shades := []rune{'░', '▒', '▓'}
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w*a.xScale()); x++ {
			item, ok := a.board.ItemAt(a.toBoard(originX+x, originY+y))
			if !ok {
				continue
			}
			a.screen.SetContent(originX+x, originY+y, shades[int(item)%len(shades)], nil, tcell.StyleDefault)
		}
	}

	// one marker per ring pointing at its angle
	c := a.board.Center()
	for item := 0; item < a.board.Len(); item++ {
		r, err := a.board.Bounds(input.ItemID(item))
		if err != nil {
			continue
		}
		radius := r.Width/2 - 1
		rad := a.board.Angle(item) * math.Pi / 180
		px := c.X + radius*math.Sin(rad)
		py := c.Y - radius*math.Cos(rad)
		a.screen.SetContent(originX+int(px*a.xScale()), originY+int(py), '●', nil,
			tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
		a.text(originX+int(w*a.xScale())+2, originY+item, tcell.StyleDefault,
			fmt.Sprintf("ring %d: %3.0f°", item, a.board.Angle(item)))

		if ctl := rotationOf(ch, item); ctl != nil && ctl.IsActive() {
			p := ctl.Pivot()
			a.screen.SetContent(originX+int(p.X*a.xScale()), originY+int(p.Y), '+', nil,
				tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))
		}
	}
}

func rotationOf(c *challenge.Challenge, item int) *rotation.Controller {
	if c == nil {
		return nil
	}
	return c.Rotation(item)
}

func highlightStyle(h dragdrop.Highlight) tcell.Style {
	style := tcell.StyleDefault
	if h.Has(dragdrop.HighlightDragged) {
		style = style.Reverse(true)
	}
	if h.Has(dragdrop.HighlightDropTarget) {
		style = style.Foreground(tcell.ColorYellow)
	}
	if h.Has(dragdrop.HighlightOver) {
		style = style.Bold(true)
	}
	return style
}

func (a *app) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
