package challenge

import (
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/dragdrop"
)

// ErrUnknownKind is returned for a challenge type outside the closed set.
var ErrUnknownKind = errors.New("unknown challenge kind")

// Kind is the challenge type. It fixes which controllers are composed and the
// shape of the solution.
type Kind string

const (
	// KindCircles: concentric rings rotated by dragging. Solution is one angle per ring.
	KindCircles Kind = "circles"
	// KindRows: horizontal strips reordered by drag and drop. Solution is the slot order.
	KindRows Kind = "rows"
	// KindGrid: tiles swapped by drag and drop and rotated by clicking.
	// Solution is a (slot, angle) pair per tile.
	KindGrid Kind = "grid"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindCircles, KindRows, KindGrid}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Rotates reports whether items of this kind carry a rotation.
func (k Kind) Rotates() bool {
	return k == KindCircles || k == KindGrid
}

// Arranges reports whether items of this kind can be reordered.
func (k Kind) Arranges() bool {
	return k == KindRows || k == KindGrid
}

// Options configures one challenge instance.
type Options struct {
	// Steps is the number of snap positions per revolution.
	Steps int
	// Columns is the grid width used by the adapter for layout.
	Columns int
	// Policy is the drop behavior for arranging kinds.
	Policy dragdrop.Policy
	// CounterClockwise makes clicks step counter-clockwise.
	CounterClockwise bool
	Logger           *log.Logger
}

// DefaultOptions returns the defaults of the original controllers for kind.
func DefaultOptions(kind Kind) Options {
	switch kind {
	case KindCircles:
		return Options{Steps: 360, Columns: 1, Policy: dragdrop.PolicyInsert}
	case KindRows:
		return Options{Steps: 1, Columns: 1, Policy: dragdrop.PolicyInsert}
	case KindGrid:
		return Options{Steps: 4, Columns: 2, Policy: dragdrop.PolicySwap}
	}
	return Options{Steps: 1, Columns: 1}
}
