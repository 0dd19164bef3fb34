package captcha

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/geometry"
)

// Verification errors.
var (
	ErrKindMismatch   = errors.New("solution kind does not match key")
	ErrLengthMismatch = errors.New("solution length does not match key")
	ErrIncorrect      = errors.New("solution incorrect")
)

// angleEpsilon absorbs float noise in angle comparisons.
const angleEpsilon = 1e-9

// Key is the expected solution of a scrambled image.
type Key struct {
	challenge.Solution
}

// NewKey wraps s as a key.
func NewKey(s challenge.Solution) Key {
	return Key{Solution: s}
}

// Verify checks s against the key. Angles match when their circular distance
// is within tolerance degrees.
func (k Key) Verify(s challenge.Solution, tolerance float64) error {
	if s.Kind != k.Kind {
		return fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, s.Kind, k.Kind)
	}
	if s.Len() != k.Len() {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, s.Len(), k.Len())
	}

	switch k.Kind {
	case challenge.KindCircles:
		for i, want := range k.Angles {
			if !anglesMatch(s.Angles[i], want, tolerance) {
				return fmt.Errorf("%w: ring %d", ErrIncorrect, i)
			}
		}
	case challenge.KindRows:
		if !slices.Equal(s.Order, k.Order) {
			return ErrIncorrect
		}
	case challenge.KindGrid:
		for i, want := range k.Placements {
			got := s.Placements[i]
			if got.Slot != want.Slot || !anglesMatch(got.Angle, want.Angle, tolerance) {
				return fmt.Errorf("%w: tile %d", ErrIncorrect, i)
			}
		}
	default:
		return fmt.Errorf("%w: %q", challenge.ErrUnknownKind, k.Kind)
	}
	return nil
}

func anglesMatch(got, want, tolerance float64) bool {
	return geometry.AngularDistance(got, want) <= tolerance+angleEpsilon
}
