// Package captcha scrambles source images into challenges and verifies
// submitted solutions against their answer keys.
package captcha

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/challenge"
)

// ImageSource supplies source images to scramble.
type ImageSource interface {
	// RandomImage returns a decoded image and a name identifying it.
	RandomImage(rng *rand.Rand) (image.Image, string, error)
}

// Generator generates scrambled challenges.
type Generator struct {
	source   ImageSource
	rng      *rand.Rand
	rowTiles int
	rings    int
	logger   *log.Logger
}

// NewGenerator creates a new generator. rowTiles and rings fall back to the
// defaults when not positive. A nil logger gets a default one.
func NewGenerator(source ImageSource, rng *rand.Rand, rowTiles, rings int, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New("captcha")
	}
	if rowTiles < 1 {
		rowTiles = DefaultRowTiles
	}
	if rings < 1 {
		rings = DefaultCircleRings
	}
	return &Generator{
		source:   source,
		rng:      rng,
		rowTiles: rowTiles,
		rings:    rings,
		logger:   logger,
	}
}

// Generate picks a random source image and scrambles it for kind.
func (g *Generator) Generate(kind challenge.Kind) (*Scrambled, error) {
	img, name, err := g.source.RandomImage(g.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to get source image: %w", err)
	}

	s, err := g.Scramble(kind, img)
	if err != nil {
		return nil, fmt.Errorf("failed to scramble %s: %w", name, err)
	}

	g.logger.Infof("scrambled %s as %s (%d tiles)", name, kind, len(s.Tiles))
	return s, nil
}

// Scramble scrambles img for kind.
func (g *Generator) Scramble(kind challenge.Kind, img image.Image) (*Scrambled, error) {
	switch kind {
	case challenge.KindRows:
		return ScrambleRows(img, g.rowTiles, g.rng)
	case challenge.KindGrid:
		return ScrambleGrid(img, g.rng)
	case challenge.KindCircles:
		return ScrambleCircles(img, g.rings, g.rng)
	}
	return nil, fmt.Errorf("%w: %q", challenge.ErrUnknownKind, kind)
}
