package captcha

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/geometry"
)

// ErrImageTooSmall is returned when the source image cannot be cut into the
// requested tiles.
var ErrImageTooSmall = errors.New("image too small to scramble")

// Default tile counts.
const (
	DefaultRowTiles    = 8
	DefaultCircleRings = 5
)

// gridRotations are the counter-clockwise turns applied to grid tiles.
var gridRotations = []int{90, 180, 270}

// Scrambled is a scrambled image ready to be presented. Tiles are in display
// order; tile k becomes item k of the challenge.
type Scrambled struct {
	Kind       challenge.Kind
	Columns    int
	Background image.Image
	Tiles      []image.Image
	Key        Key
}

// ScrambleRows cuts img into n horizontal strips and shuffles them.
func ScrambleRows(img image.Image, n int, rng *rand.Rand) (*Scrambled, error) {
	if n < 1 || img.Bounds().Dy() < n {
		return nil, fmt.Errorf("%w: %d rows from height %d", ErrImageTooSmall, n, img.Bounds().Dy())
	}

	rects := stripRects(img.Bounds(), n)
	tileOrder := rng.Perm(n)

	tiles := make([]image.Image, n)
	for k, strip := range tileOrder {
		tiles[k] = crop(img, rects[strip])
	}

	// slot s must hold the item that shows strip s
	order := make([]int, n)
	for k, strip := range tileOrder {
		order[strip] = k
	}

	return &Scrambled{
		Kind:    challenge.KindRows,
		Columns: 1,
		Tiles:   tiles,
		Key:     NewKey(challenge.Solution{Kind: challenge.KindRows, Order: order}),
	}, nil
}

// ScrambleGrid cuts img into 2x2 square tiles, reorders them by applying the
// four neighbour swaps in random order and turns every tile counter-clockwise
// by 90, 180 or 270 degrees.
func ScrambleGrid(img image.Image, rng *rand.Rand) (*Scrambled, error) {
	if min(img.Bounds().Dx(), img.Bounds().Dy()) < 2 {
		return nil, fmt.Errorf("%w: grid from %v", ErrImageTooSmall, img.Bounds().Size())
	}

	rects := quadrantRects(img.Bounds())
	rotations := make([]int, len(rects))
	for i := range rotations {
		rotations[i] = gridRotations[rng.Intn(len(gridRotations))]
	}

	// top, left, bottom, right neighbour pairs
	swaps := [][2]int{{0, 1}, {0, 2}, {2, 3}, {1, 3}}
	rng.Shuffle(len(swaps), func(i, j int) { swaps[i], swaps[j] = swaps[j], swaps[i] })
	tileOrder := []int{0, 1, 2, 3}
	for _, sw := range swaps {
		tileOrder[sw[0]], tileOrder[sw[1]] = tileOrder[sw[1]], tileOrder[sw[0]]
	}

	tiles := make([]image.Image, len(rects))
	placements := make([]challenge.Placement, len(rects))
	for k, tile := range tileOrder {
		tiles[k] = rotateQuarter(crop(img, rects[tile]), rotations[tile])
		placements[k] = challenge.Placement{Slot: tile, Angle: float64(rotations[tile])}
	}

	return &Scrambled{
		Kind:    challenge.KindGrid,
		Columns: 2,
		Tiles:   tiles,
		Key:     NewKey(challenge.Solution{Kind: challenge.KindGrid, Placements: placements}),
	}, nil
}

// ScrambleCircles cuts rings concentric rings out of img, each turned
// counter-clockwise by a random multiple of 360/(rings+1) degrees. The
// background keeps everything outside the rings.
func ScrambleCircles(img image.Image, rings int, rng *rand.Rand) (*Scrambled, error) {
	b := img.Bounds()
	unit := min(b.Dx(), b.Dy()) / (2 * (rings + 1))
	if rings < 1 || unit < 1 {
		return nil, fmt.Errorf("%w: %d rings from %v", ErrImageTooSmall, rings, b.Size())
	}

	c := image.Pt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
	step := 360 / (rings + 1)

	tiles := make([]image.Image, rings)
	angles := make([]float64, rings)
	for i := 0; i < rings; i++ {
		angle := rng.Intn(rings+2) * step
		rotated := rotateAbout(img, c, float64(angle))
		tiles[i] = cutRing(rotated, c, unit*(i+1), unit*(i+2))
		angles[i] = geometry.Normalize(float64(angle))
	}

	return &Scrambled{
		Kind:       challenge.KindCircles,
		Columns:    1,
		Background: punchRing(img, c, unit, unit*(rings+1)),
		Tiles:      tiles,
		Key:        NewKey(challenge.Solution{Kind: challenge.KindCircles, Angles: angles}),
	}, nil
}
