package captcha

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// stripRects splits bounds into n horizontal strips of equal height.
// Leftover rows at the bottom are dropped.
func stripRects(bounds image.Rectangle, n int) []image.Rectangle {
	h := bounds.Dy() / n
	rects := make([]image.Rectangle, n)
	for y := 0; y < n; y++ {
		top := bounds.Min.Y + h*y
		rects[y] = image.Rect(bounds.Min.X, top, bounds.Max.X, top+h)
	}
	return rects
}

// quadrantRects returns the 2x2 square tiles covering the top-left square of
// bounds, in row-major order.
func quadrantRects(bounds image.Rectangle) []image.Rectangle {
	s := min(bounds.Dx(), bounds.Dy()) / 2
	o := bounds.Min
	return []image.Rectangle{
		image.Rect(o.X, o.Y, o.X+s, o.Y+s),
		image.Rect(o.X+s, o.Y, o.X+2*s, o.Y+s),
		image.Rect(o.X, o.Y+s, o.X+s, o.Y+2*s),
		image.Rect(o.X+s, o.Y+s, o.X+2*s, o.Y+2*s),
	}
}

// crop copies r out of src into a new image anchored at the origin.
func crop(src image.Image, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// rotateQuarter rotates a square image counter-clockwise by degrees, which
// must be a multiple of 90. Pixels map exactly, so a later clockwise
// rotation by the same amount restores the original.
func rotateQuarter(src *image.NRGBA, degrees int) *image.NRGBA {
	s := src.Bounds().Dx()
	dst := image.NewNRGBA(image.Rect(0, 0, s, s))
	turns := ((degrees/90)%4 + 4) % 4
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			var sx, sy int
			switch turns {
			case 0:
				sx, sy = x, y
			case 1:
				sx, sy = s-1-y, x
			case 2:
				sx, sy = s-1-x, s-1-y
			case 3:
				sx, sy = y, s-1-x
			}
			dst.SetNRGBA(x, y, src.NRGBAAt(sx, sy))
		}
	}
	return dst
}

// rotateAbout rotates src counter-clockwise by degrees around c with
// bilinear sampling. The result has the bounds of src.
func rotateAbout(src image.Image, c image.Point, degrees float64) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	if math.Mod(degrees, 360) == 0 {
		return dst
	}

	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx, cy := float64(c.X), float64(c.Y)
	// y grows downward, so a visual counter-clockwise turn maps (x, y) to
	// (x cos + y sin, -x sin + y cos) about c.
	s2d := f64.Aff3{
		cos, sin, cx - cos*cx - sin*cy,
		-sin, cos, cy + sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(dst, s2d, src, b, draw.Src, nil)
	return dst
}

// annulus reports whether the pixel at (x, y) lies in [inner, outer) from c.
func annulus(x, y int, c image.Point, inner, outer int) bool {
	dx := float64(x-c.X) + 0.5
	dy := float64(y-c.Y) + 0.5
	d := math.Hypot(dx, dy)
	return d >= float64(inner) && d < float64(outer)
}

// cutRing keeps the pixels of src inside the ring and crops the result to
// the ring's bounding square.
func cutRing(src image.Image, c image.Point, inner, outer int) *image.NRGBA {
	box := image.Rect(c.X-outer, c.Y-outer, c.X+outer, c.Y+outer)
	dst := image.NewNRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if !annulus(x, y, c, inner, outer) || !(image.Point{X: x, Y: y}).In(src.Bounds()) {
				continue
			}
			dst.Set(x-box.Min.X, y-box.Min.Y, src.At(x, y))
		}
	}
	return dst
}

// punchRing clears the ring area of src and returns the result.
func punchRing(src image.Image, c image.Point, inner, outer int) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if annulus(x, y, c, inner, outer) {
				dst.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
	return dst
}
