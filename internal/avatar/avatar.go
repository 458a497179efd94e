// Package avatar renders identicons for new accounts.
package avatar

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Grid is the number of cells on each side of an identicon.
const Grid = 5

// DefaultSize is the side of a rendered avatar in pixels.
const DefaultSize = 250

var background = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}

// Pattern returns the filled cells for seed. Each row is mirrored around
// the middle column.
func Pattern(seed string) [Grid][Grid]bool {
	sum := sha256.Sum256([]byte(seed))

	var m [Grid][Grid]bool
	for i := 0; i < Grid; i++ {
		for j := 0; j < (Grid+1)/2; j++ {
			n := i*Grid + j
			nibble := sum[n/2] >> (4 * uint(1-n%2)) & 0x0f
			on := nibble <= 7
			m[i][j] = on
			m[i][Grid-1-j] = on
		}
	}
	return m
}

// Color derives a light foreground colour from seed.
func Color(seed string) color.RGBA {
	sum := sha256.Sum256([]byte(seed))
	return color.RGBA{R: 128 + sum[29]%128, G: 128 + sum[30]%128, B: 128 + sum[31]%128, A: 0xff}
}

// Render draws the identicon for seed as a size×size image.
func Render(seed string, size int) *image.RGBA {
	if size < Grid {
		size = DefaultSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	fg := &image.Uniform{C: Color(seed)}
	cell := size / Grid
	for i, row := range Pattern(seed) {
		for j, on := range row {
			if on {
				r := image.Rect(j*cell, i*cell, (j+1)*cell, (i+1)*cell)
				draw.Draw(img, r, fg, image.Point{}, draw.Src)
			}
		}
	}
	return img
}

// DataURI renders the identicon for seed and encodes it as a PNG data URI.
func DataURI(seed string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Render(seed, DefaultSize)); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
