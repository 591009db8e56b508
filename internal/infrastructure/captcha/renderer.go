package captcha

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/big"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	glyphScale = 3
	padding    = 10
	noiseLines = 6
)

// Renderer draws a CAPTCHA code as a PNG with scaled glyphs and line noise.
type Renderer struct {
	bg  color.Color
	fg  color.Color
	rnd func(max int) int
}

func NewRenderer() *Renderer {
	return &Renderer{
		bg:  color.RGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff},
		fg:  color.RGBA{R: 0x22, G: 0x33, B: 0x55, A: 0xff},
		rnd: cryptoIntn,
	}
}

func (r *Renderer) Render(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("captcha: empty code")
	}

	face := basicfont.Face7x13
	adv := font.MeasureString(face, code).Ceil()
	h := face.Metrics().Height.Ceil()

	// Draw at native size, then scale up with per-glyph jitter.
	small := image.NewRGBA(image.Rect(0, 0, adv, h))
	draw.Draw(small, small.Bounds(), image.Transparent, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(r.fg),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(code)

	w := adv*glyphScale + 2*padding
	imgH := h*glyphScale + 2*padding
	img := image.NewRGBA(image.Rect(0, 0, w, imgH))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.bg), image.Point{}, draw.Src)

	glyphW := face.Advance
	for i := 0; i < len(code); i++ {
		dy := r.rnd(padding) - padding/2
		for y := 0; y < h; y++ {
			for x := i * glyphW; x < (i+1)*glyphW && x < adv; x++ {
				if _, _, _, a := small.At(x, y).RGBA(); a == 0 {
					continue
				}
				for sy := 0; sy < glyphScale; sy++ {
					for sx := 0; sx < glyphScale; sx++ {
						img.Set(padding+x*glyphScale+sx, padding+dy+y*glyphScale+sy, r.fg)
					}
				}
			}
		}
	}

	for i := 0; i < noiseLines; i++ {
		line(img, r.rnd(w), r.rnd(imgH), r.rnd(w), r.rnd(imgH), r.fg)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("captcha: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// line is Bresenham's algorithm.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func cryptoIntn(max int) int {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}
