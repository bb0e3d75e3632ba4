package pipeline

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

// CategoryPalette assigns each term category a stable, well separated
// color by spreading hues evenly around the wheel.
func CategoryPalette() map[terms.Category]color.RGBA {
	cats := terms.AllCategories()
	palette := make(map[terms.Category]color.RGBA, len(cats))
	for i, cat := range cats {
		hue := float64(i) * 360.0 / float64(len(cats))
		r, g, b := colorful.Hsv(hue, 0.85, 0.9).RGB255()
		palette[cat] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

// RenderOverlay draws recognized word boxes over the image. Words covered
// by an entity get their category color and a thicker border; remaining
// words a neutral gray. Returns nil for a nil image.
func RenderOverlay(img image.Image, res *StructuredResult) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	if res == nil || len(res.Words) == 0 {
		return dst
	}

	palette := CategoryPalette()
	neutral := color.RGBA{R: 150, G: 150, B: 150, A: 255}
	byText := entityWordColors(res, palette)

	for _, w := range res.Words {
		rect := image.Rect(w.Box.X, w.Box.Y, w.Box.X+w.Box.W, w.Box.Y+w.Box.H)
		key := terms.Fold(strings.TrimFunc(w.Text, unicode.IsPunct))
		if c, ok := byText[key]; ok {
			drawRect(dst, rect, c, 2)
		} else {
			drawRect(dst, rect, neutral, 1)
		}
	}
	return dst
}

// entityWordColors indexes the folded words of every entity surface by
// category color. Entities earlier in the result win on collisions.
func entityWordColors(res *StructuredResult, palette map[terms.Category]color.RGBA) map[string]color.RGBA {
	byText := make(map[string]color.RGBA)
	for i := len(res.Entities) - 1; i >= 0; i-- {
		e := res.Entities[i]
		c, ok := palette[e.Category]
		if !ok {
			continue
		}
		for _, part := range strings.Fields(e.Surface) {
			key := terms.Fold(strings.TrimFunc(part, unicode.IsPunct))
			if key != "" {
				byText[key] = c
			}
		}
	}
	return byText
}

func drawRect(dst *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for t := range thickness {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, r.Min.Y+t, c)
			dst.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			dst.Set(r.Min.X+t, y, c)
			dst.Set(r.Max.X-1-t, y, c)
		}
	}
}
