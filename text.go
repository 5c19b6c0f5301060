package strata

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Font wraps an Ebitengine text/v2 face loaded from TrueType data.
type Font struct {
	face *text.GoTextFace
	lh   float64
}

// LoadFont parses TTF or OTF data at the given pixel size.
func LoadFont(ttf []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("strata: parse font: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &Font{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}

// Measure returns the size of s laid out with the font's line height.
func (f *Font) Measure(s string) (w, h float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the distance between baselines.
func (f *Font) LineHeight() float64 { return f.lh }

// Face returns the underlying face for direct text/v2 drawing.
func (f *Font) Face() *text.GoTextFace { return f.face }

// TextAlign aligns the lines of multi-line text against each other.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextSprite draws a string. The text is rasterized into a cached image
// only when the content or font changes; Color tints the cached image at
// draw time.
type TextSprite struct {
	ItemBase
	Transform *Transform
	Color     Color
	Align     TextAlign
	Depth     float64

	font    *Font
	content string
	align   TextAlign // alignment the cache was drawn with
	img     *ebiten.Image
	w, h    float64

	sizeStale  bool
	imageStale bool
}

// NewTextSprite creates an enabled text item for layer order at (x, y).
func NewTextSprite(font *Font, content string, order int, x, y float64) *TextSprite {
	s := &TextSprite{Transform: NewTransform(x, y), font: font, content: content, sizeStale: true, imageStale: true}
	s.order = order
	return s
}

// Content returns the displayed string.
func (s *TextSprite) Content() string { return s.content }

// SetContent replaces the displayed string.
func (s *TextSprite) SetContent(content string) {
	if content != s.content {
		s.content = content
		s.sizeStale, s.imageStale = true, true
	}
}

// Font returns the font, possibly nil.
func (s *TextSprite) Font() *Font { return s.font }

// SetFont replaces the font.
func (s *TextSprite) SetFont(f *Font) {
	if f != s.font {
		s.font = f
		s.sizeStale, s.imageStale = true, true
	}
}

// Position returns the text's world position.
func (s *TextSprite) Position() Vec2 {
	if s.Transform == nil {
		return Vec2{}
	}
	return s.Transform.Position
}

// measure refreshes the cached text size.
func (s *TextSprite) measure() {
	if !s.sizeStale {
		return
	}
	s.sizeStale = false
	s.w, s.h = 0, 0
	if s.font != nil && s.content != "" {
		s.w, s.h = s.font.Measure(s.content)
	}
}

// Bounds returns the world AABB of the laid-out text.
func (s *TextSprite) Bounds() Rect {
	if s.font == nil || s.Transform == nil || s.content == "" {
		return Rect{}
	}
	s.measure()
	return s.Transform.Matrix().AABB(s.w, s.h)
}

// rasterize redraws the cache when stale.
func (s *TextSprite) rasterize() {
	if !s.imageStale && s.align == s.Align && s.img != nil {
		return
	}
	s.measure()
	s.imageStale = false
	s.align = s.Align

	w, h := int(math.Ceil(s.w))+1, int(math.Ceil(s.h))+1
	if s.img != nil {
		if b := s.img.Bounds(); b.Dx() != w || b.Dy() != h {
			s.img.Deallocate()
			s.img = nil
		}
	}
	if s.img == nil {
		s.img = ebiten.NewImage(w, h)
	} else {
		s.img.Clear()
	}

	op := &text.DrawOptions{}
	op.LineSpacing = s.font.lh
	switch s.Align {
	case TextAlignCenter:
		op.PrimaryAlign = text.AlignCenter
		op.GeoM.Translate(s.w/2, 0)
	case TextAlignRight:
		op.PrimaryAlign = text.AlignEnd
		op.GeoM.Translate(s.w, 0)
	}
	text.Draw(s.img, s.content, s.font.face, op)
}

// Render draws the cached text. No-op without font, transform or content.
func (s *TextSprite) Render(dc *DrawContext) {
	if s.font == nil || s.Transform == nil || s.content == "" {
		return
	}
	s.rasterize()
	dc.DrawImage(s.img, DrawOptions{
		Transform: s.Transform.Matrix(),
		Color:     s.Color,
		Depth:     s.Depth,
	})
}

// Dispose frees the cached image.
func (s *TextSprite) Dispose() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.imageStale = true
}
