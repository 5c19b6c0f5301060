package strata

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite draws a single image at a transform.
type Sprite struct {
	ItemBase
	Image     *ebiten.Image
	Transform *Transform
	Color     Color
	Depth     float64
}

// NewSprite creates an enabled sprite for layer order at (x, y).
func NewSprite(img *ebiten.Image, order int, x, y float64) *Sprite {
	s := &Sprite{Image: img, Transform: NewTransform(x, y)}
	s.order = order
	return s
}

// Position returns the sprite's world position, so cameras can follow it.
func (s *Sprite) Position() Vec2 {
	if s.Transform == nil {
		return Vec2{}
	}
	return s.Transform.Position
}

// Bounds returns the world AABB of the transformed image.
func (s *Sprite) Bounds() Rect {
	if s.Image == nil || s.Transform == nil {
		return Rect{}
	}
	b := s.Image.Bounds()
	return s.Transform.Matrix().AABB(float64(b.Dx()), float64(b.Dy()))
}

// Render draws the image. No-op without an image or transform.
func (s *Sprite) Render(dc *DrawContext) {
	if s.Image == nil || s.Transform == nil {
		return
	}
	dc.DrawImage(s.Image, DrawOptions{
		Transform: s.Transform.Matrix(),
		Color:     s.Color,
		Depth:     s.Depth,
	})
}

// StackedSprite renders a volume as a stack of slices drawn bottom to top,
// each shifted by Spacing pixels up the screen. Rotating the transform spins
// every slice around the same origin, which gives the pseudo-3D look of
// sprite stacking.
type StackedSprite struct {
	ItemBase
	// Slices are ordered bottom first. Nil slices are skipped.
	Slices    []*ebiten.Image
	Transform *Transform
	Spacing   float64
	Color     Color
	Depth     float64
}

// NewStackedSprite creates an enabled stacked sprite for layer order.
func NewStackedSprite(slices []*ebiten.Image, order int, x, y, spacing float64) *StackedSprite {
	s := &StackedSprite{Slices: slices, Transform: NewTransform(x, y), Spacing: spacing}
	s.order = order
	return s
}

// Position returns the stack's world position.
func (s *StackedSprite) Position() Vec2 {
	if s.Transform == nil {
		return Vec2{}
	}
	return s.Transform.Position
}

// sliceSize returns the largest slice dimensions.
func (s *StackedSprite) sliceSize() (w, h float64) {
	for _, img := range s.Slices {
		if img == nil {
			continue
		}
		b := img.Bounds()
		w = math.Max(w, float64(b.Dx()))
		h = math.Max(h, float64(b.Dy()))
	}
	return w, h
}

// Bounds returns the footprint of the bottom slice extended upward by the
// full stack height.
func (s *StackedSprite) Bounds() Rect {
	if s.Transform == nil {
		return Rect{}
	}
	w, h := s.sliceSize()
	if w == 0 && h == 0 {
		return Rect{}
	}
	base := s.Transform.Matrix().AABB(w, h)
	lift := s.Spacing * float64(len(s.Slices)-1)
	if lift < 0 {
		base.Y += lift
		base.Height -= lift
		return base
	}
	base.Y -= lift
	base.Height += lift
	return base
}

// Render draws each slice at the same depth; depth sorts are stable, so the
// bottom-to-top submission order survives.
func (s *StackedSprite) Render(dc *DrawContext) {
	if s.Transform == nil || len(s.Slices) == 0 {
		return
	}
	m := s.Transform.Matrix()
	for i, img := range s.Slices {
		if img == nil {
			continue
		}
		lifted := TranslateAffine(0, -s.Spacing*float64(i)).Multiply(m)
		dc.DrawImage(img, DrawOptions{
			Transform: lifted,
			Color:     s.Color,
			Depth:     s.Depth,
		})
	}
}

// Insets are the fixed borders of a nine-slice image, in source pixels.
type Insets struct {
	Left, Top, Right, Bottom int
}

// SlicedSprite draws an image as a nine-slice panel stretched to Size.
// Corners keep their pixel size; edges stretch along one axis and the
// center along both.
type SlicedSprite struct {
	ItemBase
	Image     *ebiten.Image
	Insets    Insets
	Size      Vec2
	Transform *Transform
	Color     Color
	Depth     float64
}

// NewSlicedSprite creates an enabled nine-slice sprite for layer order.
func NewSlicedSprite(img *ebiten.Image, insets Insets, w, h float64, order int, x, y float64) *SlicedSprite {
	s := &SlicedSprite{
		Image:     img,
		Insets:    insets,
		Size:      Vec2{w, h},
		Transform: NewTransform(x, y),
	}
	s.order = order
	return s
}

// Position returns the panel's world position.
func (s *SlicedSprite) Position() Vec2 {
	if s.Transform == nil {
		return Vec2{}
	}
	return s.Transform.Position
}

// Bounds returns the world AABB of the stretched panel.
func (s *SlicedSprite) Bounds() Rect {
	if s.Image == nil || s.Transform == nil {
		return Rect{}
	}
	return s.Transform.Matrix().AABB(s.Size.X, s.Size.Y)
}

// Render draws the nine patches. Patches that would have zero source or
// destination size are skipped.
func (s *SlicedSprite) Render(dc *DrawContext) {
	if s.Image == nil || s.Transform == nil {
		return
	}
	src := s.Image.Bounds()
	in := s.Insets
	srcX := [4]int{src.Min.X, src.Min.X + in.Left, src.Max.X - in.Right, src.Max.X}
	srcY := [4]int{src.Min.Y, src.Min.Y + in.Top, src.Max.Y - in.Bottom, src.Max.Y}
	if srcX[1] > srcX[2] || srcY[1] > srcY[2] {
		return
	}

	dstX := [4]float64{0, float64(in.Left), s.Size.X - float64(in.Right), s.Size.X}
	dstY := [4]float64{0, float64(in.Top), s.Size.Y - float64(in.Bottom), s.Size.Y}
	if dstX[2] < dstX[1] {
		mid := s.Size.X / 2
		dstX[1], dstX[2] = mid, mid
	}
	if dstY[2] < dstY[1] {
		mid := s.Size.Y / 2
		dstY[1], dstY[2] = mid, mid
	}

	m := s.Transform.Matrix()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			sw := srcX[col+1] - srcX[col]
			sh := srcY[row+1] - srcY[row]
			dw := dstX[col+1] - dstX[col]
			dh := dstY[row+1] - dstY[row]
			if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
				continue
			}
			patch := s.Image.SubImage(image.Rect(srcX[col], srcY[row], srcX[col+1], srcY[row+1])).(*ebiten.Image)
			// Sub-images are drawn with their top-left at the local origin.
			local := Affine{dw / float64(sw), 0, 0, dh / float64(sh), dstX[col], dstY[row]}
			dc.DrawImage(patch, DrawOptions{
				Transform: m.Multiply(local),
				Color:     s.Color,
				Depth:     s.Depth,
			})
		}
	}
}
