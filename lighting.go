package strata

import (
	"image/color"
	"math"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// Light is a light source of a LightStage.
type Light struct {
	// Position is in world space when the stage has a camera, otherwise in
	// buffer pixels.
	Position Vec2
	// Radius controls the drawn size (diameter = Radius*2).
	Radius float64
	// Rotation in radians; useful for directional Image shapes.
	Rotation float64
	// Intensity in [0, 1].
	Intensity float64
	// Enabled lights are drawn; disabled ones are skipped.
	Enabled bool
	// Color tints the lit area. Zero or white means neutral.
	Color Color
	// Image replaces the default feathered circle when set.
	Image *ebiten.Image
	// Target, when set, moves the light to the target's position plus
	// Offset before every draw.
	Target Positioner
	Offset Vec2
}

// LightStage darkens a frame with an ambient shade and lets lights shine
// through it. It is a post-fx stage: add it to a layer to light that layer
// alone, or to the compositor to light the whole frame. The darkness map is
// redrawn on every Apply by erasing light shapes out of an ambient fill,
// then multiplied over the source.
type LightStage struct {
	// Ambient is the base darkness, 0 (none) to 1 (black).
	Ambient float64
	// Camera maps light positions from world space. Nil means buffer space.
	Camera *Camera

	lights      []*Light
	circleCache map[int]*ebiten.Image
	mask        *ebiten.Image
	imgOp       ebiten.DrawImageOptions
}

// NewLightStage creates a lighting stage with the given ambient darkness.
func NewLightStage(ambient float64, cam *Camera) *LightStage {
	return &LightStage{Ambient: ambient, Camera: cam}
}

// AddLight adds a light.
func (s *LightStage) AddLight(l *Light) {
	if l != nil {
		s.lights = append(s.lights, l)
	}
}

// RemoveLight removes l and reports whether it was present.
func (s *LightStage) RemoveLight(l *Light) bool {
	i := slices.Index(s.lights, l)
	if i < 0 {
		return false
	}
	s.lights = slices.Delete(s.lights, i, i+1)
	return true
}

// ClearLights removes all lights.
func (s *LightStage) ClearLights() { s.lights = nil }

// Lights returns the current light list. The returned slice MUST NOT be mutated.
func (s *LightStage) Lights() []*Light { return s.lights }

// Apply copies src into dst and multiplies the darkness map over it.
func (s *LightStage) Apply(src, dst *ebiten.Image) {
	op := &s.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(src, op)

	b := src.Bounds()
	s.redraw(b.Dx(), b.Dy())

	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = BlendMultiply.EbitenBlend()
	dst.DrawImage(s.mask, op)
}

// redraw rebuilds the w×h darkness map.
func (s *LightStage) redraw(w, h int) {
	if s.mask == nil || s.mask.Bounds().Dx() != w || s.mask.Bounds().Dy() != h {
		if s.mask != nil {
			s.mask.Deallocate()
		}
		s.mask = ebiten.NewImage(w, h)
	}
	s.mask.Clear()
	s.mask.Fill(color.NRGBA{A: uint8(clamp01(s.Ambient) * 255)})

	view, zoom := IdentityAffine, 1.0
	if s.Camera != nil {
		view, zoom = s.Camera.TransformMatrix(), s.Camera.Zoom
	}

	op := &s.imgOp
	for _, l := range s.lights {
		if l.Target != nil {
			l.Position = l.Target.Position().Add(l.Offset)
		}
		if !l.Enabled || l.Radius <= 0 {
			continue
		}
		img := l.Image
		if img == nil {
			img = s.circle(l.Radius * zoom)
		}
		x, y := view.Apply(l.Position.X, l.Position.Y)
		intensity := float32(clamp01(l.Intensity))

		s.lightGeoM(op, img, l.Radius*zoom, l.Rotation, x, y)
		op.ColorScale.Reset()
		op.ColorScale.Scale(intensity, intensity, intensity, intensity)
		op.Blend = BlendErase.EbitenBlend()
		s.mask.DrawImage(img, op)

		if c := l.Color; c != (Color{}) && c != ColorWhite {
			tint := intensity * 0.3
			op.ColorScale.Reset()
			op.ColorScale.Scale(float32(c.R)*tint, float32(c.G)*tint, float32(c.B)*tint, tint)
			op.Blend = BlendAdd.EbitenBlend()
			s.mask.DrawImage(img, op)
		}
	}
}

// lightGeoM scales img to a radius-sized square centered on (x, y).
func (s *LightStage) lightGeoM(op *ebiten.DrawImageOptions, img *ebiten.Image, radius, rotation, x, y float64) {
	op.GeoM.Reset()
	b := img.Bounds()
	d := radius * 2
	op.GeoM.Scale(d/float64(b.Dx()), d/float64(b.Dy()))
	op.GeoM.Translate(-radius, -radius)
	if rotation != 0 {
		op.GeoM.Rotate(rotation)
	}
	op.GeoM.Translate(x, y)
}

// circle returns a cached feathered circle for radius, quantized up to the
// next whole pixel.
func (s *LightStage) circle(radius float64) *ebiten.Image {
	key := max(int(math.Ceil(radius)), 1)
	if s.circleCache == nil {
		s.circleCache = make(map[int]*ebiten.Image)
	}
	if img, ok := s.circleCache[key]; ok {
		return img
	}
	img := generateCircle(float64(key))
	s.circleCache[key] = img
	return img
}

// Dispose frees the darkness map and cached circles.
func (s *LightStage) Dispose() {
	if s.mask != nil {
		s.mask.Deallocate()
		s.mask = nil
	}
	for _, img := range s.circleCache {
		img.Deallocate()
	}
	s.circleCache = nil
}

// generateCircle creates a feathered white circle with smoothstep falloff,
// premultiplied.
func generateCircle(radius float64) *ebiten.Image {
	size := max(int(math.Ceil(radius*2)), 1)
	img := ebiten.NewImage(size, size)
	pix := make([]byte, size*size*4)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			dist := math.Sqrt(dx*dx+dy*dy) / radius
			var alpha float64
			if dist < 1 {
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}
			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off], pix[off+1], pix[off+2], pix[off+3] = a, a, a, a
		}
	}
	img.WritePixels(pix)
	return img
}
