package strata

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// whitePixel is a 1x1 white image used for untextured geometry.
// Rendering is single-threaded, so no sync.Once.
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// everywhere is the bounds of drawers that never want to be culled.
var everywhere = Rect{X: -1e18, Y: -1e18, Width: 2e18, Height: 2e18}

// OverlayDrawer is an ad-hoc drawable backed by a callback, for content that
// has no natural sprite form (grids, selection boxes, editor gizmos).
type OverlayDrawer struct {
	ItemBase
	// Area is the world region the callback draws into. An empty Area means
	// the overlay is never culled.
	Area Rect
	// Draw issues the overlay's draws. A nil Draw renders nothing.
	Draw func(dc *DrawContext)
}

// NewOverlayDrawer creates an enabled overlay for layer order.
func NewOverlayDrawer(order int, area Rect, draw func(dc *DrawContext)) *OverlayDrawer {
	o := &OverlayDrawer{Area: area, Draw: draw}
	o.order = order
	return o
}

// Bounds returns Area, or an unbounded rect when Area is empty.
func (o *OverlayDrawer) Bounds() Rect {
	if o.Area.IsEmpty() {
		return everywhere
	}
	return o.Area
}

// Render invokes the callback.
func (o *OverlayDrawer) Render(dc *DrawContext) {
	if o.Draw == nil {
		return
	}
	o.Draw(dc)
}

// maxTrailPoints keeps ribbon indices within uint16 range.
const maxTrailPoints = 1 << 14

// TrailDrawer remembers the last N positions pushed to it and draws them
// oldest to newest with alpha rising toward the head. With an Image it
// stamps the image centered on every point (an afterimage trail); without
// one it draws a ribbon of Width pixels.
type TrailDrawer struct {
	ItemBase
	Image *ebiten.Image
	Width float64
	Color Color
	Depth float64

	points []Vec2 // ring buffer
	head   int    // index of the next write
	count  int

	verts []ebiten.Vertex
	inds  []uint16
}

// NewTrailDrawer creates an enabled trail holding up to capacity points.
func NewTrailDrawer(capacity int, order int) *TrailDrawer {
	capacity = max(1, min(capacity, maxTrailPoints))
	t := &TrailDrawer{
		points: make([]Vec2, capacity),
		Width:  2,
		Color:  ColorWhite,
	}
	t.order = order
	return t
}

// Push records a new head position, evicting the oldest when full.
func (t *TrailDrawer) Push(p Vec2) {
	if len(t.points) == 0 {
		return
	}
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
	if t.count < len(t.points) {
		t.count++
	}
}

// Clear forgets every recorded position.
func (t *TrailDrawer) Clear() {
	t.head = 0
	t.count = 0
}

// Len returns the number of recorded positions.
func (t *TrailDrawer) Len() int {
	return t.count
}

// Point returns the i-th recorded position, 0 being the oldest.
func (t *TrailDrawer) Point(i int) Vec2 {
	start := t.head - t.count
	if start < 0 {
		start += len(t.points)
	}
	return t.points[(start+i)%len(t.points)]
}

// Position returns the newest recorded position.
func (t *TrailDrawer) Position() Vec2 {
	if t.count == 0 {
		return Vec2{}
	}
	return t.Point(t.count - 1)
}

// Bounds returns the AABB of the recorded points padded by the stamp or
// ribbon half-size.
func (t *TrailDrawer) Bounds() Rect {
	if t.count == 0 {
		return Rect{}
	}
	padX, padY := t.Width/2, t.Width/2
	if t.Image != nil {
		b := t.Image.Bounds()
		padX, padY = float64(b.Dx())/2, float64(b.Dy())/2
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < t.count; i++ {
		p := t.Point(i)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{
		X:      minX - padX,
		Y:      minY - padY,
		Width:  maxX - minX + 2*padX,
		Height: maxY - minY + 2*padY,
	}
}

// Render draws the trail. No-op with nothing recorded.
func (t *TrailDrawer) Render(dc *DrawContext) {
	if t.count == 0 {
		return
	}
	if t.Image != nil {
		t.renderStamps(dc)
		return
	}
	t.renderRibbon(dc)
}

func (t *TrailDrawer) fade(i int) float64 {
	return float64(i+1) / float64(t.count)
}

func (t *TrailDrawer) renderStamps(dc *DrawContext) {
	b := t.Image.Bounds()
	hw, hh := float64(b.Dx())/2, float64(b.Dy())/2
	base := t.Color
	if base == (Color{}) {
		base = ColorWhite
	}
	for i := 0; i < t.count; i++ {
		p := t.Point(i)
		c := base
		c.A *= t.fade(i)
		dc.DrawImage(t.Image, DrawOptions{
			Transform: TranslateAffine(p.X-hw, p.Y-hh),
			Color:     c,
			Depth:     t.Depth,
		})
	}
}

func (t *TrailDrawer) renderRibbon(dc *DrawContext) {
	if t.count < 2 || t.Width <= 0 {
		return
	}
	t.verts = t.verts[:0]
	t.inds = t.inds[:0]
	half := t.Width / 2
	base := t.Color
	if base == (Color{}) {
		base = ColorWhite
	}

	for i := 0; i < t.count; i++ {
		p := t.Point(i)
		// Direction from the neighbouring points; the normal spans the ribbon.
		prev, next := p, p
		if i > 0 {
			prev = t.Point(i - 1)
		}
		if i < t.count-1 {
			next = t.Point(i + 1)
		}
		d := next.Sub(prev)
		l := d.Len()
		nx, ny := 0.0, 0.0
		if l > 0 {
			nx, ny = -d.Y/l*half, d.X/l*half
		}

		a := float32(base.A * t.fade(i))
		r, g, bl := float32(base.R)*a, float32(base.G)*a, float32(base.B)*a
		for _, side := range [2]float64{1, -1} {
			t.verts = append(t.verts, ebiten.Vertex{
				DstX:   float32(p.X + nx*side),
				DstY:   float32(p.Y + ny*side),
				SrcX:   0.5,
				SrcY:   0.5,
				ColorR: r,
				ColorG: g,
				ColorB: bl,
				ColorA: a,
			})
		}
		if i > 0 {
			v := uint16(2 * (i - 1))
			t.inds = append(t.inds, v, v+1, v+2, v+1, v+3, v+2)
		}
	}
	dc.DrawTriangles(t.verts, t.inds, ensureWhitePixel(), t.Depth)
}
