package strata

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Positioner is anything with a world-space position the camera can follow.
type Positioner interface {
	Position() Vec2
}

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// cameraKey captures every input of the view matrix so the cached matrix can
// be reused until one of them changes.
type cameraKey struct {
	pos       Vec2
	rot, zoom float64
	halfW     float64
	halfH     float64
	valid     bool
}

// Camera controls the view into the scene: position, zoom, rotation, and viewport.
//
// The fields may be set directly; the cached matrices are recomputed
// whenever any of them differ from the values used for the last computation.
type Camera struct {
	// Position is the world-space point the camera centers on.
	Position Vec2
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	// Zero is not validated and yields a degenerate view.
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the rectangle the camera renders into. Only its size takes
	// part in the view matrix.
	Viewport Rect

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	followTarget Positioner
	followOffset Vec2
	followLerp   float64

	matrix  Affine
	inverse Affine
	key     cameraKey

	scrollTween *scrollAnim
	zoomTween   *gween.Tween
	rotateTween *gween.Tween
}

// NewCamera creates a Camera with unit zoom and the given viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     1.0,
		Viewport: viewport,
	}
}

// SetPosition moves the camera center to (x, y).
func (c *Camera) SetPosition(x, y float64) {
	c.Position = Vec2{x, y}
}

// Translate moves the camera by (dx, dy) in world units.
func (c *Camera) Translate(dx, dy float64) {
	c.Position.X += dx
	c.Position.Y += dy
}

// SetRotation sets the rotation in radians.
func (c *Camera) SetRotation(r float64) {
	c.Rotation = r
}

// Rotate adds d radians to the rotation.
func (c *Camera) Rotate(d float64) {
	c.Rotation += d
}

// SetZoom sets the zoom factor.
func (c *Camera) SetZoom(z float64) {
	c.Zoom = z
}

// ZoomBy multiplies the zoom factor by f.
func (c *Camera) ZoomBy(f float64) {
	c.Zoom *= f
}

// SetViewportSize sets the viewport bounds from a surface size, keeping its origin.
func (c *Camera) SetViewportSize(w, h float64) {
	c.Viewport.Width = w
	c.Viewport.Height = h
}

// Follow makes the camera track a target with the given offset and lerp factor.
// A lerp of 1.0 snaps immediately; lower values give smoother following.
func (c *Camera) Follow(target Positioner, offsetX, offsetY, lerp float64) {
	c.followTarget = target
	c.followOffset = Vec2{offsetX, offsetY}
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Position.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Position.Y), float32(y), duration, easeFn),
	}
}

// ZoomTo animates the zoom factor to z over duration seconds.
func (c *Camera) ZoomTo(z float64, duration float32, easeFn ease.TweenFunc) {
	c.zoomTween = gween.New(float32(c.Zoom), float32(z), duration, easeFn)
}

// RotateTo animates the rotation to r radians over duration seconds.
func (c *Camera) RotateTo(r float64, duration float32, easeFn ease.TweenFunc) {
	c.rotateTween = gween.New(float32(c.Rotation), float32(r), duration, easeFn)
}

// Animating reports whether any scroll, zoom or rotate tween is running.
func (c *Camera) Animating() bool {
	return c.scrollTween != nil || c.zoomTween != nil || c.rotateTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// Update advances follow, tweens, and bounds clamping by dt seconds. It is
// meant for the update phase; the render pass only reads the camera.
func (c *Camera) Update(dt float32) {
	if c.followTarget != nil {
		p := c.followTarget.Position()
		c.Position.X += (p.X + c.followOffset.X - c.Position.X) * c.followLerp
		c.Position.Y += (p.Y + c.followOffset.Y - c.Position.Y) * c.followLerp
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.Position.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Position.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.zoomTween != nil {
		val, done := c.zoomTween.Update(dt)
		c.Zoom = float64(val)
		if done {
			c.zoomTween = nil
		}
	}

	if c.rotateTween != nil {
		val, done := c.rotateTween.Update(dt)
		c.Rotation = float64(val)
		if done {
			c.rotateTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// Bounds smaller than the visible area: center on them.
	if minX > maxX {
		c.Position.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.Position.X = math.Max(minX, math.Min(c.Position.X, maxX))
	}
	if minY > maxY {
		c.Position.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Position.Y = math.Max(minY, math.Min(c.Position.Y, maxY))
	}
}

// TransformMatrix returns the world-to-viewport matrix:
//
//	Translate(halfViewport) * Scale(zoom) * Rotate(-rotation) * Translate(-position)
func (c *Camera) TransformMatrix() Affine {
	k := cameraKey{
		pos:   c.Position,
		rot:   c.Rotation,
		zoom:  c.Zoom,
		halfW: c.Viewport.Width / 2,
		halfH: c.Viewport.Height / 2,
		valid: true,
	}
	if k == c.key {
		return c.matrix
	}
	c.key = k

	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom
	x, y := c.Position.X, c.Position.Y

	// [a c tx]   [z*cos  -z*sin  hw + z*(-cos*X + sin*Y)]
	// [b d ty] = [z*sin   z*cos  hh + z*(-sin*X - cos*Y)]
	c.matrix = Affine{
		z * cos,
		z * sin,
		-z * sin,
		z * cos,
		k.halfW + z*(-cos*x+sin*y),
		k.halfH + z*(-sin*x-cos*y),
	}
	c.inverse = c.matrix.Invert()
	return c.matrix
}

// WorldToScreen converts world coordinates to viewport coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.TransformMatrix().Apply(wx, wy)
}

// ScreenToWorld converts viewport coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.TransformMatrix()
	return c.inverse.Apply(sx, sy)
}

// VisibleArea returns the axis-aligned bounding rect of the camera's visible
// area in world space. When rotated, this over-approximates the true view.
func (c *Camera) VisibleArea() Rect {
	c.TransformMatrix()
	inv := c.inverse

	w, h := c.Viewport.Width, c.Viewport.Height
	x0, y0 := inv.Apply(0, 0)
	x1, y1 := inv.Apply(w, 0)
	x2, y2 := inv.Apply(w, h)
	x3, y3 := inv.Apply(0, h)

	return boundsOfPoints(x0, y0, x1, y1, x2, y2, x3, y3)
}

// IsInView reports whether bounds intersect the visible area.
func (c *Camera) IsInView(bounds Rect) bool {
	return c.VisibleArea().Intersects(bounds)
}
