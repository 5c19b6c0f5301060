package strata

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

type fixedPos Vec2

func (p *fixedPos) Position() Vec2 { return Vec2(*p) }

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	if cam.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", cam.Zoom)
	}
	if cam.Viewport.Width != 800 || cam.Viewport.Height != 600 {
		t.Errorf("Viewport = %v, want 800x600", cam.Viewport)
	}
}

func TestCameraVisibleAreaAtOrigin(t *testing.T) {
	cam := NewCamera(Rect{Width: 640, Height: 360})
	got := cam.VisibleArea()
	want := Rect{X: -320, Y: -180, Width: 640, Height: 360}
	if !approxEqual(got.X, want.X, epsilon) || !approxEqual(got.Y, want.Y, epsilon) ||
		!approxEqual(got.Width, want.Width, epsilon) || !approxEqual(got.Height, want.Height, epsilon) {
		t.Errorf("VisibleArea = %v, want %v", got, want)
	}
}

func TestCameraIdentityMatrixCentersOrigin(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	sx, sy := cam.WorldToScreen(0, 0)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(0,0) = (%f,%f), want (400,300)", sx, sy)
	}
}

func TestCameraTranslation(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(100, 50)
	sx, sy := cam.WorldToScreen(100, 50)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(100,50) with cam at (100,50) = (%f,%f), want (400,300)", sx, sy)
	}
	cam.Translate(10, 0)
	sx, _ = cam.WorldToScreen(100, 50)
	if !approxEqual(sx, 390, epsilon) {
		t.Errorf("after Translate: sx = %f, want 390", sx)
	}
}

func TestCameraZoom(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetZoom(2)
	sx1, _ := cam.WorldToScreen(1, 0)
	sx0, _ := cam.WorldToScreen(0, 0)
	if !approxEqual(sx1-sx0, 2.0, epsilon) {
		t.Errorf("zoom 2x: 1 world unit = %f screen pixels, want 2.0", sx1-sx0)
	}
	cam.ZoomBy(0.5)
	if cam.Zoom != 1 {
		t.Errorf("ZoomBy(0.5) = %f, want 1", cam.Zoom)
	}
}

func TestCameraRotation90(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetRotation(math.Pi / 2)
	// Rotate(-π/2) maps (1,0) to (0,-1), then the viewport center is added.
	sx, sy := cam.WorldToScreen(1, 0)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 299, epsilon) {
		t.Errorf("90° rotation: WorldToScreen(1,0) = (%f,%f), want (400,299)", sx, sy)
	}
}

func TestCameraMatrixTracksFieldChanges(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	first := cam.TransformMatrix()
	cam.Position.X = 50
	second := cam.TransformMatrix()
	if first == second {
		t.Error("matrix did not change after Position was set directly")
	}
	cam.SetViewportSize(400, 300)
	sx, sy := cam.WorldToScreen(50, 0)
	if !approxEqual(sx, 200, epsilon) || !approxEqual(sy, 150, epsilon) {
		t.Errorf("after SetViewportSize: (%f,%f), want (200,150)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := NewCamera(Rect{Width: 640, Height: 360})
	cam.SetPosition(42, -17)

	for _, p := range []Vec2{{0, 0}, {12.5, 300}, {-40, 1000}, {639, 359}} {
		wx, wy := cam.ScreenToWorld(p.X, p.Y)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !approxEqual(sx, p.X, 1e-9) || !approxEqual(sy, p.Y, 1e-9) {
			t.Errorf("roundtrip %v: got (%f,%f)", p, sx, sy)
		}
	}
}

func TestScreenToWorldRoundtripTransformed(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(42, -17)
	cam.SetZoom(1.5)
	cam.SetRotation(0.3)

	sx, sy := cam.WorldToScreen(123, -456)
	wx, wy := cam.ScreenToWorld(sx, sy)
	if !approxEqual(wx, 123, 1e-6) || !approxEqual(wy, -456, 1e-6) {
		t.Errorf("roundtrip: got (%f,%f), want (123,-456)", wx, wy)
	}
}

func TestVisibleAreaZoom2(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(400, 300)
	cam.SetZoom(2)
	b := cam.VisibleArea()
	if !approxEqual(b.Width, 400, 1e-6) || !approxEqual(b.Height, 300, 1e-6) {
		t.Errorf("VisibleArea at zoom 2 size = (%f,%f), want (400,300)", b.Width, b.Height)
	}
	if !approxEqual(b.X, 200, 1e-6) || !approxEqual(b.Y, 150, 1e-6) {
		t.Errorf("VisibleArea at zoom 2 origin = (%f,%f), want (200,150)", b.X, b.Y)
	}
}

func TestVisibleAreaRotatedIsConservative(t *testing.T) {
	cam := NewCamera(Rect{Width: 200, Height: 100})
	cam.SetRotation(math.Pi / 4)
	b := cam.VisibleArea()
	// The AABB of a rotated 200x100 rect: (200+100)/√2 on each axis.
	want := 300 / math.Sqrt2
	if !approxEqual(b.Width, want, 1e-6) || !approxEqual(b.Height, want, 1e-6) {
		t.Errorf("rotated VisibleArea = %v, want %fx%f", b, want, want)
	}
	// A point in the AABB corner lies outside the true view but is still
	// reported as in view.
	corner := Rect{X: b.X, Y: b.Y, Width: 1, Height: 1}
	if !cam.IsInView(corner) {
		t.Error("AABB corner should be reported in view")
	}
}

func TestCameraIsInView(t *testing.T) {
	cam := NewCamera(Rect{Width: 640, Height: 360})
	if !cam.IsInView(Rect{X: 0, Y: 0, Width: 10, Height: 10}) {
		t.Error("rect at origin should be in view")
	}
	if cam.IsInView(Rect{X: 1000, Y: 0, Width: 10, Height: 10}) {
		t.Error("rect far right should not be in view")
	}
}

func TestCameraFollow(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	target := &fixedPos{200, 150}
	cam.Follow(target, 0, 0, 1.0)
	cam.Update(1.0 / 60.0)
	if !approxEqual(cam.Position.X, 200, epsilon) || !approxEqual(cam.Position.Y, 150, epsilon) {
		t.Errorf("after follow snap: cam = %v, want (200,150)", cam.Position)
	}
}

func TestCameraFollowLerpAndOffset(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.Follow(&fixedPos{100, 100}, 10, -20, 0.5)
	cam.Update(1.0 / 60.0)
	if !approxEqual(cam.Position.X, 55, epsilon) || !approxEqual(cam.Position.Y, 40, epsilon) {
		t.Errorf("after lerp 0.5: cam = %v, want (55,40)", cam.Position)
	}
}

func TestCameraUnfollow(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	target := &fixedPos{100, 100}
	cam.Follow(target, 0, 0, 1.0)
	cam.Update(1.0 / 60.0)
	cam.Unfollow()
	target.X = 500
	cam.Update(1.0 / 60.0)
	if !approxEqual(cam.Position.X, 100, epsilon) {
		t.Errorf("after unfollow: cam.X = %f, want 100", cam.Position.X)
	}
}

func TestCameraScrollTo(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.ScrollTo(100, 200, 1.0, ease.Linear)
	if !cam.Animating() {
		t.Fatal("Animating() = false after ScrollTo")
	}

	cam.Update(0.5)
	if !approxEqual(cam.Position.X, 50, 1.0) || !approxEqual(cam.Position.Y, 100, 1.0) {
		t.Errorf("scroll halfway: cam = %v, want ~(50,100)", cam.Position)
	}

	cam.Update(0.5)
	if !approxEqual(cam.Position.X, 100, 1.0) || !approxEqual(cam.Position.Y, 200, 1.0) {
		t.Errorf("scroll end: cam = %v, want ~(100,200)", cam.Position)
	}
	if cam.scrollTween != nil {
		t.Error("scrollTween not nil after completion")
	}
}

func TestCameraZoomToAndRotateTo(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.ZoomTo(3, 1.0, ease.Linear)
	cam.RotateTo(1, 1.0, ease.Linear)
	cam.Update(0.5)
	if !approxEqual(cam.Zoom, 2, 0.01) {
		t.Errorf("zoom halfway = %f, want ~2", cam.Zoom)
	}
	if !approxEqual(cam.Rotation, 0.5, 0.01) {
		t.Errorf("rotation halfway = %f, want ~0.5", cam.Rotation)
	}
	cam.Update(0.5)
	if cam.Animating() {
		t.Error("Animating() = true after tweens completed")
	}
}

func TestCameraBounds(t *testing.T) {
	cam := NewCamera(Rect{Width: 100, Height: 100})
	cam.SetBounds(Rect{Width: 1000, Height: 1000})

	cam.SetPosition(0, 0)
	cam.Update(0)
	if cam.Position.X < 50 || cam.Position.Y < 50 {
		t.Errorf("bounds clamp min: cam = %v, want >= (50,50)", cam.Position)
	}

	cam.SetPosition(999, 999)
	cam.Update(0)
	if cam.Position.X > 950 || cam.Position.Y > 950 {
		t.Errorf("bounds clamp max: cam = %v, want <= (950,950)", cam.Position)
	}
}

func TestCameraClearBounds(t *testing.T) {
	cam := NewCamera(Rect{Width: 100, Height: 100})
	cam.SetBounds(Rect{Width: 1000, Height: 1000})
	cam.ClearBounds()
	cam.SetPosition(-999, -999)
	cam.Update(0)
	if cam.Position.X != -999 || cam.Position.Y != -999 {
		t.Errorf("after ClearBounds: cam = %v, want (-999,-999)", cam.Position)
	}
}

func TestCameraBoundsSmallWorld(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetBounds(Rect{Width: 100, Height: 100})
	cam.Update(0)
	if !approxEqual(cam.Position.X, 50, epsilon) || !approxEqual(cam.Position.Y, 50, epsilon) {
		t.Errorf("small world center: cam = %v, want (50,50)", cam.Position)
	}
}
