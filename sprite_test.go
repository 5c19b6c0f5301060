package strata

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestSpriteBounds(t *testing.T) {
	s := NewSprite(ebiten.NewImage(32, 16), 0, 10, 20)
	want := Rect{X: 10, Y: 20, Width: 32, Height: 16}
	if got := s.Bounds(); got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}

	s.Transform.Scale = Vec2{2, 2}
	if got := s.Bounds(); got.Width != 64 || got.Height != 32 {
		t.Errorf("scaled size = %vx%v, want 64x32", got.Width, got.Height)
	}
}

func TestSpriteWithoutImage(t *testing.T) {
	s := NewSprite(nil, 0, 5, 5)
	if !s.Bounds().IsEmpty() {
		t.Errorf("Bounds = %+v, want empty", s.Bounds())
	}
	dc, _ := openContext(SortDeferred)
	s.Render(dc)
	if len(dc.queue) != 0 {
		t.Errorf("queued %d draws, want 0", len(dc.queue))
	}
}

func TestSpriteRenderQueuesOneDraw(t *testing.T) {
	s := NewSprite(ebiten.NewImage(4, 4), 0, 3, 4)
	s.Depth = 2
	dc, _ := openContext(SortDeferred)
	s.Render(dc)
	if len(dc.queue) != 1 {
		t.Fatalf("queued %d draws, want 1", len(dc.queue))
	}
	e := dc.queue[0]
	if e.depth != 2 || e.m[4] != 3 || e.m[5] != 4 {
		t.Errorf("entry depth=%v tx=%v ty=%v, want 2 3 4", e.depth, e.m[4], e.m[5])
	}
}

func TestStackedSpriteBoundsIncludeLift(t *testing.T) {
	slices := []*ebiten.Image{ebiten.NewImage(8, 8), ebiten.NewImage(8, 8), ebiten.NewImage(8, 8)}
	s := NewStackedSprite(slices, 0, 0, 100, 2)
	b := s.Bounds()
	if b.Y != 96 || b.Height != 12 {
		t.Errorf("Bounds Y=%v H=%v, want 96 12", b.Y, b.Height)
	}

	dc, _ := openContext(SortDeferred)
	s.Render(dc)
	if len(dc.queue) != 3 {
		t.Fatalf("queued %d draws, want 3", len(dc.queue))
	}
	for i, e := range dc.queue {
		if want := 100 - 2*float64(i); e.m[5] != want {
			t.Errorf("slice %d ty = %v, want %v", i, e.m[5], want)
		}
	}
}

func TestStackedSpriteSkipsNilSlices(t *testing.T) {
	s := NewStackedSprite([]*ebiten.Image{nil, ebiten.NewImage(4, 4), nil}, 0, 0, 0, 1)
	dc, _ := openContext(SortDeferred)
	s.Render(dc)
	if len(dc.queue) != 1 {
		t.Errorf("queued %d draws, want 1", len(dc.queue))
	}
}

func TestSlicedSpritePatches(t *testing.T) {
	img := ebiten.NewImage(12, 12)
	s := NewSlicedSprite(img, Insets{4, 4, 4, 4}, 100, 40, 0, 0, 0)
	if got := s.Bounds(); got != (Rect{Width: 100, Height: 40}) {
		t.Errorf("Bounds = %+v, want 100x40 at origin", got)
	}

	dc, _ := openContext(SortDeferred)
	s.Render(dc)
	if len(dc.queue) != 9 {
		t.Fatalf("queued %d patches, want 9", len(dc.queue))
	}
	// Center patch: 4x4 source stretched to 92x32 at (4, 4).
	center := dc.queue[4].m
	if center != (Affine{23, 0, 0, 8, 4, 4}) {
		t.Errorf("center matrix = %v", center)
	}
}

func TestSlicedSpriteZeroInsetsIsOnePatch(t *testing.T) {
	s := NewSlicedSprite(ebiten.NewImage(8, 8), Insets{}, 16, 16, 0, 0, 0)
	dc, _ := openContext(SortDeferred)
	s.Render(dc)
	if len(dc.queue) != 1 {
		t.Errorf("queued %d patches, want 1", len(dc.queue))
	}
}
