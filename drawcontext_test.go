package strata

import (
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func openContext(mode SortMode) (*DrawContext, *ebiten.Image) {
	target := ebiten.NewImage(64, 64)
	dc := &DrawContext{}
	dc.begin(target, LayerSettings{Sort: mode}, nil, IdentityAffine)
	return dc, target
}

func queuedDepths(dc *DrawContext) []float64 {
	out := make([]float64, len(dc.queue))
	for i := range dc.queue {
		out[i] = dc.queue[i].depth
	}
	return out
}

func queuedSeqs(dc *DrawContext) []int {
	out := make([]int, len(dc.queue))
	for i := range dc.queue {
		out[i] = dc.queue[i].seq
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrawContextBackToFront(t *testing.T) {
	dc, _ := openContext(SortBackToFront)
	img := ebiten.NewImage(4, 4)
	for _, d := range []float64{1, 3, 2, 3} {
		dc.DrawImage(img, DrawOptions{Depth: d})
	}
	dc.mergeSort()
	if got, want := queuedSeqs(dc), []int{1, 3, 2, 0}; !equalInts(got, want) {
		t.Errorf("order = %v (depths %v), want seqs %v", got, queuedDepths(dc), want)
	}
}

func TestDrawContextFrontToBack(t *testing.T) {
	dc, _ := openContext(SortFrontToBack)
	img := ebiten.NewImage(4, 4)
	for _, d := range []float64{5, -1, 5, 0} {
		dc.DrawImage(img, DrawOptions{Depth: d})
	}
	dc.mergeSort()
	if got, want := queuedSeqs(dc), []int{1, 3, 0, 2}; !equalInts(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestDrawContextTextureGrouping(t *testing.T) {
	dc, _ := openContext(SortTexture)
	a, b, c := ebiten.NewImage(2, 2), ebiten.NewImage(2, 2), ebiten.NewImage(2, 2)
	for _, img := range []*ebiten.Image{a, b, a, c, b} {
		dc.DrawImage(img, DrawOptions{})
	}
	dc.mergeSort()
	if got, want := queuedSeqs(dc), []int{0, 2, 1, 4, 3}; !equalInts(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestDrawContextDeferredKeepsSubmissionOrder(t *testing.T) {
	dc, _ := openContext(SortDeferred)
	img := ebiten.NewImage(4, 4)
	for _, d := range []float64{9, 1, 5} {
		dc.DrawImage(img, DrawOptions{Depth: d})
	}
	if got, want := queuedSeqs(dc), []int{0, 1, 2}; !equalInts(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	dc.end()
	if dc.draws != 3 {
		t.Errorf("draws = %d, want 3", dc.draws)
	}
	if len(dc.queue) != 0 || dc.open {
		t.Error("end should empty the queue and close the context")
	}
}

func TestDrawContextImmediateSkipsQueue(t *testing.T) {
	dc, _ := openContext(SortImmediate)
	img := ebiten.NewImage(4, 4)
	dc.DrawImage(img, DrawOptions{})
	dc.DrawImage(img, DrawOptions{})
	if len(dc.queue) != 0 {
		t.Errorf("queue = %d, want 0 in immediate mode", len(dc.queue))
	}
	if dc.draws != 2 {
		t.Errorf("draws = %d, want 2", dc.draws)
	}
}

func TestDrawContextIgnoresNilAndClosed(t *testing.T) {
	dc, _ := openContext(SortDeferred)
	dc.DrawImage(nil, DrawOptions{})
	dc.DrawTriangles([]ebiten.Vertex{{}}, []uint16{0}, nil, 0)
	if len(dc.queue) != 0 {
		t.Errorf("nil image queued %d draws", len(dc.queue))
	}
	dc.end()
	dc.DrawImage(ebiten.NewImage(1, 1), DrawOptions{})
	if len(dc.queue) != 0 {
		t.Error("draw on a closed context should be ignored")
	}
}

func TestDrawContextAppliesView(t *testing.T) {
	target := ebiten.NewImage(32, 32)
	dc := &DrawContext{}
	dc.begin(target, LayerSettings{}, nil, TranslateAffine(10, 5))
	dc.DrawImage(ebiten.NewImage(1, 1), DrawOptions{Transform: TranslateAffine(1, 1)})
	if got := dc.queue[0].m; got != (Affine{1, 0, 0, 1, 11, 6}) {
		t.Errorf("matrix = %v, want translate(11,6)", got)
	}
	// Zero transform means identity.
	dc.DrawImage(ebiten.NewImage(1, 1), DrawOptions{})
	if got := dc.queue[1].m; got != TranslateAffine(10, 5) {
		t.Errorf("matrix = %v, want translate(10,5)", got)
	}

	verts := []ebiten.Vertex{{DstX: 0, DstY: 0}, {DstX: 1, DstY: 0}, {DstX: 0, DstY: 1}}
	dc.DrawTriangles(verts, []uint16{0, 1, 2}, ebiten.NewImage(1, 1), 0)
	if dc.verts[0].DstX != 10 || dc.verts[0].DstY != 5 {
		t.Errorf("vertex 0 = (%v,%v), want (10,5)", dc.verts[0].DstX, dc.verts[0].DstY)
	}
	if verts[0].DstX != 0 {
		t.Error("caller vertices must not be modified")
	}
	dc.end()
}

func TestDrawContextScissor(t *testing.T) {
	target := ebiten.NewImage(64, 64)
	clip := image.Rect(8, 8, 24, 40)
	dc := &DrawContext{}
	dc.begin(target, LayerSettings{Scissor: &clip}, nil, IdentityAffine)
	if got := dc.target.Bounds(); got != clip {
		t.Errorf("target bounds = %v, want %v", got, clip)
	}
	dc.end()
}
