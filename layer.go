package strata

import (
	"image"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// LayerSettings configures how a layer draws its items.
type LayerSettings struct {
	// Sort orders draws within each shader batch.
	Sort SortMode
	// Blend is used for every item draw in the layer.
	Blend BlendMode
	// Filter samples item images.
	Filter ebiten.Filter
	// Scissor, when set, clips item draws to this buffer-space rectangle.
	Scissor *image.Rectangle
	// AntiAlias smooths triangle edges for DrawTriangles-based items.
	AntiAlias bool
	// UseCamera applies the camera matrix to item transforms. Screen-space
	// layers such as HUDs leave it off and draw in buffer pixels.
	UseCamera bool
}

// DefaultLayerSettings returns world-space settings: deferred sort, normal
// blending, nearest filtering and the camera applied.
func DefaultLayerSettings() LayerSettings {
	return LayerSettings{UseCamera: true}
}

// LayerStats describes a layer's most recent render.
type LayerStats struct {
	Items   int
	Batches int
	Draws   int
	PostFx  int
}

// Layer is an ordered compositing unit. It draws its share of the frame's
// items into its own buffer pair, applies its post-fx chain and exposes the
// result as FinalBuffer.
type Layer struct {
	// Name is informational, used in debug logs.
	Name string

	order    int
	settings LayerSettings
	postFx   postFxList
	buffers  bufferPair
	batcher  batcher
	dc       DrawContext
	rendered bool
	stats    LayerStats
}

// NewLayer creates a layer. Buffers are allocated on first render.
func NewLayer(order int, settings LayerSettings) *Layer {
	return &Layer{order: order, settings: settings}
}

// Order returns the layer's composite order.
func (l *Layer) Order() int { return l.order }

// Settings returns the layer's draw settings.
func (l *Layer) Settings() LayerSettings { return l.settings }

// SetSettings replaces the draw settings, effective next render.
func (l *Layer) SetSettings(s LayerSettings) { l.settings = s }

// AddPostFx appends a stage to the chain. Effective from the next render.
func (l *Layer) AddPostFx(fx PostFx) { l.postFx.add(fx) }

// InsertPostFx inserts a stage at index i, clamped to the chain length.
func (l *Layer) InsertPostFx(i int, fx PostFx) { l.postFx.insert(i, fx) }

// RemovePostFx removes the first occurrence of fx and reports whether it
// was present.
func (l *Layer) RemovePostFx(fx PostFx) bool { return l.postFx.remove(fx) }

// ClearPostFx removes every stage.
func (l *Layer) ClearPostFx() { l.postFx.clear() }

// PostFx returns a copy of the current chain.
func (l *Layer) PostFx() []PostFx { return slices.Clone(l.postFx.snapshot()) }

// Render draws items into the layer's buffers at w×h and runs the post-fx
// chain. It returns the final buffer, or nil when items is empty, in which
// case the layer is skipped for the frame. cam may be nil for layers that
// do not use the camera.
func (l *Layer) Render(items []Renderable, cam *Camera, reg *ShaderRegistry, w, h int) *ebiten.Image {
	l.stats = LayerStats{Items: len(items)}
	if len(items) == 0 {
		l.rendered = false
		return nil
	}

	l.buffers.ensureSize(w, h)
	l.buffers.reset()
	target := l.buffers.current()
	target.Clear()

	view := IdentityAffine
	if l.settings.UseCamera && cam != nil {
		view = cam.TransformMatrix()
	}

	l.dc.draws = 0
	batches := l.batcher.group(items, reg)
	l.stats.Batches = len(batches)
	for i := range batches {
		b := &batches[i]
		l.dc.begin(target, l.settings, reg.lookup(b.shader), view)
		for _, it := range b.items {
			it.Render(&l.dc)
		}
		l.dc.end()
	}
	l.batcher.reset()
	l.stats.Draws = l.dc.draws

	chain := l.postFx.snapshot()
	runChain(chain, &l.buffers)
	l.stats.PostFx = len(chain)

	l.rendered = true
	return l.buffers.current()
}

// FinalBuffer returns the buffer holding the last render's result, or nil
// if the layer was skipped or never rendered.
func (l *Layer) FinalBuffer() *ebiten.Image {
	if !l.rendered {
		return nil
	}
	return l.buffers.current()
}

// Buffer returns buffer slot i (0 = A, 1 = B), or nil before allocation.
func (l *Layer) Buffer(i int) *ebiten.Image {
	if i < 0 || i > 1 {
		return nil
	}
	return l.buffers.slots[i]
}

// Stats returns statistics from the most recent Render.
func (l *Layer) Stats() LayerStats { return l.stats }

// Dispose frees both buffers. The layer reallocates them if rendered again.
func (l *Layer) Dispose() {
	l.buffers.dispose()
	l.rendered = false
}
