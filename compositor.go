package strata

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameStats describes the most recent RenderFrame.
type FrameStats struct {
	Visible        int // items that passed culling
	Culled         int // enabled items rejected by the camera
	Dropped        int // visible items whose order matched no layer
	LayersRendered int
	LayersSkipped  int
	Batches        int
	Draws          int
	PostFx         int // stages run, layer and global
}

// Compositor runs the per-frame pipeline: cull, partition into layers,
// render each layer, composite, apply global post-fx and present. Create
// one per window with NewCompositor; it holds no global state.
type Compositor struct {
	cfg     Config
	log     *slog.Logger
	shaders ShaderRegistry

	main   bufferPair
	postFx postFxList

	// per-frame scratch, reused
	visible    []Renderable
	buckets    [][]Renderable
	layerIndex map[int]int
	composited []*Layer

	targetW, targetH int
	fullscreen       bool
	scaleX, scaleY   float64
	originX, originY float64
	resizeObservers  []func(w, h int)

	screenshots []string
	rendered    bool
	stats       FrameStats
	imgOp       ebiten.DrawImageOptions
}

// NewCompositor creates a compositor. Zero config fields take defaults.
func NewCompositor(cfg Config) *Compositor {
	cfg = cfg.withDefaults()
	c := &Compositor{
		cfg:        cfg,
		log:        cfg.Logger,
		layerIndex: make(map[int]int),
		fullscreen: cfg.Fullscreen,
		targetW:    cfg.VirtualWidth,
		targetH:    cfg.VirtualHeight,
	}
	c.shaders.log = cfg.Logger
	c.main.ensureSize(cfg.VirtualWidth, cfg.VirtualHeight)
	c.updateScale()
	return c
}

// Config returns the active configuration.
func (c *Compositor) Config() Config { return c.cfg }

// Shaders returns the registry item shader handles resolve against.
func (c *Compositor) Shaders() *ShaderRegistry { return &c.shaders }

// VirtualSize returns the base resolution.
func (c *Compositor) VirtualSize() (w, h int) { return c.cfg.VirtualWidth, c.cfg.VirtualHeight }

// SetVirtualResolution changes the base resolution. The main buffers are
// reallocated immediately; layer buffers on their next render. This is the
// only operation that reallocates buffers.
func (c *Compositor) SetVirtualResolution(w, h int) error {
	if w <= 0 || h <= 0 {
		return ErrInvalidResolution
	}
	c.cfg.VirtualWidth, c.cfg.VirtualHeight = w, h
	c.main.ensureSize(w, h)
	c.rendered = false
	c.updateScale()
	c.log.Info("virtual resolution changed", "width", w, "height", h)
	return nil
}

// AddLayer creates a layer and adds it to s.
func (c *Compositor) AddLayer(s *Scene, order int, settings LayerSettings) *Layer {
	l := NewLayer(order, settings)
	s.AddLayer(l)
	if c.cfg.Debug {
		c.debugCheckLayerOrder(s, l)
	}
	return l
}

// AddPostFx appends a global stage. Effective from the next frame.
func (c *Compositor) AddPostFx(fx PostFx) { c.postFx.add(fx) }

// InsertPostFx inserts a global stage at index i, clamped to the chain length.
func (c *Compositor) InsertPostFx(i int, fx PostFx) { c.postFx.insert(i, fx) }

// RemovePostFx removes the first occurrence of a global stage and reports
// whether it was present.
func (c *Compositor) RemovePostFx(fx PostFx) bool { return c.postFx.remove(fx) }

// ClearPostFx removes every global stage.
func (c *Compositor) ClearPostFx() { c.postFx.clear() }

// RenderFrame renders s into the main buffer. Call it exactly once per
// frame, after every update.
func (c *Compositor) RenderFrame(s *Scene) {
	var t0, t1, t2, t3 time.Time
	if c.cfg.Debug {
		t0 = time.Now()
	}

	cam := s.Camera()
	c.visible = s.VisibleRenderers(cam, c.visible[:0])
	c.stats = FrameStats{Visible: len(c.visible), Culled: s.considered - len(c.visible)}

	layers := s.Layers()
	c.partition(layers)
	if c.cfg.Debug {
		t1 = time.Now()
	}

	vw, vh := c.cfg.VirtualWidth, c.cfg.VirtualHeight
	c.composited = c.composited[:0]
	for i, l := range layers {
		buf := l.Render(c.buckets[i], cam, &c.shaders, vw, vh)
		clear(c.buckets[i])
		c.buckets[i] = c.buckets[i][:0]
		if buf == nil {
			c.stats.LayersSkipped++
			continue
		}
		ls := l.Stats()
		c.stats.LayersRendered++
		c.stats.Batches += ls.Batches
		c.stats.Draws += ls.Draws
		c.stats.PostFx += ls.PostFx
		c.composited = append(c.composited, l)
	}
	clear(c.visible)
	if c.cfg.Debug {
		t2 = time.Now()
	}

	c.main.ensureSize(vw, vh)
	c.main.reset()
	dst := c.main.current()
	dst.Clear()
	if c.cfg.Background != (Color{}) {
		dst.Fill(c.cfg.Background.RGBA())
	}
	op := &c.imgOp
	for _, l := range c.composited {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Blend = ebiten.BlendSourceOver
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(l.FinalBuffer(), op)
	}

	chain := c.postFx.snapshot()
	runChain(chain, &c.main)
	c.stats.PostFx += len(chain)
	c.rendered = true

	if c.cfg.Debug {
		t3 = time.Now()
		c.debugLog(t1.Sub(t0), t2.Sub(t1), t3.Sub(t2))
	}
}

// partition distributes c.visible into one bucket per layer in a single
// pass. When several layers share an order, the first in composite order
// receives the items. Items whose order matches no layer are dropped.
func (c *Compositor) partition(layers []*Layer) {
	for len(c.buckets) < len(layers) {
		c.buckets = append(c.buckets, nil)
	}
	clear(c.layerIndex)
	for i, l := range layers {
		if _, ok := c.layerIndex[l.order]; !ok {
			c.layerIndex[l.order] = i
		}
	}
	for _, it := range c.visible {
		i, ok := c.layerIndex[it.Order()]
		if !ok {
			c.stats.Dropped++
			continue
		}
		c.buckets[i] = append(c.buckets[i], it)
	}
}

// Composited returns the layers drawn into the last frame, bottom first.
// The returned slice MUST NOT be mutated.
func (c *Compositor) Composited() []*Layer { return c.composited }

// FinalBuffer returns the main buffer holding the last frame, or nil
// before the first RenderFrame.
func (c *Compositor) FinalBuffer() *ebiten.Image {
	if !c.rendered {
		return nil
	}
	return c.main.current()
}

// Stats returns statistics for the last frame.
func (c *Compositor) Stats() FrameStats { return c.stats }

// Present draws the last frame onto screen at the output scale, centered,
// then writes any queued screenshots of screen.
func (c *Compositor) Present(screen *ebiten.Image) {
	src := c.FinalBuffer()
	if src == nil {
		return
	}
	op := &c.imgOp
	op.GeoM.Reset()
	op.GeoM.Scale(c.scaleX, c.scaleY)
	op.GeoM.Translate(c.originX, c.originY)
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = c.cfg.UpscaleFilter
	screen.DrawImage(src, op)

	c.flushScreenshots(screen)
}

// Resize records a new target surface size and recomputes the output scale
// and origin. Buffers are not touched. Non-positive sizes are ignored.
func (c *Compositor) Resize(w, h int) {
	if w <= 0 || h <= 0 || (w == c.targetW && h == c.targetH) {
		return
	}
	c.targetW, c.targetH = w, h
	c.updateScale()
	c.notifyResize()
}

// SetFullscreen switches between windowed and fullscreen presentation.
func (c *Compositor) SetFullscreen(fullscreen bool) {
	if fullscreen == c.fullscreen {
		return
	}
	c.fullscreen = fullscreen
	c.updateScale()
	c.notifyResize()
}

// Fullscreen reports the presentation mode.
func (c *Compositor) Fullscreen() bool { return c.fullscreen }

// TargetSize returns the current target surface size.
func (c *Compositor) TargetSize() (w, h int) { return c.targetW, c.targetH }

// OnResize registers fn to be called with the target size after every
// effective Resize or SetFullscreen.
func (c *Compositor) OnResize(fn func(w, h int)) {
	if fn != nil {
		c.resizeObservers = append(c.resizeObservers, fn)
	}
}

func (c *Compositor) notifyResize() {
	c.log.Debug("output resized",
		"width", c.targetW, "height", c.targetH,
		"scaleX", c.scaleX, "scaleY", c.scaleY,
		"fullscreen", c.fullscreen)
	for _, fn := range c.resizeObservers {
		fn(c.targetW, c.targetH)
	}
}

// updateScale derives the output scale and origin from the target and
// virtual sizes. Fullscreen, or KeepAspect, uses the smaller ratio on both
// axes; the frame is centered either way.
func (c *Compositor) updateScale() {
	vw, vh := float64(c.cfg.VirtualWidth), float64(c.cfg.VirtualHeight)
	sx := float64(c.targetW) / vw
	sy := float64(c.targetH) / vh
	if c.fullscreen || c.cfg.KeepAspect {
		s := min(sx, sy)
		sx, sy = s, s
	}
	c.scaleX, c.scaleY = sx, sy
	c.originX = (float64(c.targetW) - vw*sx) / 2
	c.originY = (float64(c.targetH) - vh*sy) / 2
}

// OutputScale returns the presentation scale per axis.
func (c *Compositor) OutputScale() (sx, sy float64) { return c.scaleX, c.scaleY }

// OutputOrigin returns the top-left of the presented frame on the target.
func (c *Compositor) OutputOrigin() (x, y float64) { return c.originX, c.originY }

// ScreenToVirtual maps a target-surface point, such as the cursor, into
// virtual-resolution pixels.
func (c *Compositor) ScreenToVirtual(x, y float64) (vx, vy float64) {
	return (x - c.originX) / c.scaleX, (y - c.originY) / c.scaleY
}

// Dispose frees the main buffers.
func (c *Compositor) Dispose() {
	c.main.dispose()
	c.rendered = false
}
