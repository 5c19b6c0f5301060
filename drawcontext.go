package strata

import "github.com/hajimehoshi/ebiten/v2"

// SortMode controls the order in which draws inside one batch reach the target.
type SortMode uint8

const (
	SortDeferred    SortMode = iota // submission order, flushed when the batch closes
	SortImmediate                   // each draw goes to the target as it is issued
	SortTexture                     // grouped by source image, first appearance first
	SortBackToFront                 // descending depth, ties by submission order
	SortFrontToBack                 // ascending depth, ties by submission order
)

// DrawOptions describes a single image draw issued by an item.
type DrawOptions struct {
	// Transform maps image pixels to world space. The zero value is identity.
	Transform Affine
	// Color is a multiplicative tint. The zero value is opaque white.
	Color Color
	// Depth orders draws under SortBackToFront and SortFrontToBack.
	Depth float64
}

// drawEntry is one queued draw. Triangle draws reference a span of the
// context's vertex and index arenas instead of holding slices, because the
// arenas may grow while the batch is open.
type drawEntry struct {
	img   *ebiten.Image
	m     Affine
	color Color
	depth float64
	seq   int
	rank  int

	triangles bool
	vStart    int
	vEnd      int
	iStart    int
	iEnd      int
}

// DrawContext is the draw target handed to Renderable.Render. One context is
// opened per batch with the layer's settings, the batch shader and,
// optionally, the camera matrix; draws are queued and flushed in sort order
// when the batch closes.
type DrawContext struct {
	target   *ebiten.Image
	settings LayerSettings
	shader   *registeredShader
	view     Affine
	open     bool

	queue   []drawEntry
	sortBuf []drawEntry
	ranks   map[*ebiten.Image]int
	seq     int

	verts []ebiten.Vertex
	inds  []uint16

	imgOp    ebiten.DrawImageOptions
	shaderOp ebiten.DrawRectShaderOptions
	triOp    ebiten.DrawTrianglesOptions
	triSOp   ebiten.DrawTrianglesShaderOptions

	draws int // draw calls flushed since the last reset
}

// begin opens the context on target. view is applied after every item
// transform; pass IdentityAffine for screen-space layers.
func (dc *DrawContext) begin(target *ebiten.Image, settings LayerSettings, shader *registeredShader, view Affine) {
	if settings.Scissor != nil && !settings.Scissor.Empty() {
		target = target.SubImage(*settings.Scissor).(*ebiten.Image)
	}
	dc.target = target
	dc.settings = settings
	dc.shader = shader
	dc.view = view
	dc.open = true
	dc.queue = dc.queue[:0]
	dc.verts = dc.verts[:0]
	dc.inds = dc.inds[:0]
	dc.seq = 0
	if dc.ranks != nil {
		clear(dc.ranks)
	}
}

// end sorts queued draws per the sort mode, flushes them and closes the context.
func (dc *DrawContext) end() {
	if !dc.open {
		return
	}
	switch dc.settings.Sort {
	case SortTexture, SortBackToFront, SortFrontToBack:
		dc.mergeSort()
	}
	for i := range dc.queue {
		dc.flush(&dc.queue[i])
	}
	clear(dc.queue)
	dc.queue = dc.queue[:0]
	dc.target = nil
	dc.shader = nil
	dc.open = false
}

// ViewMatrix returns the matrix applied after item transforms in this batch.
func (dc *DrawContext) ViewMatrix() Affine {
	return dc.view
}

// Settings returns the settings of the layer being drawn.
func (dc *DrawContext) Settings() LayerSettings {
	return dc.settings
}

// DrawImage queues img with the given options. A nil image or a closed
// context is ignored.
func (dc *DrawContext) DrawImage(img *ebiten.Image, opts DrawOptions) {
	if !dc.open || img == nil {
		return
	}
	m := opts.Transform
	if m == (Affine{}) {
		m = IdentityAffine
	}
	e := drawEntry{
		img:   img,
		m:     dc.view.Multiply(m),
		color: opts.Color,
		depth: opts.Depth,
	}
	dc.push(e)
}

// DrawTriangles queues a triangle list textured with img. Vertex positions
// are in world space and are copied, so the caller may reuse its slices.
// Vertex colors are premultiplied.
func (dc *DrawContext) DrawTriangles(verts []ebiten.Vertex, inds []uint16, img *ebiten.Image, depth float64) {
	if !dc.open || img == nil || len(verts) == 0 || len(inds) == 0 {
		return
	}
	e := drawEntry{
		img:       img,
		depth:     depth,
		triangles: true,
		vStart:    len(dc.verts),
		iStart:    len(dc.inds),
	}
	for _, v := range verts {
		x, y := dc.view.Apply(float64(v.DstX), float64(v.DstY))
		v.DstX, v.DstY = float32(x), float32(y)
		dc.verts = append(dc.verts, v)
	}
	dc.inds = append(dc.inds, inds...)
	e.vEnd = len(dc.verts)
	e.iEnd = len(dc.inds)
	dc.push(e)
}

func (dc *DrawContext) push(e drawEntry) {
	e.seq = dc.seq
	dc.seq++
	if dc.settings.Sort == SortImmediate {
		dc.flush(&e)
		return
	}
	if dc.settings.Sort == SortTexture {
		if dc.ranks == nil {
			dc.ranks = make(map[*ebiten.Image]int)
		}
		r, ok := dc.ranks[e.img]
		if !ok {
			r = len(dc.ranks)
			dc.ranks[e.img] = r
		}
		e.rank = r
	}
	dc.queue = append(dc.queue, e)
}

// flush submits one entry to the target.
func (dc *DrawContext) flush(e *drawEntry) {
	dc.draws++
	blend := dc.settings.Blend.EbitenBlend()

	if e.triangles {
		verts := dc.verts[e.vStart:e.vEnd]
		inds := dc.inds[e.iStart:e.iEnd]
		if dc.shader != nil {
			op := &dc.triSOp
			op.Blend = blend
			op.AntiAlias = dc.settings.AntiAlias
			op.Images[0] = e.img
			op.Uniforms = dc.shader.uniforms
			dc.target.DrawTrianglesShader(verts, inds, dc.shader.shader, op)
			op.Images[0] = nil
			return
		}
		op := &dc.triOp
		op.Blend = blend
		op.Filter = dc.settings.Filter
		op.AntiAlias = dc.settings.AntiAlias
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		dc.target.DrawTriangles(verts, inds, e.img, op)
		return
	}

	if dc.shader != nil {
		op := &dc.shaderOp
		op.GeoM = e.m.GeoM()
		e.color.scale(&op.ColorScale, 1)
		op.Blend = blend
		op.Images[0] = e.img
		op.Uniforms = dc.shader.uniforms
		b := e.img.Bounds()
		dc.target.DrawRectShader(b.Dx(), b.Dy(), dc.shader.shader, op)
		op.Images[0] = nil
		return
	}

	op := &dc.imgOp
	op.GeoM = e.m.GeoM()
	e.color.scale(&op.ColorScale, 1)
	op.Blend = blend
	op.Filter = dc.settings.Filter
	dc.target.DrawImage(e.img, op)
}

// --- Merge sort ---

// entryLessOrEqual reports whether a sorts before or together with b under
// mode. Falling back to seq keeps the sort stable.
func entryLessOrEqual(mode SortMode, a, b *drawEntry) bool {
	switch mode {
	case SortTexture:
		if a.rank != b.rank {
			return a.rank < b.rank
		}
	case SortBackToFront:
		if a.depth != b.depth {
			return a.depth > b.depth
		}
	case SortFrontToBack:
		if a.depth != b.depth {
			return a.depth < b.depth
		}
	}
	return a.seq <= b.seq
}

// mergeSort sorts dc.queue in-place using dc.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches
// its high-water mark.
func (dc *DrawContext) mergeSort() {
	n := len(dc.queue)
	if n <= 1 {
		return
	}
	if cap(dc.sortBuf) < n {
		dc.sortBuf = make([]drawEntry, n)
	}
	dc.sortBuf = dc.sortBuf[:n]

	mode := dc.settings.Sort
	a := dc.queue
	b := dc.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeEntries(mode, a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(dc.queue, dc.sortBuf)
	}
	clear(dc.sortBuf)
}

// mergeEntries merges the sorted runs [lo, mid) and [mid, hi) of src into dst.
func mergeEntries(mode SortMode, src, dst []drawEntry, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if entryLessOrEqual(mode, &src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
