package strata

import (
	"cmp"
	"slices"
)

// Owner is a scene object that may carry a drawable. Owners are updated by
// the game before each frame; the pipeline only reads them.
type Owner interface {
	Enabled() bool
	Renderer() Renderable
}

// OwnerSource lets an external store, such as an ECS world, contribute
// owners every frame without mirroring them into the scene.
type OwnerSource interface {
	// EachOwner calls fn once per owner with its enabled flag and renderer.
	// The renderer may be nil.
	EachOwner(fn func(enabled bool, item Renderable))
}

// Object is the stock Owner: a named holder for one renderer.
type Object struct {
	Name     string
	renderer Renderable
	disabled bool
}

// NewObject creates an enabled object owning r.
func NewObject(name string, r Renderable) *Object {
	return &Object{Name: name, renderer: r}
}

// Enabled reports whether the object takes part in rendering.
func (o *Object) Enabled() bool { return !o.disabled }

// SetEnabled enables or disables the object and, with it, its renderer.
func (o *Object) SetEnabled(enabled bool) { o.disabled = !enabled }

// Renderer returns the owned renderer, possibly nil.
func (o *Object) Renderer() Renderable { return o.renderer }

// SetRenderer replaces the owned renderer.
func (o *Object) SetRenderer(r Renderable) { o.renderer = r }

// Scene holds the flat owner set, the active camera and the layers sorted
// by ascending order.
type Scene struct {
	camera  *Camera
	objects []Owner
	sources []OwnerSource
	layers  []*Layer

	considered int // items examined by the last visibility query

	// visibility query state, kept on the scene so sources receive the
	// same func value every frame
	acceptFn func(enabled bool, r Renderable)
	query    []Renderable
	view     Rect
	cull     bool
}

// NewScene creates a scene viewed through cam.
func NewScene(cam *Camera) *Scene {
	return &Scene{camera: cam}
}

// Camera returns the active camera.
func (s *Scene) Camera() *Camera { return s.camera }

// SetCamera replaces the active camera.
func (s *Scene) SetCamera(cam *Camera) { s.camera = cam }

// Add appends owners to the scene. Nil owners are ignored.
func (s *Scene) Add(owners ...Owner) {
	for _, o := range owners {
		if o != nil {
			s.objects = append(s.objects, o)
		}
	}
}

// Remove removes o and reports whether it was present.
func (s *Scene) Remove(o Owner) bool {
	i := slices.Index(s.objects, o)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	return true
}

// Objects returns the scene's owners. The returned slice MUST NOT be mutated.
func (s *Scene) Objects() []Owner { return s.objects }

// AddSource registers an external owner source.
func (s *Scene) AddSource(src OwnerSource) {
	if src != nil {
		s.sources = append(s.sources, src)
	}
}

// VisibleRenderers appends to dst every renderer whose owner is enabled,
// which is itself enabled, and whose bounds intersect cam's visible area.
// A nil cam disables culling. The result order follows owner order and is
// not otherwise meaningful.
func (s *Scene) VisibleRenderers(cam *Camera, dst []Renderable) []Renderable {
	s.considered = 0
	s.cull = cam != nil
	if s.cull {
		s.view = cam.VisibleArea()
	}
	if s.acceptFn == nil {
		s.acceptFn = s.accept
	}
	s.query = dst
	for _, o := range s.objects {
		s.accept(o.Enabled(), o.Renderer())
	}
	for _, src := range s.sources {
		src.EachOwner(s.acceptFn)
	}
	dst = s.query
	s.query = nil
	return dst
}

func (s *Scene) accept(enabled bool, r Renderable) {
	if !enabled || r == nil || !r.Enabled() {
		return
	}
	s.considered++
	if s.cull && !s.view.Intersects(r.Bounds()) {
		return
	}
	s.query = append(s.query, r)
}

// AddLayer inserts l and re-sorts the layers by ascending order. Layers with
// equal order keep insertion order.
func (s *Scene) AddLayer(l *Layer) {
	if l == nil {
		return
	}
	s.layers = append(s.layers, l)
	s.sortLayers()
}

// RemoveLayer removes l without freeing its buffers and reports whether it
// was present.
func (s *Scene) RemoveLayer(l *Layer) bool {
	i := slices.Index(s.layers, l)
	if i < 0 {
		return false
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	s.sortLayers()
	return true
}

func (s *Scene) sortLayers() {
	slices.SortStableFunc(s.layers, func(a, b *Layer) int {
		return cmp.Compare(a.order, b.order)
	})
}

// Layers returns the layers in composite order. The returned slice MUST NOT
// be mutated.
func (s *Scene) Layers() []*Layer { return s.layers }

// LayerByOrder returns the first layer with the given order, or nil.
func (s *Scene) LayerByOrder(order int) *Layer {
	for _, l := range s.layers {
		if l.order == order {
			return l
		}
	}
	return nil
}

// Dispose frees every layer's buffers.
func (s *Scene) Dispose() {
	for _, l := range s.layers {
		l.Dispose()
	}
}
