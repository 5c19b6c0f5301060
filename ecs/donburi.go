package ecs

import (
	"github.com/phanxgames/strata"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// RendererData attaches a drawable to an entity.
type RendererData struct {
	Item strata.Renderable
}

// Renderer is the component that makes an entity visible to strata.
var Renderer = donburi.NewComponentType[RendererData]()

// Disabled excludes an entity's renderer from every frame while present.
var Disabled = donburi.NewTag()

// ResizeEvent carries the compositor's target size after a resize.
type ResizeEvent struct {
	Width, Height int
}

// ResizeEventType is published by BridgeResize. Subscribe to it in ECS
// systems that lay out screen-space content.
var ResizeEventType = events.NewEventType[ResizeEvent]()

type donburiSource struct {
	world donburi.World
	query *donburi.Query
}

// NewSource creates an OwnerSource that exposes every entity with a
// Renderer component as a scene owner. Entities tagged Disabled are
// reported as disabled owners.
//
//	scene.AddSource(ecs.NewSource(world))
func NewSource(world donburi.World) strata.OwnerSource {
	return &donburiSource{
		world: world,
		query: donburi.NewQuery(filter.Contains(Renderer)),
	}
}

func (s *donburiSource) EachOwner(fn func(enabled bool, item strata.Renderable)) {
	s.query.Each(s.world, func(entry *donburi.Entry) {
		fn(!entry.HasComponent(Disabled), Renderer.Get(entry).Item)
	})
}

// BridgeResize publishes a ResizeEvent into world whenever c's target size
// or fullscreen mode changes. Events are queued; deliver them with
// ResizeEventType.ProcessEvents during the update phase.
func BridgeResize(world donburi.World, c *strata.Compositor) {
	c.OnResize(func(w, h int) {
		ResizeEventType.Publish(world, ResizeEvent{Width: w, Height: h})
	})
}
