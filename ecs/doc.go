// Package ecs connects strata to a [Donburi] world.
//
// [NewSource] turns every entity carrying a [Renderer] component into a
// scene owner, so the ECS stays the single source of truth for what is
// drawn:
//
//	e := world.Create(ecs.Renderer)
//	ecs.Renderer.Get(world.Entry(e)).Item = strata.NewSprite(img, 0, 10, 20)
//	scene.AddSource(ecs.NewSource(world))
//
// Tag an entity with [Disabled] to hide it without removing it.
// [BridgeResize] forwards compositor resizes into the world as events.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
