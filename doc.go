// Package strata is a layered 2D rendering and compositing core for
// [Ebitengine].
//
// Each frame strata takes a flat set of drawable items and a camera and
// produces one presented image. Items are culled against the camera,
// partitioned across ordered layers, batched by shader inside each layer,
// run through per-layer and global post-fx chains, and finally scaled onto
// the window independently of its size.
//
// # Quick start
//
//	comp := strata.NewCompositor(strata.DefaultConfig())
//	cam := strata.NewCamera(strata.Rect{Width: 640, Height: 360})
//	scene := strata.NewScene(cam)
//	comp.AddLayer(scene, 0, strata.DefaultLayerSettings())
//
//	scene.Add(strata.NewObject("hero", strata.NewSprite(img, 0, 100, 50)))
//	strata.Run(scene, comp, strata.RunConfig{Title: "My Game", Resizable: true})
//
// For full control, implement [ebiten.Game] yourself and call
// [Compositor.RenderFrame] then [Compositor.Present] once per Draw.
//
// # Items
//
// Anything implementing [Renderable] can be drawn. The stock items are
// [Sprite], [StackedSprite], [SlicedSprite], [TextSprite], [OverlayDrawer]
// and [TrailDrawer]. Items
// belong to owners ([Object], or entities from an [OwnerSource]) and name
// their layer with Order. Disabling either the owner or the item hides it.
//
// # Layers
//
// A [Layer] owns two offscreen buffers at the virtual resolution. Its
// [LayerSettings] select the draw sort ([SortDeferred], [SortImmediate],
// [SortTexture], [SortBackToFront], [SortFrontToBack]), blending, filtering,
// clipping and whether the camera applies. Layers composite in ascending
// order; later layers draw on top.
//
// # Shaders and post-fx
//
// Items reference shaders by [ShaderHandle] from the compositor's
// [ShaderRegistry]; items sharing a handle are drawn as one batch. A
// [PostFx] stage transforms a whole layer, or the whole frame, by drawing
// one buffer into the other: see [ShaderStage], [ColorMatrixStage],
// [BlurStage], [OutlineStage], [PixelOutlineStage], [PixelInlineStage],
// [PaletteStage], [LightStage] and [PostFxFunc]. Chain edits take effect on
// the next frame.
//
// # Presentation
//
// Buffers never change size when the window does. [Compositor.Resize]
// recomputes the output scale and origin only; fullscreen keeps the aspect
// ratio and letterboxes. [Compositor.SetVirtualResolution] is the only way
// to reallocate buffers.
//
// [Ebitengine]: https://ebitengine.org
package strata
