package strata

// Renderable is the capability set every drawable exposes to the pipeline.
//
// Bounds must be a fresh world-space AABB for the current frame; it is used
// only for culling. Order names the layer the item belongs to. Render issues
// draws into dc and must do nothing, rather than fail, when the item lacks
// the state it needs (no image, no transform).
type Renderable interface {
	Bounds() Rect
	Order() int
	Shader() ShaderHandle
	Enabled() bool
	Render(dc *DrawContext)
}

// ItemBase stores the layer order, shader handle and enabled flag shared by
// the stock drawables. Embed it to satisfy the non-drawing half of
// Renderable.
type ItemBase struct {
	order    int
	shader   ShaderHandle
	disabled bool
}

// Order returns the target layer order.
func (b *ItemBase) Order() int { return b.order }

// SetOrder moves the item to another layer starting next frame.
func (b *ItemBase) SetOrder(order int) { b.order = order }

// Shader returns the item's shader handle.
func (b *ItemBase) Shader() ShaderHandle { return b.shader }

// SetShader sets the item's shader handle. NoShader selects the default pipeline.
func (b *ItemBase) SetShader(h ShaderHandle) { b.shader = h }

// Enabled reports whether the item takes part in rendering.
func (b *ItemBase) Enabled() bool { return !b.disabled }

// SetEnabled enables or disables the item.
func (b *ItemBase) SetEnabled(enabled bool) { b.disabled = !enabled }
