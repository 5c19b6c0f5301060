package strata

import "time"

// debugLog reports per-frame timing and draw statistics at debug level.
// Only called when Config.Debug is set.
func (c *Compositor) debugLog(cull, layers, composite time.Duration) {
	st := c.stats
	c.log.Debug("frame",
		"cull", cull,
		"layers", layers,
		"composite", composite,
		"total", cull+layers+composite,
	)
	c.log.Debug("frame stats",
		"visible", st.Visible,
		"culled", st.Culled,
		"dropped", st.Dropped,
		"rendered", st.LayersRendered,
		"skipped", st.LayersSkipped,
		"batches", st.Batches,
		"draws", st.Draws,
		"postfx", st.PostFx,
	)
}

// debugCheckLayerOrder warns when a new layer shares its order with an
// existing one; the later layer never receives items.
func (c *Compositor) debugCheckLayerOrder(s *Scene, l *Layer) {
	for _, other := range s.layers {
		if other != l && other.order == l.order {
			c.log.Warn("duplicate layer order", "order", l.order, "layer", l.Name, "existing", other.Name)
			return
		}
	}
}
