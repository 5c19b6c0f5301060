package strata

// batch is the set of items of one layer that share a shader for a frame.
type batch struct {
	shader ShaderHandle
	items  []Renderable
}

// batcher groups a layer's items by resolved shader handle. Batches come out
// in order of first appearance and keep submission order internally. The
// batch slices and the handle index are reused across frames, so grouping
// does not allocate once warmed up.
type batcher struct {
	batches []batch
	n       int
	index   map[ShaderHandle]int
}

// group partitions items into batches. Handles unknown to reg land in the
// NoShader batch. The returned slice is valid until the next group or reset.
func (b *batcher) group(items []Renderable, reg *ShaderRegistry) []batch {
	b.reset()
	if b.index == nil {
		b.index = make(map[ShaderHandle]int)
	}
	for _, it := range items {
		h := reg.resolve(it.Shader())
		i, ok := b.index[h]
		if !ok {
			i = b.n
			if i < len(b.batches) {
				b.batches[i].shader = h
				b.batches[i].items = b.batches[i].items[:0]
			} else {
				b.batches = append(b.batches, batch{shader: h})
			}
			b.index[h] = i
			b.n++
		}
		b.batches[i].items = append(b.batches[i].items, it)
	}
	return b.batches[:b.n]
}

// reset empties every batch and drops item references so nothing outlives
// the frame.
func (b *batcher) reset() {
	for i := 0; i < b.n; i++ {
		clear(b.batches[i].items)
		b.batches[i].items = b.batches[i].items[:0]
	}
	b.n = 0
	if b.index != nil {
		clear(b.index)
	}
}
