package strata

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// bufferPair is two equally sized offscreen images plus a parity index
// selecting the one that holds the latest write. Post-fx chains read the
// active slot, write the other and flip.
type bufferPair struct {
	slots  [2]*ebiten.Image
	active int
	w, h   int
}

func newOffscreen(w, h int) *ebiten.Image {
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// ensureSize allocates both slots at w×h, reallocating only when the size
// differs from the current one. It reports whether images were replaced.
func (p *bufferPair) ensureSize(w, h int) bool {
	if p.slots[0] != nil && p.w == w && p.h == h {
		return false
	}
	p.dispose()
	p.slots[0] = newOffscreen(w, h)
	p.slots[1] = newOffscreen(w, h)
	p.w, p.h = w, h
	p.active = 0
	return true
}

// reset selects slot A.
func (p *bufferPair) reset() { p.active = 0 }

// flip swaps the roles of the two slots.
func (p *bufferPair) flip() { p.active ^= 1 }

// current returns the slot holding the latest write.
func (p *bufferPair) current() *ebiten.Image { return p.slots[p.active] }

// other returns the slot the next stage writes into.
func (p *bufferPair) other() *ebiten.Image { return p.slots[p.active^1] }

// size returns the allocated dimensions, zero before the first ensureSize.
func (p *bufferPair) size() (w, h int) { return p.w, p.h }

// dispose frees both slots.
func (p *bufferPair) dispose() {
	for i, img := range p.slots {
		if img != nil {
			img.Deallocate()
			p.slots[i] = nil
		}
	}
	p.w, p.h = 0, 0
	p.active = 0
}
