package strata

import (
	"math"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
)

// PostFx is one full-frame stage of a post-processing chain. Apply reads src
// and writes dst; dst is cleared beforehand and is never the same image as src.
//
// Stages are removed by equality, so only stages of a comparable dynamic type
// (pointers, or structs without maps, slices or funcs) can be removed one at
// a time. Others stay until the chain is cleared.
type PostFx interface {
	Apply(src, dst *ebiten.Image)
}

// PostFxFunc adapts a plain function to PostFx. Functions are not
// comparable, so a PostFxFunc stage can only be dropped with ClearPostFx.
type PostFxFunc func(src, dst *ebiten.Image)

// Apply calls f(src, dst).
func (f PostFxFunc) Apply(src, dst *ebiten.Image) { f(src, dst) }

// postFxList is a copy-on-write stage list. Every mutation builds a new
// slice, so a snapshot taken at the start of a render stays unchanged even
// if the list is edited before the render finishes.
type postFxList struct {
	stages []PostFx
}

func (l *postFxList) snapshot() []PostFx { return l.stages }

func (l *postFxList) add(fx PostFx) {
	if fx == nil {
		return
	}
	next := make([]PostFx, len(l.stages), len(l.stages)+1)
	copy(next, l.stages)
	l.stages = append(next, fx)
}

// insert places fx at index i, clamped to [0, len].
func (l *postFxList) insert(i int, fx PostFx) {
	if fx == nil {
		return
	}
	i = max(0, min(i, len(l.stages)))
	next := make([]PostFx, 0, len(l.stages)+1)
	next = append(next, l.stages[:i]...)
	next = append(next, fx)
	l.stages = append(next, l.stages[i:]...)
}

// remove drops the first occurrence of fx and reports whether it was found.
// Stages of an uncomparable type never match.
func (l *postFxList) remove(fx PostFx) bool {
	if fx == nil || !reflect.TypeOf(fx).Comparable() {
		return false
	}
	for i, s := range l.stages {
		if s != fx {
			continue
		}
		next := make([]PostFx, 0, len(l.stages)-1)
		next = append(next, l.stages[:i]...)
		l.stages = append(next, l.stages[i+1:]...)
		return true
	}
	return false
}

func (l *postFxList) clear() { l.stages = nil }

// runChain applies every stage in order, ping-ponging through p. Each stage
// draws the current buffer into the other one and flips, so after k stages
// the parity has flipped k times.
func runChain(chain []PostFx, p *bufferPair) {
	for _, fx := range chain {
		dst := p.other()
		dst.Clear()
		fx.Apply(p.current(), dst)
		p.flip()
	}
}

// --- ShaderStage ---

// ShaderStage runs an externally compiled shader over the whole frame with
// the source bound as Images[0]. A nil Shader copies src through unchanged.
type ShaderStage struct {
	Shader   *ebiten.Shader
	Uniforms map[string]any
	Images   [3]*ebiten.Image // bound to Images[1..3]
	shaderOp ebiten.DrawRectShaderOptions
	imgOp    ebiten.DrawImageOptions
}

// NewShaderStage creates a stage for shader with an empty uniform map.
func NewShaderStage(shader *ebiten.Shader) *ShaderStage {
	return &ShaderStage{Shader: shader, Uniforms: make(map[string]any)}
}

// Apply draws src into dst through the shader.
func (s *ShaderStage) Apply(src, dst *ebiten.Image) {
	if s.Shader == nil {
		s.imgOp.Blend = ebiten.BlendCopy
		dst.DrawImage(src, &s.imgOp)
		return
	}
	b := src.Bounds()
	s.shaderOp.Images[0] = src
	s.shaderOp.Images[1] = s.Images[0]
	s.shaderOp.Images[2] = s.Images[1]
	s.shaderOp.Images[3] = s.Images[2]
	s.shaderOp.Uniforms = s.Uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), s.Shader, &s.shaderOp)
	s.shaderOp.Images[0] = nil
}

// --- ColorMatrixStage ---

// Kage sources use //kage:unit pixels and premultiplied alpha; they
// un-premultiply before processing and re-premultiply the result.
const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	// 4x5 row-major matrix, offsets in elements 4, 9, 14 and 19.
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	a = clamp(a, 0, 1)
	return vec4(clamp(r, 0, 1)*a, clamp(g, 0, 1)*a, clamp(b, 0, 1)*a, a)
}
`

// Rendering is single-threaded, so lazy compilation needs no sync.Once.
var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("strata: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// ColorMatrixStage transforms every pixel by a 4x5 color matrix stored row
// major: [Rr, Rg, Rb, Ra, Roffset, Gr, ...].
type ColorMatrixStage struct {
	Matrix    [20]float64
	uniforms  map[string]any
	matrixF32 [20]float32
	shaderOp  ebiten.DrawRectShaderOptions
}

// NewColorMatrixStage creates a stage initialized to the identity matrix.
func NewColorMatrixStage() *ColorMatrixStage {
	s := &ColorMatrixStage{uniforms: make(map[string]any, 1)}
	s.uniforms["Matrix"] = s.matrixF32[:]
	s.Reset()
	return s
}

// Reset restores the identity matrix.
func (s *ColorMatrixStage) Reset() {
	s.Matrix = [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetBrightness offsets every channel by b in [-1, 1].
func (s *ColorMatrixStage) SetBrightness(b float64) {
	s.Matrix = [20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// SetContrast scales around mid-gray. 1 is unchanged, 0 is flat gray.
func (s *ColorMatrixStage) SetContrast(c float64) {
	t := (1 - c) / 2
	s.Matrix = [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SetSaturation mixes toward luminance. 1 is unchanged, 0 is grayscale.
func (s *ColorMatrixStage) SetSaturation(sat float64) {
	sr := (1 - sat) * 0.299
	sg := (1 - sat) * 0.587
	sb := (1 - sat) * 0.114
	s.Matrix = [20]float64{
		sr + sat, sg, sb, 0, 0,
		sr, sg + sat, sb, 0, 0,
		sr, sg, sb + sat, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Apply draws src into dst through the color matrix.
func (s *ColorMatrixStage) Apply(src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range s.Matrix {
		s.matrixF32[i] = float32(v)
	}
	b := src.Bounds()
	s.shaderOp.Images[0] = src
	s.shaderOp.Uniforms = s.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &s.shaderOp)
	s.shaderOp.Images[0] = nil
}

// --- BlurStage ---

// BlurStage is a Kawase-style blur: the frame is halved repeatedly with
// linear filtering and scaled back up. Temporary images are kept between
// frames and only reallocated when the frame or radius changes.
type BlurStage struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurStage creates a blur of roughly radius pixels. Negative radii clamp to 0.
func NewBlurStage(radius int) *BlurStage {
	return &BlurStage{Radius: max(radius, 0)}
}

// passes returns the number of halvings for the radius.
func (s *BlurStage) passes() int {
	if s.Radius <= 0 {
		return 0
	}
	return max(1, int(math.Ceil(math.Log2(float64(s.Radius)))))
}

func (s *BlurStage) scaleInto(dst, src *ebiten.Image) {
	op := &s.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// Apply blurs src into dst. A zero radius copies src through.
func (s *BlurStage) Apply(src, dst *ebiten.Image) {
	passes := s.passes()
	if passes == 0 {
		s.imgOp.GeoM.Reset()
		s.imgOp.ColorScale.Reset()
		s.imgOp.Filter = ebiten.FilterNearest
		dst.DrawImage(src, &s.imgOp)
		return
	}

	for len(s.temps) < passes {
		s.temps = append(s.temps, nil)
	}
	for i := passes; i < len(s.temps); i++ {
		if s.temps[i] != nil {
			s.temps[i].Deallocate()
			s.temps[i] = nil
		}
	}
	s.temps = s.temps[:passes]

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	current := src
	for i := 0; i < passes; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		t := s.temps[i]
		if t == nil || t.Bounds().Dx() != w || t.Bounds().Dy() != h {
			if t != nil {
				t.Deallocate()
			}
			t = ebiten.NewImage(w, h)
			s.temps[i] = t
		} else {
			t.Clear()
		}
		s.scaleInto(t, current)
		current = t
	}
	for i := passes - 2; i >= 0; i-- {
		s.temps[i].Clear()
		s.scaleInto(s.temps[i], current)
		current = s.temps[i]
	}
	s.scaleInto(dst, current)
}

// Dispose frees the temporary images.
func (s *BlurStage) Dispose() {
	for _, t := range s.temps {
		if t != nil {
			t.Deallocate()
		}
	}
	s.temps = nil
}

// --- OutlineStage ---

// OutlineStage draws the frame eight times, offset by Thickness in every
// cardinal and diagonal direction and tinted with Color, then the frame
// itself on top. Outlines that would cross the frame edge are clipped.
type OutlineStage struct {
	Thickness int
	Color     Color
	imgOp     ebiten.DrawImageOptions
}

// NewOutlineStage creates an outline of the given thickness and color.
func NewOutlineStage(thickness int, c Color) *OutlineStage {
	return &OutlineStage{Thickness: max(thickness, 0), Color: c}
}

// offsets returns the eight outline offsets for the current thickness.
func (s *OutlineStage) offsets() [8]Vec2 {
	t := float64(s.Thickness)
	return [8]Vec2{
		{-t, 0}, {t, 0}, {0, -t}, {0, t},
		{-t, -t}, {t, -t}, {-t, t}, {t, t},
	}
}

// Apply draws the outline passes behind src.
func (s *OutlineStage) Apply(src, dst *ebiten.Image) {
	op := &s.imgOp
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterNearest
	if s.Thickness > 0 {
		for _, off := range s.offsets() {
			op.GeoM.Reset()
			op.GeoM.Translate(off.X, off.Y)
			s.Color.scale(&op.ColorScale, 1)
			dst.DrawImage(src, op)
		}
	}
	op.GeoM.Reset()
	op.ColorScale.Reset()
	dst.DrawImage(src, op)
}

// --- PixelOutlineStage, PixelInlineStage ---

const pixelOutlineShaderSrc = `//kage:unit pixels
package main

var OutlineColor vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		return c
	}
	if imageSrc0At(src+vec2(1, 0)).a > 0 ||
		imageSrc0At(src+vec2(-1, 0)).a > 0 ||
		imageSrc0At(src+vec2(0, 1)).a > 0 ||
		imageSrc0At(src+vec2(0, -1)).a > 0 {
		return OutlineColor
	}
	return vec4(0)
}
`

const pixelInlineShaderSrc = `//kage:unit pixels
package main

var InlineColor vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return vec4(0)
	}
	if imageSrc0At(src+vec2(1, 0)).a == 0 ||
		imageSrc0At(src+vec2(-1, 0)).a == 0 ||
		imageSrc0At(src+vec2(0, 1)).a == 0 ||
		imageSrc0At(src+vec2(0, -1)).a == 0 {
		return InlineColor
	}
	return c
}
`

var (
	pixelOutlineShader *ebiten.Shader
	pixelInlineShader  *ebiten.Shader
)

func ensurePixelOutlineShader() *ebiten.Shader {
	if pixelOutlineShader == nil {
		s, err := ebiten.NewShader([]byte(pixelOutlineShaderSrc))
		if err != nil {
			panic("strata: failed to compile pixel outline shader: " + err.Error())
		}
		pixelOutlineShader = s
	}
	return pixelOutlineShader
}

func ensurePixelInlineShader() *ebiten.Shader {
	if pixelInlineShader == nil {
		s, err := ebiten.NewShader([]byte(pixelInlineShaderSrc))
		if err != nil {
			panic("strata: failed to compile pixel inline shader: " + err.Error())
		}
		pixelInlineShader = s
	}
	return pixelInlineShader
}

// edgeColor holds a premultiplied color uniform shared by the pixel edge stages.
type edgeColor struct {
	Color    Color
	colorF32 [4]float32
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

func newEdgeColor(c Color) edgeColor {
	return edgeColor{Color: c, uniforms: make(map[string]any, 1)}
}

// premultiplied writes Color into the uniform buffer.
func (e *edgeColor) premultiplied() []float32 {
	a := e.Color.A
	e.colorF32 = [4]float32{float32(e.Color.R * a), float32(e.Color.G * a), float32(e.Color.B * a), float32(a)}
	return e.colorF32[:]
}

func (e *edgeColor) apply(name string, shader *ebiten.Shader, src, dst *ebiten.Image) {
	e.uniforms[name] = e.premultiplied()
	b := src.Bounds()
	e.shaderOp.Images[0] = src
	e.shaderOp.Uniforms = e.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &e.shaderOp)
	e.shaderOp.Images[0] = nil
}

// PixelOutlineStage paints a one-pixel Color outline on transparent pixels
// that touch an opaque cardinal neighbor.
type PixelOutlineStage struct {
	edgeColor
}

// NewPixelOutlineStage creates a one-pixel outline stage.
func NewPixelOutlineStage(c Color) *PixelOutlineStage {
	return &PixelOutlineStage{newEdgeColor(c)}
}

// Apply draws src into dst with the outline added.
func (s *PixelOutlineStage) Apply(src, dst *ebiten.Image) {
	s.apply("OutlineColor", ensurePixelOutlineShader(), src, dst)
}

// PixelInlineStage recolors opaque pixels that border a transparent one.
type PixelInlineStage struct {
	edgeColor
}

// NewPixelInlineStage creates a one-pixel inline stage.
func NewPixelInlineStage(c Color) *PixelInlineStage {
	return &PixelInlineStage{newEdgeColor(c)}
}

// Apply draws src into dst with edge pixels recolored.
func (s *PixelInlineStage) Apply(src, dst *ebiten.Image) {
	s.apply("InlineColor", ensurePixelInlineShader(), src, dst)
}

// --- PaletteStage ---

const paletteShaderSrc = `//kage:unit pixels
package main

var PaletteSize float
var CycleOffset float
var TexWidth float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return vec4(0)
	}
	c.rgb /= c.a
	lum := 0.299*c.r + 0.587*c.g + 0.114*c.b
	idx := mod(lum*(PaletteSize-1)+CycleOffset, PaletteSize)
	pal := imageSrc1At(vec2((idx+0.5)/PaletteSize*TexWidth, 0.5))
	if pal.a > 0 {
		pal.rgb /= pal.a
	}
	return vec4(pal.rgb*c.a, c.a)
}
`

var paletteShader *ebiten.Shader

func ensurePaletteShader() *ebiten.Shader {
	if paletteShader == nil {
		s, err := ebiten.NewShader([]byte(paletteShaderSrc))
		if err != nil {
			panic("strata: failed to compile palette shader: " + err.Error())
		}
		paletteShader = s
	}
	return paletteShader
}

// PaletteStage maps every pixel's luminance to one of 256 palette colors,
// keeping its alpha. CycleOffset shifts the lookup for palette animation.
type PaletteStage struct {
	Palette     [256]Color
	CycleOffset float64

	tex      *ebiten.Image
	stale    bool
	pix      []byte
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewPaletteStage creates a stage with a grayscale ramp.
func NewPaletteStage() *PaletteStage {
	s := &PaletteStage{stale: true, uniforms: make(map[string]any, 3)}
	s.uniforms["PaletteSize"] = float32(256)
	for i := range s.Palette {
		v := float64(i) / 255
		s.Palette[i] = Color{v, v, v, 1}
	}
	return s
}

// SetPalette replaces the palette. The lookup texture is rebuilt on the
// next Apply.
func (s *PaletteStage) SetPalette(p [256]Color) {
	s.Palette = p
	s.stale = true
}

// ensureTexture rebuilds the w×h lookup texture. Every image bound to a
// DrawRectShader call must match the source size, so the 256 entries are
// stretched across the full width and repeated on every row.
func (s *PaletteStage) ensureTexture(w, h int) {
	resized := s.tex == nil || s.tex.Bounds().Dx() != w || s.tex.Bounds().Dy() != h
	if !resized && !s.stale {
		return
	}
	if resized {
		if s.tex != nil {
			s.tex.Deallocate()
		}
		s.tex = ebiten.NewImage(w, h)
	}
	n := w * h * 4
	if cap(s.pix) < n {
		s.pix = make([]byte, n)
	}
	s.pix = s.pix[:n]
	for x := 0; x < w; x++ {
		idx := min(int((float64(x)+0.5)*256/float64(w)), 255)
		c := s.Palette[idx].RGBA()
		for y := 0; y < h; y++ {
			off := (y*w + x) * 4
			s.pix[off], s.pix[off+1], s.pix[off+2], s.pix[off+3] = c.R, c.G, c.B, c.A
		}
	}
	s.tex.WritePixels(s.pix)
	s.stale = false
}

// Apply remaps src into dst through the palette.
func (s *PaletteStage) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	s.ensureTexture(w, h)
	s.uniforms["CycleOffset"] = float32(s.CycleOffset)
	s.uniforms["TexWidth"] = float32(w)
	s.shaderOp.Images[0] = src
	s.shaderOp.Images[1] = s.tex
	s.shaderOp.Uniforms = s.uniforms
	dst.DrawRectShader(w, h, ensurePaletteShader(), &s.shaderOp)
	s.shaderOp.Images[0] = nil
}

// Dispose frees the lookup texture.
func (s *PaletteStage) Dispose() {
	if s.tex != nil {
		s.tex.Deallocate()
		s.tex = nil
	}
	s.stale = true
}
