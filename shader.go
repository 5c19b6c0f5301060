package strata

import (
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ShaderHandle is an opaque reference to a registered shader. Items carry
// handles rather than shader pointers so batching can key on a small value.
type ShaderHandle uint16

// NoShader is the handle of the default (unshaded) pipeline.
const NoShader ShaderHandle = 0

// maxShaderHandles is the number of live registrations a registry can hold.
const maxShaderHandles = math.MaxUint16

// registeredShader is a compiled shader plus the uniforms bound for every
// draw in its batch.
type registeredShader struct {
	shader   *ebiten.Shader
	uniforms map[string]any
}

// ShaderRegistry maps handles to compiled shaders. This core never compiles
// shader source; callers register already-built *ebiten.Shader values.
type ShaderRegistry struct {
	entries []registeredShader // index = handle-1
	free    []ShaderHandle
	log     *slog.Logger
}

// Register stores shader and returns its handle. uniforms may be nil and can
// be mutated later through Uniforms. A nil shader, or a registry already
// holding maxShaderHandles shaders, yields NoShader.
func (r *ShaderRegistry) Register(shader *ebiten.Shader, uniforms map[string]any) ShaderHandle {
	if shader == nil {
		return NoShader
	}
	if len(r.free) == 0 && len(r.entries) >= maxShaderHandles {
		r.logger().Warn("shader registry full", "live", len(r.entries))
		return NoShader
	}
	if uniforms == nil {
		uniforms = make(map[string]any)
	}
	entry := registeredShader{shader: shader, uniforms: uniforms}
	if n := len(r.free); n > 0 {
		h := r.free[n-1]
		r.free = r.free[:n-1]
		r.entries[h-1] = entry
		return h
	}
	r.entries = append(r.entries, entry)
	return ShaderHandle(len(r.entries))
}

// Unregister forgets the shader behind h. Items still referencing h fall
// back to the unshaded batch. The shader itself is not deallocated.
func (r *ShaderRegistry) Unregister(h ShaderHandle) {
	if r.lookup(h) == nil {
		return
	}
	r.entries[h-1] = registeredShader{}
	r.free = append(r.free, h)
}

// Lookup returns the shader registered under h, or nil.
func (r *ShaderRegistry) Lookup(h ShaderHandle) *ebiten.Shader {
	if e := r.lookup(h); e != nil {
		return e.shader
	}
	return nil
}

// Uniforms returns the uniform map bound to h, or nil if h is unregistered.
func (r *ShaderRegistry) Uniforms(h ShaderHandle) map[string]any {
	if e := r.lookup(h); e != nil {
		return e.uniforms
	}
	return nil
}

// resolve maps unknown handles to NoShader so they share the unshaded batch.
func (r *ShaderRegistry) resolve(h ShaderHandle) ShaderHandle {
	if r == nil || r.lookup(h) == nil {
		return NoShader
	}
	return h
}

func (r *ShaderRegistry) lookup(h ShaderHandle) *registeredShader {
	if r == nil || h == NoShader || int(h) > len(r.entries) {
		return nil
	}
	e := &r.entries[h-1]
	if e.shader == nil {
		return nil
	}
	return e
}

func (r *ShaderRegistry) logger() *slog.Logger {
	if r.log == nil {
		r.log = newNopLogger()
	}
	return r.log
}
