package strata

import (
	"errors"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
)

// Default virtual resolution.
const (
	DefaultVirtualWidth  = 640
	DefaultVirtualHeight = 360
)

// ErrInvalidResolution is returned for non-positive virtual sizes.
var ErrInvalidResolution = errors.New("strata: invalid virtual resolution")

// Config configures a Compositor.
type Config struct {
	// VirtualWidth and VirtualHeight are the fixed base resolution every
	// layer buffer is allocated at. Zero selects 640×360.
	VirtualWidth  int
	VirtualHeight int

	// Background is the color the main buffer is cleared to each frame.
	Background Color

	// UpscaleFilter samples the final frame when presenting it scaled.
	UpscaleFilter ebiten.Filter

	// KeepAspect forces a uniform output scale in windowed mode too.
	// Fullscreen presentation always keeps the aspect ratio.
	KeepAspect bool

	// Fullscreen is the initial presentation mode.
	Fullscreen bool

	// Debug logs per-frame statistics at debug level.
	Debug bool

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// ScreenshotDir is where Screenshot writes PNG files. Empty selects
	// "screenshots".
	ScreenshotDir string
}

// DefaultConfig returns a 640×360 configuration with an opaque black
// background, nearest-neighbour upscaling and letterboxing.
func DefaultConfig() Config {
	return Config{
		VirtualWidth:  DefaultVirtualWidth,
		VirtualHeight: DefaultVirtualHeight,
		Background:    Color{0, 0, 0, 1},
		UpscaleFilter: ebiten.FilterNearest,
		KeepAspect:    true,
		ScreenshotDir: "screenshots",
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.VirtualWidth <= 0 || c.VirtualHeight <= 0 {
		c.VirtualWidth = DefaultVirtualWidth
		c.VirtualHeight = DefaultVirtualHeight
	}
	if c.Logger == nil {
		c.Logger = newNopLogger()
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	return c
}
