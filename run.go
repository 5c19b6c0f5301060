package strata

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title string
	// Width and Height are the initial window size. Zero uses the
	// compositor's virtual resolution.
	Width, Height int
	Fullscreen    bool
	Resizable     bool
	// Update is called once per tick before the camera advances. A non-nil
	// error stops the game.
	Update func() error
	// Script, when set, is stepped once per tick after Update.
	Script *FrameScript
	// ExitOnScriptDone ends the game once Script has run every step.
	ExitOnScriptDone bool
}

// Game adapts a scene and compositor to ebiten.Game. Updates run first,
// then Layout delivers size changes, then Draw renders and presents once.
type Game struct {
	scene    *Scene
	comp     *Compositor
	cfg      RunConfig
	windowed bool
}

// NewGame creates a Game without opening a window.
func NewGame(s *Scene, c *Compositor, cfg RunConfig) *Game {
	return &Game{scene: s, comp: c, cfg: cfg}
}

// Update runs the user hook, advances the camera and steps the script.
func (g *Game) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	if cam := g.scene.Camera(); cam != nil {
		cam.Update(tickSeconds(ebiten.TPS(), ebiten.ActualTPS()))
	}
	if sc := g.cfg.Script; sc != nil {
		if err := sc.step(g); err != nil {
			g.comp.log.Warn("frame script", "err", err)
		}
		if g.cfg.ExitOnScriptDone && sc.Done() && g.comp.PendingScreenshots() == 0 {
			return ebiten.Termination
		}
	}
	return nil
}

// tickSeconds returns the duration of one tick. A fixed tps wins; when ticks
// follow the display (SyncWithFPS) the measured rate is used, falling back to
// 60 until one is available.
func tickSeconds(tps int, actual float64) float32 {
	switch {
	case tps > 0:
		return 1 / float32(tps)
	case actual > 0:
		return float32(1 / actual)
	default:
		return 1.0 / 60
	}
}

// Draw renders the frame and presents it.
func (g *Game) Draw(screen *ebiten.Image) {
	g.comp.RenderFrame(g.scene)
	g.comp.Present(screen)
}

// Layout feeds the outside size into the compositor and renders at that
// size; the compositor handles scaling itself.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.windowed {
		g.comp.SetFullscreen(ebiten.IsFullscreen())
	}
	g.comp.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Screenshot queues a capture of the next presented frame.
func (g *Game) Screenshot(label string) { g.comp.Screenshot(label) }

// Resize resizes the window, or the compositor target when no window is open.
func (g *Game) Resize(w, h int) {
	if g.windowed {
		ebiten.SetWindowSize(w, h)
		return
	}
	g.comp.Resize(w, h)
}

// SetFullscreen toggles fullscreen presentation.
func (g *Game) SetFullscreen(on bool) {
	if g.windowed {
		ebiten.SetFullscreen(on)
	}
	g.comp.SetFullscreen(on)
}

// SetVirtualResolution changes the base resolution and resizes the camera
// viewport to match.
func (g *Game) SetVirtualResolution(w, h int) error {
	if err := g.comp.SetVirtualResolution(w, h); err != nil {
		return err
	}
	if cam := g.scene.Camera(); cam != nil {
		cam.SetViewportSize(float64(w), float64(h))
	}
	return nil
}

// Run opens a window and runs s through c until the window closes or an
// update returns an error.
func Run(s *Scene, c *Compositor, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = c.VirtualSize()
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetFullscreen(cfg.Fullscreen)

	g := NewGame(s, c, cfg)
	g.windowed = true
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("strata: run: %w", err)
	}
	return nil
}
