package strata

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the next presented frame. The PNG
// is written to Config.ScreenshotDir with a timestamped file name.
func (c *Compositor) Screenshot(label string) {
	c.screenshots = append(c.screenshots, label)
}

// PendingScreenshots returns the number of queued captures.
func (c *Compositor) PendingScreenshots() int { return len(c.screenshots) }

// flushScreenshots writes every queued capture of screen. Failures are
// logged and never interrupt the frame.
func (c *Compositor) flushScreenshots(screen *ebiten.Image) {
	if len(c.screenshots) == 0 {
		return
	}
	defer func() { c.screenshots = c.screenshots[:0] }()

	dir := c.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.log.Error("screenshot: create directory", "dir", dir, "err", err)
		return
	}

	img := unpremultiply(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range c.screenshots {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			c.log.Error("screenshot", "err", err)
			continue
		}
		c.log.Info("screenshot written", "path", path)
	}
}

// unpremultiply reads screen back and converts it to straight-alpha NRGBA.
func unpremultiply(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	screen.ReadPixels(img.Pix)
	for i := 0; i < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		if a == 0 || a == 255 {
			continue
		}
		for j := 0; j < 3; j++ {
			img.Pix[i+j] = uint8(min(int(img.Pix[i+j])*255/int(a), 255))
		}
	}
	return img
}

// writePNG encodes img to a PNG file at path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
