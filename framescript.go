package strata

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a frame script.
type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	On     bool   `json:"on,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// scriptFile is the top-level JSON structure of a frame script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// scriptTarget receives the effects of script steps. Game implements it.
type scriptTarget interface {
	Screenshot(label string)
	Resize(w, h int)
	SetFullscreen(on bool)
	SetVirtualResolution(w, h int) error
}

// FrameScript sequences screenshots, waits and resolution changes across
// frames for automated visual checks. Steps run during the update phase,
// so size changes always land between frames.
//
//	{"steps": [
//	  {"action": "screenshot", "label": "start"},
//	  {"action": "resize", "width": 1280, "height": 720},
//	  {"action": "wait", "frames": 2},
//	  {"action": "screenshot", "label": "scaled"}
//	]}
type FrameScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadFrameScript parses a JSON frame script.
func LoadFrameScript(data []byte) (*FrameScript, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse frame script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse frame script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "screenshot", "wait", "fullscreen":
		case "resize", "virtual":
			if st.Width <= 0 || st.Height <= 0 {
				return nil, fmt.Errorf("parse frame script: step %d: %s needs a positive width and height", i, st.Action)
			}
		default:
			return nil, fmt.Errorf("parse frame script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &FrameScript{steps: f.Steps}, nil
}

// Done reports whether every step has run.
func (fs *FrameScript) Done() bool { return fs.done }

// step advances the script by one frame. Errors from a step are returned
// and the script moves on.
func (fs *FrameScript) step(t scriptTarget) error {
	if fs.done {
		return nil
	}
	if fs.waitCount > 0 {
		fs.waitCount--
		return nil
	}
	if fs.cursor >= len(fs.steps) {
		fs.done = true
		return nil
	}

	st := fs.steps[fs.cursor]
	fs.cursor++

	var err error
	switch st.Action {
	case "screenshot":
		t.Screenshot(st.Label)
	case "resize":
		t.Resize(st.Width, st.Height)
	case "fullscreen":
		t.SetFullscreen(st.On)
	case "virtual":
		err = t.SetVirtualResolution(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			fs.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if fs.cursor >= len(fs.steps) && fs.waitCount == 0 {
		fs.done = true
	}
	return err
}
