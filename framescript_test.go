package strata

import (
	"errors"
	"fmt"
	"testing"
)

// fakeTarget records the calls a frame script makes.
type fakeTarget struct {
	calls      []string
	virtualErr error
}

func (f *fakeTarget) Screenshot(label string) { f.calls = append(f.calls, "screenshot:"+label) }
func (f *fakeTarget) Resize(w, h int)         { f.calls = append(f.calls, fmt.Sprintf("resize:%dx%d", w, h)) }
func (f *fakeTarget) SetFullscreen(on bool) {
	f.calls = append(f.calls, fmt.Sprintf("fullscreen:%v", on))
}

func (f *fakeTarget) SetVirtualResolution(w, h int) error {
	f.calls = append(f.calls, fmt.Sprintf("virtual:%dx%d", w, h))
	return f.virtualErr
}

func TestLoadFrameScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "resize", "width": 1280, "height": 720},
			{"action": "wait", "frames": 3},
			{"action": "fullscreen", "on": true},
			{"action": "virtual", "width": 320, "height": 180}
		]
	}`)
	fs, err := LoadFrameScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs.steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(fs.steps))
	}
	if fs.steps[1].Width != 1280 || fs.steps[1].Height != 720 {
		t.Error("step 1 mismatch")
	}
	if fs.steps[2].Frames != 3 || !fs.steps[3].On {
		t.Error("step 2 or 3 mismatch")
	}
}

func TestLoadFrameScriptErrors(t *testing.T) {
	for name, data := range map[string]string{
		"invalid json":   `not json`,
		"empty":          `{"steps": []}`,
		"unknown action": `{"steps": [{"action": "click"}]}`,
		"bad resize":     `{"steps": [{"action": "resize", "width": 0, "height": 10}]}`,
		"bad virtual":    `{"steps": [{"action": "virtual", "width": 10}]}`,
	} {
		if _, err := LoadFrameScript([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFrameScriptStepsOncePerFrame(t *testing.T) {
	fs, err := LoadFrameScript([]byte(`{"steps": [
		{"action": "screenshot", "label": "a"},
		{"action": "wait", "frames": 2},
		{"action": "resize", "width": 800, "height": 600}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	target := &fakeTarget{}

	frames := 0
	for !fs.Done() && frames < 10 {
		if err := fs.step(target); err != nil {
			t.Fatal(err)
		}
		frames++
	}
	want := []string{"screenshot:a", "resize:800x600"}
	if !equalStrings(target.calls, want) {
		t.Errorf("calls = %v, want %v", target.calls, want)
	}
	// screenshot, wait, one extra waiting frame, resize
	if frames != 4 {
		t.Errorf("script took %d frames, want 4", frames)
	}

	if err := fs.step(target); err != nil || len(target.calls) != 2 {
		t.Error("a finished script should do nothing")
	}
}

func TestFrameScriptReturnsStepErrors(t *testing.T) {
	fs, err := LoadFrameScript([]byte(`{"steps": [
		{"action": "virtual", "width": 1, "height": 1},
		{"action": "screenshot", "label": "after"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	target := &fakeTarget{virtualErr: boom}
	if err := fs.step(target); !errors.Is(err, boom) {
		t.Errorf("step error = %v, want boom", err)
	}
	if err := fs.step(target); err != nil {
		t.Errorf("script should move on after an error, got %v", err)
	}
	if !fs.Done() {
		t.Error("script should be done")
	}
}
