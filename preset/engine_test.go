/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package preset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestEngine(t *testing.T) (*Engine, *[]int) {
	t.Helper()
	var frames []int
	eng := NewEngine(SettingsT{MeshX: 4, MeshY: 3, Seed: 5, FPS: 30, PresetDuration: 10, MaxPresetSize: "1MB"},
		RendererFunc(func(o *Outputs) { frames = append(frames, o.Frame) }))
	return eng, &frames
}

// TestEngineKeepsPreset checks that a failed load keeps the active preset.
func TestEngineKeepsPreset(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := eng.Frame(nil); !errors.Is(err, ErrNoPreset) {
		t.Errorf("frame without preset: %v", err)
	}
	if err := eng.LoadPresetFrom("good", "", strings.NewReader("zoom=2\n")); err != nil {
		t.Fatal(err)
	}
	bad := "per_frame_1=x=" + strings.Repeat("y", 600) + ";\n"
	if err := eng.LoadPresetFrom("bad", "", strings.NewReader(bad)); err == nil {
		t.Fatalf("overlong preset accepted")
	}
	if eng.Active.Name != "good" {
		t.Errorf("active preset replaced by %s", eng.Active.Name)
	}
	if eng.Stats.Rejected.Load() != 1 || eng.Stats.Loads.Load() != 1 {
		t.Errorf("stats: %s", eng.Stats)
	}
	if err := eng.LoadPreset(filepath.Join(t.TempDir(), "missing.milk")); err == nil || eng.Active.Name != "good" {
		t.Errorf("missing file: %v", err)
	}
}

// TestEngineFrames checks the engine clock and the renderer hand-off.
func TestEngineFrames(t *testing.T) {
	eng, frames := newTestEngine(t)
	if err := eng.LoadPresetFrom("clock", "", strings.NewReader("per_frame_1=monitor=time*fps;\n")); err != nil {
		t.Fatal(err)
	}
	var out *Outputs
	for k := 0; k < 3; k++ {
		var err error
		if out, err = eng.Frame(nil); err != nil {
			t.Fatal(err)
		}
	}
	if len(*frames) != 3 {
		t.Errorf("renderer called %d times", len(*frames))
	}
	if (*frames)[2] != 2 || out.Frame != 2 {
		t.Errorf("frame numbers %v", *frames)
	}
	if got := scalar(t, out, "monitor"); math.Abs(float64(got-2)) > 1e-4 {
		t.Errorf("monitor = %g", got)
	}
	if bass := scalar(t, out, "bass"); bass < 0.2 || bass > 1.8 {
		t.Errorf("bass out of the synthetic range: %g", bass)
	}
	if eng.Stats.Frames.Load() != 3 {
		t.Errorf("%d frames counted", eng.Stats.Frames.Load())
	}
}

// TestEngineProgress checks that progress wraps after the preset duration.
func TestEngineProgress(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.frame = 450
	in := eng.NextInputs()
	if in.Time != 15 || math.Abs(float64(in.Progress-0.5)) > 1e-6 {
		t.Errorf("time %g progress %g", in.Time, in.Progress)
	}
	if len(in.PCMLeft) != MaxSamples || len(in.Spectrum) != MaxSamples {
		t.Errorf("audio buffers not filled")
	}
}

// TestEngineDeterministic checks that the same seed gives the same random sequence.
func TestEngineDeterministic(t *testing.T) {
	run := func() []float32 {
		eng, _ := newTestEngine(t)
		if err := eng.LoadPresetFrom("dice", "", strings.NewReader("per_frame_1=monitor=rand(1000);\n")); err != nil {
			t.Fatal(err)
		}
		var result []float32
		for k := 0; k < 5; k++ {
			out, _ := eng.Frame(nil)
			result = append(result, scalar(t, out, "monitor"))
		}
		return result
	}
	a, b := run(), run()
	for k := range a {
		if a[k] != b[k] {
			t.Fatalf("draw %d differs: %v %v", k, a, b)
		}
	}
}

// TestEngineResize checks that a rejected size keeps the engine size.
func TestEngineResize(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.Resize(1000, 10); err == nil {
		t.Errorf("1000x10 accepted")
	}
	if err := eng.NewEmpty("scratch"); err != nil {
		t.Fatal(err)
	}
	if eng.Active.Mesh().GX != 4 {
		t.Errorf("engine size changed on error")
	}
	if err := eng.Resize(6, 5); err != nil || eng.Active.Mesh().GY != 5 {
		t.Errorf("resize: %v", err)
	}
}

// TestEngineLoadPreset checks loading from disk.
func TestEngineLoadPreset(t *testing.T) {
	eng, _ := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "disk.milk")
	if err := os.WriteFile(path, []byte(samplePreset), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := eng.LoadPreset(path); err != nil {
		t.Fatal(err)
	}
	if eng.Active.Name != "disk" || eng.Active.Path != path {
		t.Errorf("name %s path %s", eng.Active.Name, eng.Active.Path)
	}
	if eng.Stats.BytesLoaded.Load() != int64(len(samplePreset)) {
		t.Errorf("bytes loaded %d", eng.Stats.BytesLoaded.Load())
	}
}

// TestCommand checks the REPL commands.
func TestCommand(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.NewEmpty("repl"); err != nil {
		t.Fatal(err)
	}
	expect := func(line, want string) {
		t.Helper()
		got, err := Command(eng, line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		if !strings.Contains(got, want) {
			t.Errorf("%s: got %q, want %q", line, got, want)
		}
	}
	expect("per_frame_1=rot=0.25", "")
	expect(":frame", "rot=0.25")
	expect(":frame 3", "frame 3")
	expect("1+2", "3")
	expect(":explain 1+2*3", "(1 + (2 * 3)) = 7")
	expect(":help max", "max(x, y): the larger of x and y")
	expect(":help decay", "decay (double)")
	expect(":help", "nchoosek")
	expect("myvar=4", "")
	expect(":vars", "myvar=4")
	expect(":stats", "4 frames")
	for _, line := range []string{":bogus", ":", "max(1", ":help nothing", "per_frame_1=time=1"} {
		if _, err := Command(eng, line); err == nil {
			t.Errorf("%q accepted", line)
		}
	}
}

// TestStats checks the average frame time.
func TestStats(t *testing.T) {
	s := newStats()
	if s.AvgFrame() != 0 {
		t.Errorf("average without frames")
	}
	s.observeFrame(2 * time.Millisecond)
	s.observeFrame(4 * time.Millisecond)
	if s.AvgFrame() != 3*time.Millisecond {
		t.Errorf("average %v", s.AvgFrame())
	}
	if !strings.Contains(s.String(), "2 frames") {
		t.Errorf("summary %q", s.String())
	}
}
