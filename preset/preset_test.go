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
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/launix-de/milkvm/expr"
)

func testFuncs() *expr.FuncTable {
	return expr.NewFuncTable(rand.New(rand.NewPCG(1, 2)))
}

// loadString loads preset text on a 4x3 mesh.
func loadString(t *testing.T, src string) *Preset {
	t.Helper()
	p, err := Load("test", strings.NewReader(src), testFuncs(), 4, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func scalar(t *testing.T, out *Outputs, name string) float32 {
	t.Helper()
	v, ok := out.Scalar(name)
	if !ok {
		t.Fatalf("%s not published", name)
	}
	return v
}

// TestPerFrame checks that per-frame equations see the inputs of the frame.
func TestPerFrame(t *testing.T) {
	p := loadString(t, "per_frame_1=rot=time*2;\nper_frame_2=wave_r=bass;\n")
	out := p.EvaluateFrame(&Inputs{Time: 1.5, Frame: 3, AudioLevels: AudioLevels{Bass: 0.25}})
	if got := scalar(t, out, "rot"); got != 3 {
		t.Errorf("rot = %g", got)
	}
	if got := scalar(t, out, "wave_r"); got != 0.25 {
		t.Errorf("wave_r = %g", got)
	}
	if out.Frame != 3 || scalar(t, out, "frame") != 3 {
		t.Errorf("frame not passed through")
	}
	if len(out.Matrices) != 0 {
		t.Errorf("no per-pixel equations, but %d matrices", len(out.Matrices))
	}
}

// TestInitCondsReapplied checks that builtins restart from their initial value every frame while user variables persist.
func TestInitCondsReapplied(t *testing.T) {
	p := loadString(t, "fDecay=0.5\nper_frame_1=decay=decay*0.5;\nper_frame_2=counter=counter+1;\n")
	in := &Inputs{}
	for frame := 1; frame <= 3; frame++ {
		out := p.EvaluateFrame(in)
		if got := scalar(t, out, "decay"); got != 0.25 {
			t.Errorf("frame %d: decay = %g", frame, got)
		}
		if got := p.User.Find("counter").Value(); got != float32(frame) {
			t.Errorf("frame %d: counter = %g", frame, got)
		}
	}
}

// TestDefaults checks that unspecified parameters start at their declared default.
func TestDefaults(t *testing.T) {
	p := loadString(t, "zoom=1.1\n")
	decay := p.Param("decay")
	if decay.Value() != 0.98 || !p.Init.Has(decay) {
		t.Errorf("decay not defaulted: %g", decay.Value())
	}
	if c, ok := p.Init.Get(p.Param("zoom")); !ok || c.Value != 1.1 {
		t.Errorf("explicit zoom lost: %+v", c)
	}
	if p.Init.Has(p.Param("time")) || p.Init.Has(p.Param("q1")) {
		t.Errorf("inputs and q variables must not be defaulted")
	}
	out := p.EvaluateFrame(&Inputs{})
	if scalar(t, out, "gamma") != 2 || scalar(t, out, "wave_mode") != 0 {
		t.Errorf("defaults not published")
	}
}

// TestPerFrameInit checks that per-frame-init results are kept as start values.
func TestPerFrameInit(t *testing.T) {
	p := loadString(t, "per_frame_init_1=q5=3;\nper_frame_1=q5=q5+1;\n")
	for frame := 0; frame < 2; frame++ {
		out := p.EvaluateFrame(&Inputs{Frame: frame})
		if got := scalar(t, out, "q5"); got != 4 {
			t.Errorf("frame %d: q5 = %g", frame, got)
		}
	}
	if c, ok := p.PerFrameInit.Get(p.Param("q5")); !ok || c.Value != 3 {
		t.Errorf("per-frame-init value not stored")
	}
}

// TestPerPixel checks that only targeted parameters become matrices.
func TestPerPixel(t *testing.T) {
	p := loadString(t, "per_frame_1=rot=0.5;\nper_pixel_1=zoom=zoom+x;\n")
	out := p.EvaluateFrame(&Inputs{})
	zoom := out.Matrix("zoom")
	if zoom == nil || zoom.W != 4 || zoom.H != 3 {
		t.Fatalf("zoom matrix missing: %+v", zoom)
	}
	if zoom.At(0, 2) != 1 || zoom.At(3, 0) != 2 {
		t.Errorf("zoom cells: %v", zoom.Data)
	}
	if out.Matrix("rot") != nil {
		t.Errorf("rot was not targeted per pixel")
	}
	if scalar(t, out, "zoom") != 1 || scalar(t, out, "rot") != 0.5 {
		t.Errorf("scalars changed by per-pixel pass")
	}
}

// TestPerPixelUserVariable checks per-pixel user variables and the order of equations within a cell.
func TestPerPixelUserVariable(t *testing.T) {
	p := loadString(t, "per_pixel_1=tmp=x*2;\nper_pixel_2=zoom=tmp+1;\n")
	out := p.EvaluateFrame(&Inputs{})
	if got := out.Matrix("zoom").At(3, 1); got != 3 {
		t.Errorf("zoom(3,1) = %g", got)
	}
	if out.Matrix("tmp") == nil {
		t.Errorf("user matrix not published")
	}
}

// TestEvaluateIdempotent checks that equal inputs give equal outputs.
func TestEvaluateIdempotent(t *testing.T) {
	p := loadString(t, "per_frame_1=rot=sin(time);\nper_pixel_1=warp=rad*bass;\n")
	in := &Inputs{Time: 0.7, AudioLevels: AudioLevels{Bass: 1.3}}
	a := p.EvaluateFrame(in)
	rotA := scalar(t, a, "rot")
	warpA := append([]float32(nil), a.Matrix("warp").Data...)
	b := p.EvaluateFrame(in)
	if scalar(t, b, "rot") != rotA {
		t.Errorf("rot differs")
	}
	for k, v := range b.Matrix("warp").Data {
		if v != warpA[k] {
			t.Fatalf("warp cell %d differs", k)
		}
	}
}

// TestDoubleBuffer checks that two output buffers are used in turn.
func TestDoubleBuffer(t *testing.T) {
	p := loadString(t, "")
	a := p.EvaluateFrame(&Inputs{Frame: 1})
	b := p.EvaluateFrame(&Inputs{Frame: 2})
	c := p.EvaluateFrame(&Inputs{Frame: 3})
	if a == b || a != c {
		t.Errorf("buffers not alternating")
	}
	if b.Frame != 2 {
		t.Errorf("previous buffer overwritten")
	}
}

// TestCustomWave checks q transfer, per-frame and per-point equations of a wave.
func TestCustomWave(t *testing.T) {
	p := loadString(t, strings.Join([]string{
		"per_frame_1=q1=7;",
		"wavecode_0_enabled=1",
		"wavecode_0_samples=5",
		"wave_0_per_frame1=t1=q1*2;",
		"wave_0_per_point1=x=sample;",
		"wave_0_per_point2=y=value1*0+time;",
	}, "\n"))
	out := p.EvaluateFrame(&Inputs{Time: 0.5})
	if len(out.Waves) != 1 {
		t.Fatalf("%d waves", len(out.Waves))
	}
	w := out.Waves[0]
	if !w.Enabled || w.Samples != 5 {
		t.Fatalf("wave header: %+v", w)
	}
	if w.Scalars["t1"] != 14 {
		t.Errorf("t1 = %g", w.Scalars["t1"])
	}
	for k, want := range []float32{0, 0.25, 0.5, 0.75, 1} {
		if w.X[k] != want || w.Y[k] != 0.5 {
			t.Errorf("point %d: %g %g", k, w.X[k], w.Y[k])
		}
	}
	if len(w.R) != 5 || w.R[4] != 1 {
		t.Errorf("color points not filled: %v", w.R)
	}
	if p.User.Find("time") != nil {
		t.Errorf("time must resolve to the builtin")
	}
}

// TestCustomWaveDisabled checks that a disabled wave skips its per-point pass.
func TestCustomWaveDisabled(t *testing.T) {
	p := loadString(t, "wavecode_2_samples=4\nwave_2_per_point1=x=7;\n")
	out := p.EvaluateFrame(&Inputs{})
	if out.Waves[0].Enabled || out.Waves[0].X[0] == 7 {
		t.Errorf("disabled wave evaluated")
	}
}

// TestObjectLocalTargets checks that wave and shape equations never assign preset parameters.
func TestObjectLocalTargets(t *testing.T) {
	p := loadString(t, strings.Join([]string{
		"wavecode_0_enabled=1",
		"wave_0_init1=rad=0.5;",
		"wave_0_per_frame1=ang=time;",
		"wave_0_per_frame2=zoom=5;",
		"shape_0_per_frame1=decay=0.1;",
	}, "\n"))
	if p.Dropped != 0 {
		t.Fatalf("%d lines dropped", p.Dropped)
	}
	out := p.EvaluateFrame(&Inputs{Time: 2})
	if scalar(t, out, "zoom") != 1 || scalar(t, out, "decay") != 0.98 {
		t.Errorf("preset changed by objects: zoom=%g decay=%g", scalar(t, out, "zoom"), scalar(t, out, "decay"))
	}
	w := out.Waves[0]
	if w.Scalars["ang"] != 2 || w.Scalars["zoom"] != 5 || w.Scalars["rad"] != 0.5 {
		t.Errorf("wave scalars: %v", w.Scalars)
	}
	if out.Shapes[0].Scalars["decay"] != 0.1 {
		t.Errorf("shape decay = %g", out.Shapes[0].Scalars["decay"])
	}
	if p.User.Find("ang") != nil || p.User.Find("zoom") != nil {
		t.Errorf("object targets leaked into the preset")
	}
}

// TestCustomShape checks shape literals, clamping and per-frame equations.
func TestCustomShape(t *testing.T) {
	p := loadString(t, "shapecode_3_sides=200\nshapecode_3_enabled=1\nshape_3_per_frame1=ang=time;\n")
	out := p.EvaluateFrame(&Inputs{Time: 2})
	if len(out.Shapes) != 1 {
		t.Fatalf("%d shapes", len(out.Shapes))
	}
	s := out.Shapes[0]
	if s.ID != 3 || !s.Enabled || s.Scalars["sides"] != 100 || s.Scalars["ang"] != 2 {
		t.Errorf("shape: %+v", s)
	}
	if scalar(t, out, "ang") != 0 {
		t.Errorf("shape equation leaked into the preset")
	}
}

// TestObjectOrder checks that objects are evaluated and published by id.
func TestObjectOrder(t *testing.T) {
	p := loadString(t, "wavecode_3_enabled=1\nwavecode_1_enabled=1\n")
	out := p.EvaluateFrame(&Inputs{})
	if len(out.Waves) != 2 || out.Waves[0].ID != 1 || out.Waves[1].ID != 3 {
		t.Errorf("wave order: %+v", out.Waves)
	}
}

// TestResize checks that a rejected size leaves the preset untouched.
func TestResize(t *testing.T) {
	p := loadString(t, "per_pixel_1=zoom=x;\n")
	if err := p.Resize(1, 5); err == nil {
		t.Fatalf("1x5 accepted")
	}
	if p.Mesh().GX != 4 || p.Mesh().GY != 3 {
		t.Errorf("mesh changed on error")
	}
	if err := p.Resize(8, 6); err != nil {
		t.Fatal(err)
	}
	out := p.EvaluateFrame(&Inputs{})
	if m := out.Matrix("zoom"); m.W != 8 || m.H != 6 || m.At(7, 0) != 1 {
		t.Errorf("resized matrix: %+v", m)
	}
	if scalar(t, out, "meshx") != 8 || scalar(t, out, "meshy") != 6 {
		t.Errorf("mesh size not published")
	}
}

// TestTraceStages checks that a traced frame records all stages in order.
func TestTraceStages(t *testing.T) {
	var buf traceBuffer
	p := loadString(t, "per_frame_1=rot=1;\n")
	p.Trace = NewTrace(&buf)
	p.EvaluateFrame(&Inputs{})
	p.Trace.Close()
	events := buf.events(t)
	var begins []string
	for _, e := range events {
		if e["ph"] == "B" {
			begins = append(begins, e["name"].(string))
		}
	}
	if strings.Join(begins, ",") != strings.Join(stageNames[:], ",") {
		t.Errorf("stages: %v", begins)
	}
	if len(events) != 2*len(stageNames) {
		t.Errorf("%d events", len(events))
	}
}
