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

import "github.com/launix-de/milkvm/expr"

// Stage is one step of the frame pipeline. Stages always run in this order.
type Stage int

const (
	StagePerFrameInit Stage = iota
	StagePerFrameEqns
	StageTransferQVars
	StagePerPixelMesh
	StagePerPixelEqns
	StageCustomWaveInitConds
	StageCustomWavePerFrameEqns
	StageCustomShapeInitConds
	StageCustomShapePerFrameEqns
	StagePublishOutputs
)

var stageNames = [...]string{
	"PerFrameInit",
	"PerFrameEqns",
	"TransferQVars",
	"PerPixelMesh",
	"PerPixelEqns",
	"CustomWaveInitConds",
	"CustomWavePerFrameEqns",
	"CustomShapeInitConds",
	"CustomShapePerFrameEqns",
	"PublishOutputs",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

func (p *Preset) stage(s Stage, f func()) {
	if p.Trace != nil {
		p.Trace.Stage(s, p.Name, p.frame, f)
		return
	}
	f()
}

/*
EvaluateFrame runs the whole pipeline once and returns the published outputs.
The returned buffer stays valid until the frame after next.

q1..q32 are copied into the custom objects right after the per-frame pass,
so wave and shape equations see the values the preset computed this frame
and never their own stale copies.
*/
func (p *Preset) EvaluateFrame(in *Inputs) *Outputs {
	if !p.finalized {
		p.Finalize()
	}
	p.frame = in.Frame
	p.stage(StagePerFrameInit, func() { p.applyInputs(in); p.Init.Apply(); p.PerFrameInit.Apply() })
	p.stage(StagePerFrameEqns, p.evalPerFrame)
	p.stage(StageTransferQVars, p.transferQVars)
	p.stage(StagePerPixelMesh, p.prefillMatrices)
	p.stage(StagePerPixelEqns, p.evalPerPixel)
	p.stage(StageCustomWaveInitConds, func() {
		p.waves.Ascend(func(w *CustomWave) bool {
			w.applyInit(&p.qsnap)
			return true
		})
	})
	p.stage(StageCustomWavePerFrameEqns, func() {
		p.waves.Ascend(func(w *CustomWave) bool {
			w.evalPerFrame()
			if w.Enabled() {
				w.evalPerPoint(in)
			}
			return true
		})
	})
	p.stage(StageCustomShapeInitConds, func() {
		p.shapes.Ascend(func(s *CustomShape) bool {
			s.applyInit(&p.qsnap)
			return true
		})
	})
	p.stage(StageCustomShapePerFrameEqns, func() {
		p.shapes.Ascend(func(s *CustomShape) bool {
			s.evalPerFrame()
			return true
		})
	})
	var out *Outputs
	p.stage(StagePublishOutputs, func() { out = p.publish(in) })
	return out
}

func (p *Preset) applyInputs(in *Inputs) {
	p.in.time.SetRaw(in.Time)
	p.in.frame.SetRaw(float32(in.Frame))
	p.in.fps.SetRaw(in.FPS)
	p.in.progress.SetRaw(in.Progress)
	p.in.bass.SetRaw(in.Bass)
	p.in.mid.SetRaw(in.Mid)
	p.in.treb.SetRaw(in.Treb)
	p.in.bassAtt.SetRaw(in.BassAtt)
	p.in.midAtt.SetRaw(in.MidAtt)
	p.in.trebAtt.SetRaw(in.TrebAtt)
}

func (p *Preset) evalPerFrame() {
	for _, e := range p.PerFrame {
		e.Eval(p.arena)
	}
}

func (p *Preset) transferQVars() {
	for k, q := range p.qvars {
		p.qsnap[k] = q.Value()
	}
}

// prefillMatrices gives every grid the per-frame value of its parameter, so
// cells not written by a per-pixel equation read the scalar.
func (p *Preset) prefillMatrices() {
	for _, param := range p.matrix {
		param.Grid().Fill(param.Value())
	}
}

// evalPerPixel walks the mesh column by column; in every cell the equations run in index order.
func (p *Preset) evalPerPixel() {
	eqns := p.PerPixel.List()
	if len(eqns) == 0 {
		return
	}
	for i := 0; i < p.mesh.GX; i++ {
		for j := 0; j < p.mesh.GY; j++ {
			for _, e := range eqns {
				e.Eval(p.arena, i, j)
			}
		}
	}
}

func (p *Preset) publish(in *Inputs) *Outputs {
	out := p.outputs[p.front]
	p.front ^= 1
	out.Frame = in.Frame
	out.GX, out.GY = p.mesh.GX, p.mesh.GY
	p.Builtins.Each(func(param *expr.Param) bool {
		out.Scalars[param.Name] = param.Value()
		return true
	})
	for _, param := range p.matrix {
		if param.MatrixActive() {
			out.Matrices[param.Name] = copyGrid(out.Matrices[param.Name], param.Grid())
		}
	}

	waves := p.Waves()
	if cap(out.Waves) < len(waves) {
		out.Waves = make([]WaveOutput, len(waves))
	}
	out.Waves = out.Waves[:len(waves)]
	for k, w := range waves {
		o := &out.Waves[k]
		o.ID = w.ID
		o.Enabled = w.Enabled()
		o.Samples = w.Samples()
		o.Scalars = w.scalars(o.Scalars)
		o.X = copyPoints(o.X, w.Scope.Find("x").Points()[:o.Samples])
		o.Y = copyPoints(o.Y, w.Scope.Find("y").Points()[:o.Samples])
		o.R = copyPoints(o.R, w.Scope.Find("r").Points()[:o.Samples])
		o.G = copyPoints(o.G, w.Scope.Find("g").Points()[:o.Samples])
		o.B = copyPoints(o.B, w.Scope.Find("b").Points()[:o.Samples])
		o.A = copyPoints(o.A, w.Scope.Find("a").Points()[:o.Samples])
	}

	shapes := p.Shapes()
	if cap(out.Shapes) < len(shapes) {
		out.Shapes = make([]ShapeOutput, len(shapes))
	}
	out.Shapes = out.Shapes[:len(shapes)]
	for k, s := range shapes {
		o := &out.Shapes[k]
		o.ID = s.ID
		o.Enabled = s.Enabled()
		o.Scalars = s.scalars(o.Scalars)
	}
	return out
}
