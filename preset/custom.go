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

import "fmt"
import "github.com/launix-de/milkvm/expr"

// MaxCustomObjects limits wave and shape ids to 0..15.
const MaxCustomObjects = 16

// customObject is the part custom waves and shapes have in common: an own
// scope layered over the preset builtins, initial conditions and per-frame
// equations.
type customObject struct {
	ID           int
	Scope        *expr.Scope
	Init         *InitSet
	PerFrameInit *InitSet
	PerFrame     []*PerFrameEqn

	arena      *expr.Arena
	res        expr.Resolver
	local      expr.Resolver
	qvars      [NumQVars]*expr.Param
	enabled    *expr.Param
	initEqns   []*InitEqn
	initByName map[string]*InitEqn
	seq        int
}

func (o *customObject) init(kind string, id int, arena *expr.Arena, builtins *expr.Scope, defs []paramDef) {
	o.ID = id
	o.arena = arena
	o.Scope = expr.NewScope(fmt.Sprintf("%s_%d", kind, id), arena)
	defineAll(o.Scope, defs)
	defineTVars(o.Scope)
	o.qvars = defineQVars(o.Scope, 0)
	o.enabled = o.Scope.Find("enabled")
	o.res = expr.Resolver{Layers: []*expr.Scope{o.Scope, builtins}, Create: o.Scope}
	o.local = expr.Resolver{Layers: []*expr.Scope{o.Scope}, Create: o.Scope}
	o.Init = NewInitSet()
	o.PerFrameInit = NewInitSet()
	o.initByName = make(map[string]*InitEqn)
}

// Resolver is the name lookup for equations of this object.
func (o *customObject) Resolver() expr.Resolver {
	return o.res
}

func (o *customObject) Enabled() bool {
	return o.enabled.Value() != 0
}

func (o *customObject) addPerFrame(target *expr.Param, e expr.Expr) {
	o.seq++
	o.PerFrame = append(o.PerFrame, &PerFrameEqn{o.seq, target, e})
}

func (o *customObject) addInitEqn(target *expr.Param, e expr.Expr) {
	eq := &InitEqn{target, e}
	if _, ok := o.initByName[target.Name]; ok {
		for k, old := range o.initEqns {
			if old.Param == target {
				o.initEqns[k] = eq
			}
		}
	} else {
		o.initEqns = append(o.initEqns, eq)
	}
	o.initByName[target.Name] = eq
}

// finalize defaults all unspecified parameters and evaluates the per-frame-init equations.
func (o *customObject) finalize() {
	ResolveUnspecified(o.Scope, o.Init, o.initByName, expr.FlagTVar)
	o.Init.Apply()
	for _, e := range o.initEqns {
		e.Param.Set(e.Expr.Eval(o.arena, expr.NoMesh, expr.NoMesh))
		o.PerFrameInit.Put(e.Param, e.Param.Value())
	}
}

// applyInit resets the object for a new frame and hands over the preset's q values.
func (o *customObject) applyInit(q *[NumQVars]float32) {
	o.Init.Apply()
	o.PerFrameInit.Apply()
	for k, p := range o.qvars {
		p.SetRaw(q[k])
	}
}

func (o *customObject) evalPerFrame() {
	for _, e := range o.PerFrame {
		e.Eval(o.arena)
	}
}

func (o *customObject) scalars(dst map[string]float32) map[string]float32 {
	if dst == nil {
		dst = make(map[string]float32, o.Scope.Len())
	}
	o.Scope.Each(func(p *expr.Param) bool {
		dst[p.Name] = p.Value()
		return true
	})
	return dst
}

// CustomWave is an additional waveform with per-point equations.
type CustomWave struct {
	customObject
	PerPoint eqnIndex[*PerPointEqn]

	samples  *expr.Param
	spectrum *expr.Param
	scaling  *expr.Param
	sample   *expr.Param
	value1   *expr.Param
	value2   *expr.Param
	points   []*expr.Param // parameters owning a point array
}

func newCustomWave(id int, arena *expr.Arena, builtins *expr.Scope) *CustomWave {
	w := &CustomWave{PerPoint: newEqnIndex[*PerPointEqn]()}
	w.init("wave", id, arena, builtins, waveParams)
	w.samples = w.Scope.Find("samples")
	w.spectrum = w.Scope.Find("spectrum")
	w.scaling = w.Scope.Find("scaling")
	w.sample = w.Scope.Find("sample")
	w.value1 = w.Scope.Find("value1")
	w.value2 = w.Scope.Find("value2")
	w.Scope.Each(func(p *expr.Param) bool {
		if p.Flags.Has(expr.FlagPerPoint) {
			w.ensurePoints(p)
		}
		return true
	})
	return w
}

func (w *CustomWave) ensurePoints(p *expr.Param) {
	if p.Points() != nil {
		return
	}
	p.SetPoints(make([]float32, MaxSamples))
	w.points = append(w.points, p)
}

func (w *CustomWave) addPerPoint(target *expr.Param, e expr.Expr) {
	w.ensurePoints(target)
	target.MarkMatrix()
	w.seq++
	w.PerPoint.Put(&PerPointEqn{w.seq, target, e})
}

// Samples is the number of points drawn this frame.
func (w *CustomWave) Samples() int {
	n := int(w.samples.Value())
	if n > MaxSamples {
		n = MaxSamples
	}
	if n < 0 {
		n = 0
	}
	return n
}

/*
evalPerPoint fills every point array with its per-frame scalar and then runs
the per-point equations for k = 0..samples-1. sample runs from 0 to 1, value1
and value2 carry the left and right channel (or the spectrum) at the point.
*/
func (w *CustomWave) evalPerPoint(in *Inputs) int {
	n := w.Samples()
	if n == 0 {
		return 0
	}
	for _, p := range w.points {
		v := p.Value()
		pts := p.Points()[:n]
		for k := range pts {
			pts[k] = v
		}
	}
	left, right := in.PCMLeft, in.PCMRight
	if w.spectrum.Value() != 0 {
		left, right = in.Spectrum, in.Spectrum
	}
	scale := w.scaling.Value()
	eqns := w.PerPoint.List()
	for k := 0; k < n; k++ {
		var s float32
		if n > 1 {
			s = float32(k) / float32(n-1)
		}
		w.sample.SetRaw(s)
		w.value1.SetRaw(scale * sampleAt(left, k, n))
		w.value2.SetRaw(scale * sampleAt(right, k, n))
		for _, e := range eqns {
			e.Eval(w.arena, k)
		}
	}
	return n
}

func sampleAt(data []float32, k, n int) float32 {
	if len(data) == 0 {
		return 0
	}
	return data[k*len(data)/n]
}

// CustomShape is an additional polygon evaluated once per frame.
type CustomShape struct {
	customObject
}

func newCustomShape(id int, arena *expr.Arena, builtins *expr.Scope) *CustomShape {
	s := new(CustomShape)
	s.init("shape", id, arena, builtins, shapeParams)
	return s
}
