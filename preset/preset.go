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
import "errors"
import "github.com/google/btree"
import "github.com/rs/zerolog/log"
import "github.com/launix-de/milkvm/expr"

var ErrObjectID = errors.New("custom object id out of range")

type inputParams struct {
	time, frame, fps, progress *expr.Param
	bass, mid, treb            *expr.Param
	bassAtt, midAtt, trebAtt   *expr.Param
	meshx, meshy               *expr.Param
}

/*
Preset is one compiled preset. All parameters (builtins, user variables and
the locals of custom waves and shapes) live in a single arena; equations refer
to them by id.

A preset is built by the line parser, finalized once parsing is done and then
evaluated with EvaluateFrame. It is not safe for concurrent use.
*/
type Preset struct {
	Name string
	Path string

	Builtins *expr.Scope
	User     *expr.Scope

	Init         *InitSet
	PerFrameInit *InitSet
	PerFrame     []*PerFrameEqn
	PerPixel     eqnIndex[*PerPixelEqn]

	// Trace, if set, records the duration of every pipeline stage.
	Trace *Tracefile
	frame int

	funcs      *expr.FuncTable
	arena      *expr.Arena
	res        expr.Resolver
	qvars      [NumQVars]*expr.Param
	in         inputParams
	mesh       *Mesh
	meshIn     [4]*expr.Param // x, y, rad, ang
	matrix     []*expr.Param  // writable parameters owning a grid
	initEqns   []*InitEqn
	initByName map[string]*InitEqn
	waves      *btree.BTreeG[*CustomWave]
	shapes     *btree.BTreeG[*CustomShape]
	seq        int
	finalized  bool

	qsnap   [NumQVars]float32
	outputs [2]*Outputs
	front   int

	// line statistics of the last Load
	Lines   int
	Dropped int
}

func NewPreset(funcs *expr.FuncTable, gx, gy int) (*Preset, error) {
	mesh, err := NewMesh(gx, gy)
	if err != nil {
		return nil, err
	}
	p := &Preset{
		funcs:        funcs,
		arena:        expr.NewArena(),
		mesh:         mesh,
		Init:         NewInitSet(),
		PerFrameInit: NewInitSet(),
		PerPixel:     newEqnIndex[*PerPixelEqn](),
		initByName:   make(map[string]*InitEqn),
		waves: btree.NewG[*CustomWave](4, func(a, b *CustomWave) bool {
			return a.ID < b.ID
		}),
		shapes: btree.NewG[*CustomShape](4, func(a, b *CustomShape) bool {
			return a.ID < b.ID
		}),
		outputs: [2]*Outputs{newOutputs(), newOutputs()},
	}
	p.Builtins = expr.NewScope("preset", p.arena)
	p.User = expr.NewScope("user", p.arena)
	defineAll(p.Builtins, presetParams)
	p.qvars = defineQVars(p.Builtins, expr.FlagPerPixel)
	p.res = expr.Resolver{Layers: []*expr.Scope{p.Builtins}, Create: p.User}

	find := p.Builtins.Find
	p.in = inputParams{
		time: find("time"), frame: find("frame"), fps: find("fps"), progress: find("progress"),
		bass: find("bass"), mid: find("mid"), treb: find("treb"),
		bassAtt: find("bass_att"), midAtt: find("mid_att"), trebAtt: find("treb_att"),
		meshx: find("meshx"), meshy: find("meshy"),
	}
	p.meshIn = [4]*expr.Param{find("x"), find("y"), find("rad"), find("ang")}
	p.Builtins.Each(func(param *expr.Param) bool {
		if param.Flags.Has(expr.FlagPerPixel) && !param.Flags.Has(expr.FlagReadOnly) {
			param.SetGrid(expr.NewGrid(gx, gy))
			p.matrix = append(p.matrix, param)
		}
		return true
	})
	p.attachMesh()
	return p, nil
}

func (p *Preset) attachMesh() {
	p.meshIn[0].SetGrid(p.mesh.X)
	p.meshIn[1].SetGrid(p.mesh.Y)
	p.meshIn[2].SetGrid(p.mesh.Rad)
	p.meshIn[3].SetGrid(p.mesh.Ang)
	p.in.meshx.SetRaw(float32(p.mesh.GX))
	p.in.meshy.SetRaw(float32(p.mesh.GY))
}

// Resolver is the name lookup for preset level equations.
func (p *Preset) Resolver() expr.Resolver {
	return p.res
}

func (p *Preset) Arena() *expr.Arena {
	return p.arena
}

func (p *Preset) Funcs() *expr.FuncTable {
	return p.funcs
}

func (p *Preset) Mesh() *Mesh {
	return p.mesh
}

// Param looks a parameter up the way a preset equation would, without creating it.
func (p *Preset) Param(name string) *expr.Param {
	return p.res.Lookup(name, false)
}

// Resize swaps in a new mesh. All grids are allocated before anything is
// replaced, so on error the preset keeps its old size.
func (p *Preset) Resize(gx, gy int) error {
	if p.mesh.GX == gx && p.mesh.GY == gy {
		return nil
	}
	mesh, err := NewMesh(gx, gy)
	if err != nil {
		return err
	}
	grids := make([]*expr.Grid, len(p.matrix))
	for k := range grids {
		grids[k] = expr.NewGrid(gx, gy)
	}
	p.mesh = mesh
	for k, param := range p.matrix {
		param.SetGrid(grids[k])
	}
	p.attachMesh()
	log.Info().Str("preset", p.Name).Int("gx", gx).Int("gy", gy).Msg("mesh resized")
	return nil
}

// Wave returns the custom wave with the given id, creating it on first use.
func (p *Preset) Wave(id int) (*CustomWave, error) {
	if id < 0 || id >= MaxCustomObjects {
		return nil, fmt.Errorf("wave %d: %w", id, ErrObjectID)
	}
	if w, ok := p.waves.Get(&CustomWave{customObject: customObject{ID: id}}); ok {
		return w, nil
	}
	w := newCustomWave(id, p.arena, p.Builtins)
	p.waves.ReplaceOrInsert(w)
	if p.finalized {
		w.finalize()
	}
	return w, nil
}

// Shape returns the custom shape with the given id, creating it on first use.
func (p *Preset) Shape(id int) (*CustomShape, error) {
	if id < 0 || id >= MaxCustomObjects {
		return nil, fmt.Errorf("shape %d: %w", id, ErrObjectID)
	}
	if s, ok := p.shapes.Get(&CustomShape{customObject{ID: id}}); ok {
		return s, nil
	}
	s := newCustomShape(id, p.arena, p.Builtins)
	p.shapes.ReplaceOrInsert(s)
	if p.finalized {
		s.finalize()
	}
	return s, nil
}

// Waves returns the custom waves ordered by id.
func (p *Preset) Waves() []*CustomWave {
	result := make([]*CustomWave, 0, p.waves.Len())
	p.waves.Ascend(func(w *CustomWave) bool {
		result = append(result, w)
		return true
	})
	return result
}

// Shapes returns the custom shapes ordered by id.
func (p *Preset) Shapes() []*CustomShape {
	result := make([]*CustomShape, 0, p.shapes.Len())
	p.shapes.Ascend(func(s *CustomShape) bool {
		result = append(result, s)
		return true
	})
	return result
}

func (p *Preset) addPerFrame(target *expr.Param, e expr.Expr) {
	p.seq++
	p.PerFrame = append(p.PerFrame, &PerFrameEqn{p.seq, target, e})
}

// addPerPixel registers a mesh equation. User variables get their grid here.
func (p *Preset) addPerPixel(target *expr.Param, e expr.Expr) {
	if target.Grid() == nil {
		target.SetGrid(expr.NewGrid(p.mesh.GX, p.mesh.GY))
		p.matrix = append(p.matrix, target)
	}
	target.MarkMatrix()
	p.seq++
	p.PerPixel.Put(&PerPixelEqn{p.seq, target, e})
}

func (p *Preset) addInitEqn(target *expr.Param, e expr.Expr) {
	eq := &InitEqn{target, e}
	if _, ok := p.initByName[target.Name]; ok {
		for k, old := range p.initEqns {
			if old.Param == target {
				p.initEqns[k] = eq
			}
		}
	} else {
		p.initEqns = append(p.initEqns, eq)
	}
	p.initByName[target.Name] = eq
}

/*
Finalize is called when parsing is done. It defaults every unspecified
parameter, applies the initial conditions and evaluates the per-frame-init
equations once; their results are kept as initial conditions for all
following frames. Finalize may be called again after more lines were added.
*/
func (p *Preset) Finalize() {
	added := ResolveUnspecified(p.Builtins, p.Init, p.initByName, 0)
	p.Init.Apply()
	for _, e := range p.initEqns {
		e.Param.Set(e.Expr.Eval(p.arena, expr.NoMesh, expr.NoMesh))
		p.PerFrameInit.Put(e.Param, e.Param.Value())
	}
	p.waves.Ascend(func(w *CustomWave) bool {
		w.finalize()
		return true
	})
	p.shapes.Ascend(func(s *CustomShape) bool {
		s.finalize()
		return true
	})
	p.finalized = true
	log.Debug().Str("preset", p.Name).Int("defaulted", added).Int("per_frame", len(p.PerFrame)).Int("per_pixel", p.PerPixel.Len()).Int("waves", p.waves.Len()).Int("shapes", p.shapes.Len()).Msg("preset finalized")
}
