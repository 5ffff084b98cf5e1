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
package expr

import "math"

type ParamType uint8

const (
	TypeBool ParamType = iota
	TypeInt
	TypeDouble
	TypeString
)

func (t ParamType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	}
	return "string"
}

type ParamFlags uint16

const (
	FlagReadOnly ParamFlags = 1 << iota
	FlagUserDef
	FlagQVar
	FlagTVar
	FlagAlwaysMatrix
	FlagPerPixel
	FlagPerPoint
)

func (f ParamFlags) Has(flag ParamFlags) bool {
	return f&flag != 0
}

const Unbounded = math.MaxFloat32

type ParamID int32

// Param is a named, typed variable. Its value lives in the scalar cell; a
// per-pixel parameter additionally owns a grid, a per-point parameter a point
// array. Which one an expression reads is decided by the matrix flag.
type Param struct {
	ID      ParamID
	Name    string
	Desc    string
	Type    ParamType
	Flags   ParamFlags
	Lower   float32
	Upper   float32
	Default float32
	Text    string // value of string parameters

	scalar     float32
	grid       *Grid
	points     []float32
	matrixFlag bool
}

// Value returns the scalar cell cast to the declared type.
func (p *Param) Value() float32 {
	switch p.Type {
	case TypeBool:
		if p.scalar != 0 {
			return 1
		}
		return 0
	case TypeInt:
		return float32(math.Trunc(float64(p.scalar)))
	case TypeDouble:
		return p.scalar
	}
	return 0
}

// Set stores v into the scalar cell, clamped to the bounds.
func (p *Param) Set(v float32) {
	switch p.Type {
	case TypeBool:
		if v != 0 {
			p.scalar = 1
		} else {
			p.scalar = 0
		}
	case TypeInt:
		v = float32(math.Trunc(float64(v)))
		fallthrough
	case TypeDouble:
		if v < p.Lower {
			v = p.Lower
		} else if v > p.Upper {
			v = p.Upper
		}
		p.scalar = v
	}
}

// SetRaw stores v without bounds checks. Used for engine-fed inputs.
func (p *Param) SetRaw(v float32) {
	p.scalar = v
}

func (p *Param) Reset() {
	p.Set(p.Default)
}

// MatrixActive reports whether mesh reads go to the grid or point array.
func (p *Param) MatrixActive() bool {
	return p.matrixFlag || p.Flags.Has(FlagAlwaysMatrix)
}

// MarkMatrix is called when a per-pixel or per-point equation targets p.
func (p *Param) MarkMatrix() {
	p.matrixFlag = true
}

func (p *Param) Grid() *Grid {
	return p.grid
}

func (p *Param) SetGrid(g *Grid) {
	p.grid = g
}

func (p *Param) Points() []float32 {
	return p.points
}

func (p *Param) SetPoints(pts []float32) {
	p.points = pts
}

func (p *Param) read(i, j int) float32 {
	if i >= 0 && p.MatrixActive() {
		if j >= 0 {
			if g := p.grid; g != nil && i < g.W && j < g.H {
				return g.Data[i*g.H+j]
			}
		} else if i < len(p.points) {
			return p.points[i]
		}
	}
	return p.Value()
}

// Grid is a W x H matrix stored column by column, indexed [i][j] with i < W.
type Grid struct {
	W, H int
	Data []float32
}

func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, Data: make([]float32, w*h)}
}

func (g *Grid) At(i, j int) float32 {
	return g.Data[i*g.H+j]
}

func (g *Grid) Set(i, j int, v float32) {
	g.Data[i*g.H+j] = v
}

func (g *Grid) Fill(v float32) {
	for k := range g.Data {
		g.Data[k] = v
	}
}

func (g *Grid) Clone() *Grid {
	result := &Grid{W: g.W, H: g.H, Data: make([]float32, len(g.Data))}
	copy(result.Data, g.Data)
	return result
}

// Arena owns every parameter of a preset. Expressions address parameters by
// their stable ParamID.
type Arena struct {
	params []*Param
}

func NewArena() *Arena {
	return new(Arena)
}

func (a *Arena) add(p Param) *Param {
	result := new(Param)
	*result = p
	result.ID = ParamID(len(a.params))
	if result.Lower == 0 && result.Upper == 0 {
		result.Lower, result.Upper = -Unbounded, Unbounded
	}
	result.Reset()
	a.params = append(a.params, result)
	return result
}

func (a *Arena) Get(id ParamID) *Param {
	return a.params[id]
}

func (a *Arena) Len() int {
	return len(a.params)
}
