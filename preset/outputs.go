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

// Outputs is what one frame hands to the renderer. Two of them are used in
// turn, so the renderer may keep reading the previous frame while the next one
// is computed.
type Outputs struct {
	Frame    int
	GX, GY   int
	Scalars  map[string]float32
	Matrices map[string]*expr.Grid // per-pixel parameters that were targeted by an equation
	Waves    []WaveOutput
	Shapes   []ShapeOutput
}

type WaveOutput struct {
	ID      int
	Enabled bool
	Samples int
	Scalars map[string]float32
	X, Y    []float32
	R, G, B []float32
	A       []float32
}

type ShapeOutput struct {
	ID      int
	Enabled bool
	Scalars map[string]float32
}

// Renderer consumes the outputs of each frame.
type Renderer interface {
	Render(*Outputs)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(*Outputs)

func (f RendererFunc) Render(o *Outputs) {
	f(o)
}

func newOutputs() *Outputs {
	return &Outputs{
		Scalars:  make(map[string]float32),
		Matrices: make(map[string]*expr.Grid),
	}
}

// Scalar returns the published value of a preset parameter.
func (o *Outputs) Scalar(name string) (float32, bool) {
	v, ok := o.Scalars[expr.FoldName(name)]
	return v, ok
}

// Matrix returns the published grid of a per-pixel parameter, or nil if the parameter was only computed per frame.
func (o *Outputs) Matrix(name string) *expr.Grid {
	return o.Matrices[expr.FoldName(name)]
}

// copyGrid copies src into dst, reusing dst's buffer when the size matches.
func copyGrid(dst, src *expr.Grid) *expr.Grid {
	if dst == nil || dst.W != src.W || dst.H != src.H {
		return src.Clone()
	}
	copy(dst.Data, src.Data)
	return dst
}

func copyPoints(dst, src []float32) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}
