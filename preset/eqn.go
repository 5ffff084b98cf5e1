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

import "github.com/google/btree"
import "github.com/launix-de/milkvm/expr"

// PerFrameEqn writes a scalar once per frame.
type PerFrameEqn struct {
	Index int
	Param *expr.Param
	Expr  expr.Expr
}

func (e *PerFrameEqn) Eval(a *expr.Arena) {
	e.Param.Set(e.Expr.Eval(a, expr.NoMesh, expr.NoMesh))
}

// PerPixelEqn writes one cell of its target's grid per mesh coordinate.
type PerPixelEqn struct {
	Index int
	Param *expr.Param
	Expr  expr.Expr
}

func (e *PerPixelEqn) index() int { return e.Index }

func (e *PerPixelEqn) Eval(a *expr.Arena, i, j int) {
	e.Param.Grid().Set(i, j, e.Expr.Eval(a, i, j))
}

// PerPointEqn writes one sample of a custom wave.
type PerPointEqn struct {
	Index int
	Param *expr.Param
	Expr  expr.Expr
}

func (e *PerPointEqn) index() int { return e.Index }

func (e *PerPointEqn) Eval(a *expr.Arena, k int) {
	e.Param.Points()[k] = e.Expr.Eval(a, k, expr.NoMesh)
}

// InitEqn is a per-frame-init equation. It runs when the preset is activated
// and its result becomes an initial condition.
type InitEqn struct {
	Param *expr.Param
	Expr  expr.Expr
}

type indexed interface {
	index() int
}

// eqnIndex orders matrix equations by insertion index.
type eqnIndex[T indexed] struct {
	tree *btree.BTreeG[T]
	list []T
}

func newEqnIndex[T indexed]() eqnIndex[T] {
	return eqnIndex[T]{tree: btree.NewG[T](8, func(a, b T) bool {
		return a.index() < b.index()
	})}
}

func (x *eqnIndex[T]) Put(e T) {
	x.tree.ReplaceOrInsert(e)
	x.list = nil
}

func (x *eqnIndex[T]) Len() int {
	return x.tree.Len()
}

// List returns the equations in index order. The slice is cached until the next Put.
func (x *eqnIndex[T]) List() []T {
	if x.list == nil && x.tree.Len() > 0 {
		x.list = make([]T, 0, x.tree.Len())
		x.tree.Ascend(func(e T) bool {
			x.list = append(x.list, e)
			return true
		})
	}
	return x.list
}
