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

import "strconv"
import "strings"

// NoMesh is passed as mesh coordinate when an expression is evaluated outside of a mesh pass
const NoMesh = -1

// Expr is a compiled expression. Trees are immutable after parsing and can be
// evaluated at any mesh coordinate; i and j are NoMesh for scalar evaluation,
// j alone is NoMesh for per-point evaluation.
type Expr interface {
	Eval(a *Arena, i, j int) float32
	String() string
}

type Const float32

func (c Const) Eval(a *Arena, i, j int) float32 {
	return float32(c)
}

func (c Const) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 32)
}

type ParamRef struct {
	ID   ParamID
	Name string
}

func (p ParamRef) Eval(a *Arena, i, j int) float32 {
	return a.params[p.ID].read(i, j)
}

func (p ParamRef) String() string {
	return p.Name
}

type Call struct {
	Fn   *Func
	Args []Expr
	buf  []float32
}

func NewCall(fn *Func, args []Expr) *Call {
	return &Call{Fn: fn, Args: args, buf: make([]float32, len(args))}
}

func (c *Call) Eval(a *Arena, i, j int) float32 {
	// trees are never shared, so the argument buffer cannot be in use twice
	for k, arg := range c.Args {
		c.buf[k] = arg.Eval(a, i, j)
	}
	return c.Fn.Fn(c.buf)
}

func (c *Call) String() string {
	var b strings.Builder
	b.WriteString(c.Fn.Name)
	b.WriteByte('(')
	for k, arg := range c.Args {
		if k > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Tree is an operator node or, when Op is OpNone, a leaf wrapping Leaf.
type Tree struct {
	Op    OpKind
	Leaf  Expr
	Left  *Tree
	Right *Tree
}

func (t *Tree) Eval(a *Arena, i, j int) float32 {
	if t.Op == OpNone {
		if t.Leaf == nil {
			return 0
		}
		return t.Leaf.Eval(a, i, j)
	}
	l := EvalError
	if t.Left != nil {
		l = t.Left.Eval(a, i, j)
	}
	r := EvalError
	if t.Right != nil {
		r = t.Right.Eval(a, i, j)
	}
	return t.Op.Apply(l, r)
}

func (t *Tree) String() string {
	if t.Op == OpNone {
		if t.Leaf == nil {
			return "0"
		}
		return t.Leaf.String()
	}
	side := func(s *Tree) string {
		if s == nil {
			return "?"
		}
		return s.String()
	}
	if t.Op == OpPositive || t.Op == OpNegative {
		return "(" + t.Op.String() + side(t.Right) + ")"
	}
	return "(" + side(t.Left) + " " + t.Op.String() + " " + side(t.Right) + ")"
}

// Simplify strips leaf wrappers so a bare constant or parameter is evaluated directly.
func Simplify(t *Tree) Expr {
	if t.Op == OpNone && t.Leaf != nil {
		return t.Leaf
	}
	return t
}
