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

// result of x/0
const DivByZero float32 = 10000000.0

// result of x%0
const ModByZero float32 = -3

// value of an operator node that lost one of its operands
const EvalError float32 = -1

type OpKind uint8

const (
	OpNone OpKind = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpOr
	OpAnd
	OpPositive
	OpNegative
)

// Precedence is the insertion priority used by the tree builder. A higher
// number binds looser.
func (o OpKind) Precedence() int {
	switch o {
	case OpAdd:
		return 4
	case OpSub:
		return 3
	case OpMul, OpDiv:
		return 2
	case OpMod:
		return 1
	case OpOr:
		return 5
	case OpAnd:
		return 4
	}
	return 0
}

func (o OpKind) String() string {
	switch o {
	case OpAdd, OpPositive:
		return "+"
	case OpSub, OpNegative:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpOr:
		return "|"
	case OpAnd:
		return "&"
	}
	return ""
}

func (o OpKind) Apply(l, r float32) float32 {
	switch o {
	case OpAdd, OpPositive:
		return l + r
	case OpSub, OpNegative:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		if r == 0 {
			return DivByZero
		}
		return l / r
	case OpMod:
		ir := int32(r)
		if ir == 0 {
			return ModByZero
		}
		return float32(int32(l) % ir)
	case OpOr:
		return float32(int32(l) | int32(r))
	case OpAnd:
		return float32(int32(l) & int32(r))
	}
	return EvalError
}

// insertInfix hangs op into the tree rooted at root and returns the new root.
// A strictly looser operator becomes the root; everything else descends the
// right spine until it meets an operand or an operator that binds at least as
// loose as itself.
func insertInfix(op OpKind, root *Tree) *Tree {
	if root == nil {
		return &Tree{Op: op}
	}
	if root.Op == OpNone || op.Precedence() > root.Op.Precedence() {
		return &Tree{Op: op, Left: root}
	}
	insertInfixRec(op, root)
	return root
}

func insertInfixRec(op OpKind, root *Tree) {
	switch {
	case root.Left == nil:
		root.Left = &Tree{Op: op}
	case root.Right == nil:
		root.Right = &Tree{Op: op}
	case root.Right.Op == OpNone || op.Precedence() >= root.Right.Op.Precedence():
		root.Right = &Tree{Op: op, Left: root.Right}
	default:
		insertInfixRec(op, root.Right)
	}
}

// insertOperand places an operand into the first free operator slot, scanning
// left before right.
func insertOperand(e Expr, root *Tree) (*Tree, bool) {
	leaf := &Tree{Leaf: e}
	if root == nil {
		return leaf, true
	}
	return root, insertOperandRec(leaf, root)
}

func insertOperandRec(leaf *Tree, root *Tree) bool {
	if root == nil {
		return false
	}
	if root.Op != OpNone {
		if root.Left == nil {
			root.Left = leaf
			return true
		}
		if root.Right == nil {
			root.Right = leaf
			return true
		}
	}
	return insertOperandRec(leaf, root.Left) || insertOperandRec(leaf, root.Right)
}
