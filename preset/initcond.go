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

// InitCond is the value a parameter starts every frame with.
type InitCond struct {
	Param *expr.Param
	Value float32
}

func (c InitCond) Apply() {
	c.Param.Set(c.Value)
}

// InitSet keeps at most one initial condition per parameter, ordered by name.
type InitSet struct {
	tree *btree.BTreeG[InitCond]
}

func NewInitSet() *InitSet {
	return &InitSet{btree.NewG[InitCond](8, func(a, b InitCond) bool {
		return a.Param.Name < b.Param.Name
	})}
}

// Put adds or replaces the condition of p.
func (s *InitSet) Put(p *expr.Param, v float32) {
	s.tree.ReplaceOrInsert(InitCond{p, v})
}

func (s *InitSet) Get(p *expr.Param) (InitCond, bool) {
	return s.tree.Get(InitCond{Param: p})
}

func (s *InitSet) Has(p *expr.Param) bool {
	return s.tree.Has(InitCond{Param: p})
}

func (s *InitSet) Len() int {
	return s.tree.Len()
}

func (s *InitSet) Each(fn func(InitCond) bool) {
	s.tree.Ascend(fn)
}

// Apply writes every condition into its parameter.
func (s *InitSet) Apply() {
	s.tree.Ascend(func(c InitCond) bool {
		c.Apply()
		return true
	})
}

/*
ResolveUnspecified adds the declared default of every parameter in scope that
has neither an explicit initial condition nor a per-frame-init equation.
Parameters carrying one of the skip flags are left alone; read-only inputs,
q variables and user variables are always skipped. It returns the number of
conditions added and can be run again after more lines were parsed.
*/
func ResolveUnspecified(scope *expr.Scope, explicit *InitSet, perFrameInit map[string]*InitEqn, skip expr.ParamFlags) int {
	skip |= expr.FlagReadOnly | expr.FlagQVar | expr.FlagUserDef
	added := 0
	scope.Each(func(p *expr.Param) bool {
		if p.Flags&skip != 0 || p.Type == expr.TypeString {
			return true
		}
		if explicit.Has(p) {
			return true
		}
		if _, ok := perFrameInit[p.Name]; ok {
			return true
		}
		explicit.Put(p, p.Default)
		added++
		return true
	})
	return added
}
