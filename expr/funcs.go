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

import "fmt"
import "math/rand/v2"
import "github.com/launix-de/NonLockingReadMap"

type FuncParam struct {
	Name string
	Desc string
}

// Func is a builtin function. The arity is the number of Params.
type Func struct {
	Name   string
	Desc   string
	Params []FuncParam
	Fn     func(args []float32) float32
}

func (f Func) GetKey() string {
	return f.Name
}

func (f Func) ComputeSize() uint {
	return uint(64 + len(f.Name) + len(f.Desc) + 32*len(f.Params))
}

func (f *Func) NumArgs() int {
	return len(f.Params)
}

func (f *Func) Call(args []float32) float32 {
	return f.Fn(args)
}

// FuncTable holds the builtin functions of one engine. It is filled once and
// only read afterwards.
type FuncTable struct {
	funcs  NonLockingReadMap.NonLockingReadMap[Func, string]
	titles []string // declaration order, chapter titles start with #
	rng    *rand.Rand
}

// NewFuncTable declares all builtins; rand draws from rng.
func NewFuncTable(rng *rand.Rand) *FuncTable {
	result := &FuncTable{funcs: NonLockingReadMap.New[Func, string](), rng: rng}
	declareMath(result)
	return result
}

func (t *FuncTable) DeclareTitle(title string) {
	t.titles = append(t.titles, "#"+title)
}

func (t *FuncTable) Declare(f *Func) {
	f.Name = FoldName(f.Name)
	if n := len(f.Params); n < 1 || n > 3 {
		panic(fmt.Sprintf("builtin %s: arity %d not in 1..3", f.Name, n))
	}
	if f.Fn == nil {
		panic("builtin " + f.Name + " has no implementation")
	}
	if t.funcs.Get(f.Name) != nil {
		panic("builtin " + f.Name + " declared twice")
	}
	t.funcs.Set(f)
	t.titles = append(t.titles, f.Name)
}

func (t *FuncTable) Lookup(name string) *Func {
	return t.funcs.Get(FoldName(name))
}

// All returns the builtins sorted by name.
func (t *FuncTable) All() []*Func {
	return t.funcs.GetAll()
}
