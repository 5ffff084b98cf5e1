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

import "github.com/google/btree"
import "github.com/rs/zerolog/log"
import "golang.org/x/text/cases"

// FoldName is the canonical spelling of an identifier. Preset identifiers are case insensitive.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

type scopeEntry struct {
	name string
	id   ParamID
}

// Scope is one layer of names. The preset builtins, the user variables and
// every custom wave or shape each have their own; all of them allocate from
// the same arena.
type Scope struct {
	Name    string
	arena   *Arena
	names   *btree.BTreeG[scopeEntry]
	aliases map[string]string
}

func NewScope(name string, arena *Arena) *Scope {
	return &Scope{
		Name:  name,
		arena: arena,
		names: btree.NewG[scopeEntry](8, func(a, b scopeEntry) bool {
			return a.name < b.name
		}),
		aliases: make(map[string]string),
	}
}

func (s *Scope) Arena() *Arena {
	return s.arena
}

// Define allocates a new parameter in this scope. An existing parameter of the same name is returned unchanged.
func (s *Scope) Define(p Param, aliases ...string) *Param {
	p.Name = FoldName(p.Name)
	if existing := s.Find(p.Name); existing != nil {
		return existing
	}
	result := s.arena.add(p)
	s.names.ReplaceOrInsert(scopeEntry{result.Name, result.ID})
	for _, alias := range aliases {
		s.aliases[FoldName(alias)] = result.Name
	}
	return result
}

func (s *Scope) Find(name string) *Param {
	name = FoldName(name)
	if canonical, ok := s.aliases[name]; ok {
		name = canonical
	}
	e, ok := s.names.Get(scopeEntry{name: name})
	if !ok {
		return nil
	}
	return s.arena.params[e.id]
}

// Each visits all parameters in name order until fn returns false.
func (s *Scope) Each(fn func(*Param) bool) {
	s.names.Ascend(func(e scopeEntry) bool {
		return fn(s.arena.params[e.id])
	})
}

func (s *Scope) Len() int {
	return s.names.Len()
}

// Resolver looks names up layer by layer. Unknown names are created in Create,
// which is the user layer for preset equations and the object layer for
// custom wave and shape equations.
type Resolver struct {
	Layers []*Scope
	Create *Scope
}

func (r Resolver) Lookup(name string, create bool) *Param {
	for _, layer := range r.Layers {
		if p := layer.Find(name); p != nil {
			return p
		}
	}
	if r.Create == nil {
		return nil
	}
	if p := r.Create.Find(name); p != nil {
		return p
	}
	if !create || !ValidParamName(name) {
		return nil
	}
	p := r.Create.Define(Param{Name: name, Type: TypeDouble, Flags: FlagUserDef})
	log.Debug().Str("param", p.Name).Str("scope", r.Create.Name).Msg("created user parameter")
	return p
}

// ValidParamName rejects names that would be read as numbers or signs.
func ValidParamName(name string) bool {
	if name == "" {
		return false
	}
	switch c := name[0]; {
	case c >= '0' && c <= '9', c == '.', c == '+', c == '-':
		return false
	}
	return true
}
