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

// docgen writes the markdown reference of all builtin functions and parameters.
//
//	go run ./tools/docgen [folder]
package main

import "os"
import "math/rand/v2"
import "github.com/rs/zerolog/log"
import "github.com/launix-de/milkvm/expr"
import "github.com/launix-de/milkvm/preset"

func main() {
	folder := "docs"
	if len(os.Args) > 1 {
		folder = os.Args[1]
	}
	funcs := expr.NewFuncTable(rand.New(rand.NewPCG(1, 2)))
	if err := expr.WriteDocumentation(folder, funcs, preset.DocScopes()...); err != nil {
		log.Fatal().Err(err).Msg("docgen failed")
	}
	log.Info().Str("folder", folder).Msg("documentation written")
}
