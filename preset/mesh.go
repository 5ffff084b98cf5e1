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
import "math"
import "errors"
import "github.com/launix-de/milkvm/expr"

const MinMeshSize = 2
const MaxMeshSize = 512

var ErrMeshSize = errors.New("mesh size out of range")

// Mesh holds the input coordinates of every grid cell. It only changes on resize.
type Mesh struct {
	GX, GY int
	X      *expr.Grid
	Y      *expr.Grid
	Rad    *expr.Grid
	Ang    *expr.Grid
}

func NewMesh(gx, gy int) (*Mesh, error) {
	if gx < MinMeshSize || gy < MinMeshSize || gx > MaxMeshSize || gy > MaxMeshSize {
		return nil, fmt.Errorf("%dx%d: %w", gx, gy, ErrMeshSize)
	}
	m := &Mesh{
		GX:  gx,
		GY:  gy,
		X:   expr.NewGrid(gx, gy),
		Y:   expr.NewGrid(gx, gy),
		Rad: expr.NewGrid(gx, gy),
		Ang: expr.NewGrid(gx, gy),
	}
	for i := 0; i < gx; i++ {
		for j := 0; j < gy; j++ {
			x := float64(i) / float64(gx-1)
			y := -(float64(j)/float64(gy-1) - 1)
			m.X.Set(i, j, float32(x))
			m.Y.Set(i, j, float32(y))
			m.Rad.Set(i, j, float32(math.Hypot((x-.5)*2, (y-.5)*2)*.7071067))
			m.Ang.Set(i, j, float32(math.Atan2((y-.5)*2, (x-.5)*2)))
		}
	}
	return m, nil
}
