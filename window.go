/*
Copyright © 2019 the news2roms authors.
This file is part of news2roms.

news2roms is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

news2roms is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with news2roms.  If not, see <http://www.gnu.org/licenses/>.
*/

package news2roms

import (
	"errors"

	"github.com/ctessum/sparse"
)

// ErrWindowOutOfBounds is reported when the window around a river mouth
// extends beyond the edge of the grid. The window is clipped to the grid.
var ErrWindowOutOfBounds = errors.New("plume window extends beyond the grid edge and was clipped")

// Window is the rectangular block of grid cells with eta indices in
// [J0, J1) and xi indices in [I0, I1).
type Window struct {
	J0, J1, I0, I1 int
}

// NewWindow returns the square window of half-width r centered on c,
// clipped to a grid with ny × nx cells. clipped is true if any
// part of the window fell outside the grid.
func NewWindow(c Cell, r, ny, nx int) (w Window, clipped bool) {
	w = Window{J0: c.J - r, J1: c.J + r + 1, I0: c.I - r, I1: c.I + r + 1}
	if w.J0 < 0 {
		w.J0, clipped = 0, true
	}
	if w.I0 < 0 {
		w.I0, clipped = 0, true
	}
	if w.J1 > ny {
		w.J1, clipped = ny, true
	}
	if w.I1 > nx {
		w.I1, clipped = nx, true
	}
	return w, clipped
}

// Shape returns the number of cells in each direction of the window.
func (w Window) Shape() (ny, nx int) {
	return w.J1 - w.J0, w.I1 - w.I0
}

// Local converts grid cell c to an index within the window.
func (w Window) Local(c Cell) Cell {
	return Cell{J: c.J - w.J0, I: c.I - w.I0}
}

// Extract returns a copy of the part of the 2-D array a that is
// covered by the window.
func (w Window) Extract(a *sparse.DenseArray) *sparse.DenseArray {
	ny, nx := w.Shape()
	o := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		row := a.Index1d(w.J0+j, w.I0)
		copy(o.Elements[j*nx:(j+1)*nx], a.Elements[row:row+nx])
	}
	return o
}
