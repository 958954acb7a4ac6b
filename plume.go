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

import "github.com/ctessum/sparse"

// Plume is the set of ocean cells that a single river's value
// is assigned to.
type Plume struct {
	// River is the name of the river the plume belongs to.
	River string

	// Window is the block of grid cells that Members covers.
	Window Window

	// Members is 1 for cells in the plume and 0 elsewhere.
	// It has the shape of Window.
	Members *sparse.DenseArray

	// Value is the value assigned to each member cell.
	Value float64
}

// Stamp overwrites the member cells of p in the full-grid array field
// with p.Value.
func (p Plume) Stamp(field *sparse.DenseArray) {
	ny, nx := p.Window.Shape()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if p.Members.Get(j, i) != 0 {
				// DenseArray.Set ignores zero values.
				field.Elements[field.Index1d(p.Window.J0+j, p.Window.I0+i)] = p.Value
			}
		}
	}
}

// Overlay returns a copy of base with each of plumes stamped onto it in
// order. Where plumes overlap, the later plume's value is kept.
func Overlay(base *sparse.DenseArray, plumes ...Plume) *sparse.DenseArray {
	o := base.Copy()
	for _, p := range plumes {
		p.Stamp(o)
	}
	return o
}
