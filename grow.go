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
	"fmt"

	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

// MaxGrowIterations is the default limit on the number of dilation
// steps used to grow a plume.
const MaxGrowIterations = 1000

// ErrNonConvergentGrowth is reported when a plume is still growing after
// the maximum number of iterations. The partially grown plume is kept.
var ErrNonConvergentGrowth = errors.New("plume growth did not converge within the iteration limit")

// Grower grows plumes outward from a seed cell through adjacent ocean cells.
type Grower struct {
	// MaxIterations is the maximum number of dilation steps.
	// If it is zero or less, MaxGrowIterations is used.
	MaxIterations int
}

// Grow dilates seed one ring of 4-connected neighbors at a time,
// removing any cell where mask is zero after each step, until the set of
// member cells stops changing. seed and mask must be 2-D arrays of the same
// shape. Growth stops at the edges of the arrays. If the seed only
// contains land cells the result is empty.
//
// The number of dilation steps is returned along with the membership array,
// which is 1 for member cells and 0 elsewhere. If the iteration limit is
// reached first, the partial membership is returned with
// ErrNonConvergentGrowth.
func (g Grower) Grow(seed, mask *sparse.DenseArray) (*sparse.DenseArray, int, error) {
	if len(mask.Shape) != 2 || !sameShape(seed.Shape, mask.Shape) {
		return nil, 0, fmt.Errorf("news2roms: seed shape %v does not match 2-D mask shape %v", seed.Shape, mask.Shape)
	}
	maxIter := g.MaxIterations
	if maxIter <= 0 {
		maxIter = MaxGrowIterations
	}
	members := seed.Copy()
	floats.Mul(members.Elements, mask.Elements)
	n := floats.Sum(members.Elements)
	if n == 0 {
		return members, 0, nil
	}
	for iter := 1; iter <= maxIter; iter++ {
		next := dilate(members)
		floats.Mul(next.Elements, mask.Elements)
		nn := floats.Sum(next.Elements)
		if nn == n {
			return next, iter, nil
		}
		members, n = next, nn
	}
	return members, maxIter, ErrNonConvergentGrowth
}

// dilate returns the binary dilation of the 2-D array a by a 4-connected
// cross. Cells beyond the edges of a count as empty.
func dilate(a *sparse.DenseArray) *sparse.DenseArray {
	ny, nx := a.Shape[0], a.Shape[1]
	o := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if a.Get(j, i) == 0 {
				continue
			}
			o.Set(1, j, i)
			if j > 0 {
				o.Set(1, j-1, i)
			}
			if j < ny-1 {
				o.Set(1, j+1, i)
			}
			if i > 0 {
				o.Set(1, j, i-1)
			}
			if i < nx-1 {
				o.Set(1, j, i+1)
			}
		}
	}
	return o
}
