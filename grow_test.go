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
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

// oceanWindow returns an ny × nx mask of ocean cells, except for land.
func oceanWindow(ny, nx int, land ...Cell) *sparse.DenseArray {
	mask := sparse.ZerosDense(ny, nx)
	for i := range mask.Elements {
		mask.Elements[i] = 1
	}
	for _, c := range land {
		mask.Elements[mask.Index1d(c.J, c.I)] = 0
	}
	return mask
}

func seedAt(ny, nx int, c Cell) *sparse.DenseArray {
	seed := sparse.ZerosDense(ny, nx)
	seed.Set(1, c.J, c.I)
	return seed
}

func TestGrowAllOcean(t *testing.T) {
	mask := oceanWindow(21, 21)
	seed := seedAt(21, 21, Cell{J: 10, I: 10})

	members, iter, err := Grower{}.Grow(seed, mask)
	if err != nil {
		t.Fatal(err)
	}
	if n := floats.Sum(members.Elements); n != 441 {
		t.Errorf("want 441 members but have %g", n)
	}
	// 20 steps to reach the corners and one more to find that nothing changed.
	if iter != 21 {
		t.Errorf("want 21 iterations but have %d", iter)
	}
}

func TestGrowMonotone(t *testing.T) {
	mask := oceanWindow(21, 21)
	seed := seedAt(21, 21, Cell{J: 10, I: 10})
	var prev float64 = 1
	for k := 1; k <= 20; k++ {
		members, _, err := Grower{MaxIterations: k}.Grow(seed, mask)
		if !errors.Is(err, ErrNonConvergentGrowth) {
			t.Errorf("iteration limit %d: want %v but have %v", k, ErrNonConvergentGrowth, err)
		}
		n := floats.Sum(members.Elements)
		if n <= prev {
			t.Errorf("iteration limit %d: membership %g did not grow from %g", k, n, prev)
		}
		// Before reaching the edges, the plume is a diamond with radius k.
		if k <= 10 {
			if want := float64(2*k*(k+1) + 1); n != want {
				t.Errorf("iteration limit %d: want %g members but have %g", k, want, n)
			}
		}
		prev = n
	}
	if prev != 441 {
		t.Errorf("want the window to be full after 20 steps, but have %g members", prev)
	}
}

func TestGrowLandSeed(t *testing.T) {
	mask := oceanWindow(5, 5, Cell{J: 2, I: 2})
	members, iter, err := Grower{}.Grow(seedAt(5, 5, Cell{J: 2, I: 2}), mask)
	if err != nil {
		t.Fatal(err)
	}
	if n := floats.Sum(members.Elements); n != 0 {
		t.Errorf("land seed should give an empty plume but has %g members", n)
	}
	if iter != 0 {
		t.Errorf("want 0 iterations but have %d", iter)
	}
}

func TestGrowIsolated(t *testing.T) {
	// All land except the seed.
	mask := sparse.ZerosDense(5, 5)
	mask.Set(1, 2, 2)
	members, iter, err := Grower{}.Grow(seedAt(5, 5, Cell{J: 2, I: 2}), mask)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(members.Elements, mask.Elements) {
		t.Errorf("want only the seed but have %v", members.Elements)
	}
	if iter != 1 {
		t.Errorf("want 1 iteration but have %d", iter)
	}
}

func TestGrowBarrier(t *testing.T) {
	// A wall of land along column 3 keeps the plume on the west side.
	var wall []Cell
	for j := 0; j < 7; j++ {
		wall = append(wall, Cell{J: j, I: 3})
	}
	mask := oceanWindow(7, 7, wall...)
	members, _, err := Grower{}.Grow(seedAt(7, 7, Cell{J: 3, I: 1}), mask)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 7; j++ {
		for i := 0; i < 7; i++ {
			want := 0.
			if i < 3 {
				want = 1
			}
			if have := members.Get(j, i); have != want {
				t.Errorf("cell (%d, %d): want %g but have %g", j, i, want, have)
			}
		}
	}
}

func TestGrowDiagonalGap(t *testing.T) {
	// Ocean cells that only touch diagonally are not connected.
	mask := sparse.ZerosDense(3, 3)
	mask.Set(1, 0, 0)
	mask.Set(1, 1, 1)
	members, _, err := Grower{}.Grow(seedAt(3, 3, Cell{J: 1, I: 1}), mask)
	if err != nil {
		t.Fatal(err)
	}
	if members.Get(0, 0) != 0 {
		t.Error("diagonal neighbor should not be reached")
	}
	if members.Get(1, 1) != 1 {
		t.Error("seed should be a member")
	}
}

func TestGrowIdempotent(t *testing.T) {
	mask := oceanWindow(9, 9, Cell{J: 2, I: 2}, Cell{J: 2, I: 3}, Cell{J: 3, I: 2},
		Cell{J: 6, I: 0}, Cell{J: 6, I: 1}, Cell{J: 7, I: 1}, Cell{J: 8, I: 1})
	members, _, err := Grower{}.Grow(seedAt(9, 9, Cell{J: 4, I: 4}), mask)
	if err != nil {
		t.Fatal(err)
	}
	again := dilate(members)
	floats.Mul(again.Elements, mask.Elements)
	if !reflect.DeepEqual(again.Elements, members.Elements) {
		t.Errorf("dilating the converged plume changed it:\nwant %v\nhave %v", members.Elements, again.Elements)
	}
	// The pocket at (7, 0), (8, 0) is cut off from the seed.
	if members.Get(7, 0) != 0 || members.Get(8, 0) != 0 {
		t.Error("isolated pocket should not be reached")
	}
}

func TestGrowShapeMismatch(t *testing.T) {
	_, _, err := Grower{}.Grow(sparse.ZerosDense(3, 3), sparse.ZerosDense(3, 4))
	if err == nil {
		t.Error("expected an error for mismatched shapes")
	}
}

func TestDilate(t *testing.T) {
	a := sparse.ZerosDense(3, 4)
	a.Set(1, 0, 0)
	want := []float64{
		1, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 0,
	}
	if have := dilate(a).Elements; !reflect.DeepEqual(have, want) {
		t.Errorf("want %v but have %v", want, have)
	}
}
