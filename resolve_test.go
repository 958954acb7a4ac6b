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
	"testing"
)

func TestResolve(t *testing.T) {
	t.Run("coincident", func(t *testing.T) {
		g := testGrid(10, 10)
		r := NewResolver(g)
		for _, c := range []Cell{{J: 0, I: 0}, {J: 4, I: 7}, {J: 9, I: 9}} {
			res, err := r.Resolve(g.Lon.Get(c.J, c.I), g.Lat.Get(c.J, c.I))
			if err != nil {
				t.Fatal(err)
			}
			if !res.Resolved || res.Cell != c {
				t.Errorf("want %v but have %+v", c, res)
			}
			if res.Distance != 0 {
				t.Errorf("distance should be 0 but is %g", res.Distance)
			}
		}
	})
	t.Run("between cells", func(t *testing.T) {
		g := testGrid(10, 10)
		r := NewResolver(g)
		res, err := r.Resolve(280.21, 30.14)
		if err != nil {
			t.Fatal(err)
		}
		if want := (Cell{J: 3, I: 4}); res.Cell != want {
			t.Errorf("want %v but have %v", want, res.Cell)
		}
		if res.Distance <= 0 || res.Distance > 0.001 {
			t.Errorf("unexpected distance %g", res.Distance)
		}
	})
	t.Run("never land", func(t *testing.T) {
		land := []Cell{{J: 4, I: 4}, {J: 4, I: 5}, {J: 5, I: 4}, {J: 5, I: 5}}
		g := testGrid(10, 10, land...)
		r := NewResolver(g)
		for _, c := range land {
			res, err := r.Resolve(g.Lon.Get(c.J, c.I), g.Lat.Get(c.J, c.I))
			if err != nil {
				t.Fatal(err)
			}
			if !g.IsOcean(res.Cell) {
				t.Errorf("point at land cell %v resolved to land cell %v", c, res.Cell)
			}
			if res.Distance == 0 {
				t.Errorf("distance to a different cell should not be 0")
			}
		}
	})
	t.Run("far away", func(t *testing.T) {
		g := testGrid(10, 10)
		r := NewResolver(g)
		res, err := r.Resolve(10, -20)
		if !errors.Is(err, ErrUnresolvableMouth) {
			t.Errorf("want %v but have %v", ErrUnresolvableMouth, err)
		}
		if res.Resolved {
			t.Error("far away point should not be resolved")
		}
	})
	t.Run("inland", func(t *testing.T) {
		// A 40 × 40 grid that is all land except for one edge column.
		var land []Cell
		for j := 0; j < 40; j++ {
			for i := 1; i < 40; i++ {
				land = append(land, Cell{J: j, I: i})
			}
		}
		g := testGrid(40, 40, land...)
		r := NewResolver(g)
		res, err := r.Resolve(g.Lon.Get(20, 39), g.Lat.Get(20, 39))
		if !errors.Is(err, ErrUnresolvableMouth) {
			t.Errorf("want %v but have %v", ErrUnresolvableMouth, err)
		}
		if res.Resolved {
			t.Error("inland point should not be resolved")
		}
	})
	t.Run("all land", func(t *testing.T) {
		g := testGrid(2, 2, Cell{J: 0, I: 0}, Cell{J: 0, I: 1}, Cell{J: 1, I: 0}, Cell{J: 1, I: 1})
		r := NewResolver(g)
		res, err := r.Resolve(g.Lon.Get(0, 0), g.Lat.Get(0, 0))
		if !errors.Is(err, ErrUnresolvableMouth) || res.Resolved {
			t.Errorf("want unresolved but have %+v, %v", res, err)
		}
	})
	t.Run("mask changed", func(t *testing.T) {
		g := testGrid(5, 5)
		r := NewResolver(g)
		if _, err := r.Resolve(g.Lon.Get(2, 2), g.Lat.Get(2, 2)); err != nil {
			t.Fatal(err)
		}
		g.Mask.Elements[g.Mask.Index1d(2, 2)] = 0
		res, err := r.Resolve(g.Lon.Get(2, 2), g.Lat.Get(2, 2))
		if !errors.Is(err, ErrGridMaskInconsistency) {
			t.Errorf("want %v but have %v", ErrGridMaskInconsistency, err)
		}
		if res.Resolved {
			t.Error("land cell should not be resolved")
		}
	})
	t.Run("longitude convention", func(t *testing.T) {
		g := testGrid(5, 5)
		r := NewResolver(g)
		res, err := r.Resolve(g.Lon.Get(1, 3)-360, g.Lat.Get(1, 3))
		if err != nil {
			t.Fatal(err)
		}
		if want := (Cell{J: 1, I: 3}); res.Cell != want {
			t.Errorf("want %v but have %v", want, res.Cell)
		}
		if res.Distance > 1e-6 {
			t.Errorf("distance should be about 0 but is %g", res.Distance)
		}
	})
	t.Run("default threshold", func(t *testing.T) {
		g := testGrid(5, 5)
		r := &Resolver{Grid: g}
		res, err := r.Resolve(g.Lon.Get(1, 1)+0.01, g.Lat.Get(1, 1))
		if err != nil {
			t.Fatal(err)
		}
		if want := (Cell{J: 1, I: 1}); res.Cell != want || !res.Resolved {
			t.Errorf("want %v but have %+v", want, res)
		}
	})
	t.Run("threshold", func(t *testing.T) {
		g := testGrid(5, 5)
		r := NewResolver(g)
		r.Threshold = 1e-5
		res, err := r.Resolve(280.21, 30.14)
		if !errors.Is(err, ErrUnresolvableMouth) || res.Resolved {
			t.Errorf("want unresolved but have %+v, %v", res, err)
		}
	})
}

func TestResolveAll(t *testing.T) {
	g := testGrid(10, 10)
	rivers := []River{
		{Name: "a", MouthLon: 280.05, MouthLat: 30.05},
		{Name: "b", MouthLon: 100, MouthLat: 0},
		{Name: "c", MouthLon: 280.45, MouthLat: 30.4},
		{Name: "d", MouthLon: -79.9, MouthLat: 30.2},
	}
	as := NewResolver(g).ResolveAll(rivers)
	want := []struct {
		cell     Cell
		resolved bool
	}{
		{Cell{J: 1, I: 1}, true},
		{Cell{}, false},
		{Cell{J: 8, I: 9}, true},
		{Cell{J: 4, I: 2}, true},
	}
	if len(as) != len(want) {
		t.Fatalf("want %d assignments but have %d", len(want), len(as))
	}
	for i, w := range want {
		a := as[i]
		if a.River.Name != rivers[i].Name {
			t.Errorf("assignment %d: want river %s but have %s", i, rivers[i].Name, a.River.Name)
		}
		if a.Resolved != w.resolved {
			t.Errorf("river %s: want resolved=%v but have %v", a.River.Name, w.resolved, a.Resolved)
		}
		if w.resolved && a.Cell != w.cell {
			t.Errorf("river %s: want %v but have %v", a.River.Name, w.cell, a.Cell)
		}
	}
	ws := Unresolved(as)
	if len(ws) != 1 || ws[0].River != "b" || !errors.Is(ws[0], ErrUnresolvableMouth) {
		t.Errorf("unexpected warnings %v", ws)
	}
}
