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
	"fmt"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Grid holds the rho-point coordinates and the land/sea mask of an ocean
// model grid. All three arrays have the shape [eta, xi] and are not
// modified after the grid is created.
type Grid struct {
	// Lon and Lat are the cell-center longitudes and latitudes [degrees].
	Lon, Lat *sparse.DenseArray

	// Mask is 1 for ocean cells and 0 for land cells.
	Mask *sparse.DenseArray
}

// Cell is the [eta, xi] index of a grid cell.
type Cell struct {
	J, I int
}

func (c Cell) String() string { return fmt.Sprintf("(%d, %d)", c.J, c.I) }

// NewGrid creates a new grid from the given coordinate and mask arrays,
// checking that they are two-dimensional, that they share the same shape,
// and that the mask only contains zeros and ones.
func NewGrid(lon, lat, mask *sparse.DenseArray) (*Grid, error) {
	if len(mask.Shape) != 2 {
		return nil, fmt.Errorf("news2roms: grid mask must be 2-D but has shape %v", mask.Shape)
	}
	for _, a := range []struct {
		name string
		data *sparse.DenseArray
	}{{"longitude", lon}, {"latitude", lat}} {
		if !sameShape(a.data.Shape, mask.Shape) {
			return nil, fmt.Errorf("news2roms: grid %s has shape %v but mask has shape %v",
				a.name, a.data.Shape, mask.Shape)
		}
	}
	for i, v := range mask.Elements {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("news2roms: grid mask value %g at %v is neither 0 nor 1",
				v, mask.IndexNd(i))
		}
	}
	return &Grid{Lon: lon, Lat: lat, Mask: mask}, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Shape returns the number of cells in the eta and xi directions.
func (g *Grid) Shape() (ny, nx int) {
	return g.Mask.Shape[0], g.Mask.Shape[1]
}

// Contains returns whether c is within the grid.
func (g *Grid) Contains(c Cell) bool {
	ny, nx := g.Shape()
	return c.J >= 0 && c.J < ny && c.I >= 0 && c.I < nx
}

// IsOcean returns whether c is an ocean cell.
func (g *Grid) IsOcean(c Cell) bool {
	return g.Mask.Get(c.J, c.I) == 1
}

// Bounds returns the longitude (X) and latitude (Y) extent of the
// grid cell centers.
func (g *Grid) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for i, lon := range g.Lon.Elements {
		b.Extend(geom.Point{X: lon, Y: g.Lat.Elements[i]}.Bounds())
	}
	return b
}

// GridVariables are the names of the netCDF variables that hold the
// grid coordinates and mask.
type GridVariables struct {
	Lon, Lat, Mask string
}

// RhoPoints are the variable names of the rho-points of a ROMS grid file.
var RhoPoints = GridVariables{Lon: "lon_rho", Lat: "lat_rho", Mask: "mask_rho"}

// LoadGrid reads a grid from the netCDF file rw.
func LoadGrid(rw cdf.ReaderWriterAt, vars GridVariables) (*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("news2roms.LoadGrid: %v", err)
	}
	lon, err := readNCF(f, vars.Lon)
	if err != nil {
		return nil, err
	}
	lat, err := readNCF(f, vars.Lat)
	if err != nil {
		return nil, err
	}
	mask, err := readNCF(f, vars.Mask)
	if err != nil {
		return nil, err
	}
	return NewGrid(lon, lat, mask)
}

// readNCF reads the 2-D variable v out of netcdf file f.
func readNCF(f *cdf.File, v string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("news2roms: read netcdf: variable %s not in file", v)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("news2roms: read netcdf: variable %s has %d dimensions; it should have 2", v, len(dims))
	}
	data := sparse.ZerosDense(dims...)
	r := f.Reader(v, nil, nil)
	buf := r.Zero(len(data.Elements))
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("news2roms: read netcdf variable %s: %v", v, err)
	}
	switch vals := buf.(type) {
	case []float64:
		copy(data.Elements, vals)
	case []float32:
		for i, val := range vals {
			data.Elements[i] = float64(val)
		}
	case []int32:
		for i, val := range vals {
			data.Elements[i] = float64(val)
		}
	case []int16:
		for i, val := range vals {
			data.Elements[i] = float64(val)
		}
	case []uint8:
		for i, val := range vals {
			data.Elements[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("news2roms: read netcdf variable %s: unsupported type %T", v, buf)
	}
	return data, nil
}

// ReadVariable reads the 2-D variable v from the netCDF file rw.
func ReadVariable(rw cdf.ReaderWriterAt, v string) (*sparse.DenseArray, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("news2roms.ReadVariable: %v", err)
	}
	return readNCF(f, v)
}
