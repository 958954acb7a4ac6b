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
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// FillValue marks cells without data in netCDF output.
const FillValue = 1.e20

// Field is a gridded river field. Cells that are exactly zero
// have no data.
type Field struct {
	Name  string
	Units string

	// Data has the shape of the grid the field was built on.
	Data *sparse.DenseArray
}

// NoData returns whether cell c has no data.
func (f *Field) NoData(c Cell) bool {
	return f.Data.Get(c.J, c.I) == 0
}

// Cells returns the number of cells that have data.
func (f *Field) Cells() int {
	var n int
	for _, v := range f.Data.Elements {
		if v != 0 {
			n++
		}
	}
	return n
}

// VarName returns the name of the netCDF variable the field is written to.
func (f *Field) VarName() string {
	return strings.ToLower(f.Name)
}

// WriteFields writes the grid coordinates, the mask and fields to
// netcdf file w. Cells without data are written as FillValue.
// history, if not empty, is stored as the global history attribute.
func WriteFields(w *os.File, g *Grid, fields []*Field, history string) error {
	ny, nx := g.Shape()
	dims := []string{"eta_rho", "xi_rho"}
	h := cdf.NewHeader(dims, []int{ny, nx})
	h.AddAttribute("", "title", "River nutrient concentrations")
	h.AddAttribute("", "source", "news2roms v"+Version)
	if history != "" {
		h.AddAttribute("", "history", history)
	}

	data := make(map[string]*sparse.DenseArray)
	var names []string
	for _, v := range []struct {
		name, longName, units string
		data                  *sparse.DenseArray
	}{
		{name: "lon_rho", longName: "longitude of RHO-points", units: "degree_east", data: g.Lon},
		{name: "lat_rho", longName: "latitude of RHO-points", units: "degree_north", data: g.Lat},
		{name: "mask_rho", longName: "mask on RHO-points", units: "1", data: g.Mask},
	} {
		h.AddVariable(v.name, dims, []float64{0})
		h.AddAttribute(v.name, "long_name", v.longName)
		h.AddAttribute(v.name, "units", v.units)
		data[v.name] = v.data
		names = append(names, v.name)
	}

	for _, f := range fields {
		name := f.VarName()
		if _, ok := data[name]; ok {
			return fmt.Errorf("news2roms: writing field %s: variable %s is already in the file", f.Name, name)
		}
		if !sameShape(f.Data.Shape, g.Mask.Shape) {
			return fmt.Errorf("news2roms: writing field %s: shape %v does not match grid shape %v",
				f.Name, f.Data.Shape, g.Mask.Shape)
		}
		h.AddVariable(name, dims, []float64{0})
		h.AddAttribute(name, "long_name", f.Name)
		if f.Units != "" {
			h.AddAttribute(name, "units", f.Units)
		}
		h.AddAttribute(name, "coordinates", "lon_rho lat_rho")
		h.AddAttribute(name, "_FillValue", []float64{FillValue})

		filled := f.Data.Copy()
		for i, v := range filled.Elements {
			if v == 0 {
				filled.Elements[i] = FillValue
			}
		}
		data[name] = filled
		names = append(names, name)
	}
	h.Define()

	ff, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("news2roms: creating netcdf file: %v", err)
	}
	for _, name := range names {
		if err = writeNCF(ff, name, data[name]); err != nil {
			return fmt.Errorf("news2roms: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes data to variable v of netcdf file f.
func writeNCF(f *cdf.File, v string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(v)
	n := 1
	for _, l := range end {
		n *= l
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	w := f.Writer(v, nil, nil)
	_, err := w.Write(data.Elements)
	return err
}
