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

// Package news2roms distributes point-source river nutrient concentrations
// onto the rho-points of a curvilinear ROMS ocean grid.
//
// Each river mouth is first assigned to its nearest ocean cell. A plume is
// then grown from that cell through adjacent ocean cells, and the river's
// value is stamped onto every cell of the plume. Rivers are stamped in the
// order they are given, so later rivers win where plumes overlap.
package news2roms

import "fmt"

// Version gives the version number.
const Version = "1.0.0"

// River is a single river mouth in the working set. Rivers are not modified
// after they are created; the grid cell each one is assigned to is kept
// separately in an Assignment.
type River struct {
	// Name identifies the river basin.
	Name string

	// MouthLon and MouthLat are the location of the river mouth [degrees].
	MouthLon, MouthLat float64

	// Discharge is the mean river discharge [m³/s].
	Discharge float64

	// Values holds the nutrient concentrations of the river,
	// keyed by field name.
	Values map[string]float64
}

// Value returns the value of the named field and whether it is present.
func (r River) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Warning is a non-fatal problem that was encountered while processing
// a single river.
type Warning struct {
	// River is the name of the river that caused the warning.
	River string

	// Field is the field being built, or empty if the problem
	// does not depend on the field.
	Field string

	Err error
}

func (w Warning) Error() string {
	if w.Field == "" {
		return fmt.Sprintf("news2roms: river %s: %v", w.River, w.Err)
	}
	return fmt.Sprintf("news2roms: river %s, field %s: %v", w.River, w.Field, w.Err)
}

// Unwrap returns the underlying cause of the warning.
func (w Warning) Unwrap() error { return w.Err }
