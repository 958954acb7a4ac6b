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

package news

import (
	"fmt"
	"sort"

	"github.com/ctessum/geom"
)

// Extract returns the records whose river mouths are within b and whose
// discharge is greater than minDischarge [m³/s], sorted by ascending
// discharge. b holds longitude in X and latitude in Y. A mouth matches
// if its longitude, or its longitude shifted by 360°, is within b, so
// that tables using -180°–180° can be matched to grids using 0°–360°.
// The table must have been converted first.
func (t *Table) Extract(b *geom.Bounds, minDischarge float64) ([]Record, error) {
	if !t.HasColumn(DischargeKey) {
		return nil, fmt.Errorf("news: table must be converted before extracting a domain")
	}
	var o []Record
	for i, r := range t.Records {
		lon, okLon := r.Values[LonColumn]
		lat, okLat := r.Values[LatColumn]
		if !okLon || !okLat {
			return nil, fmt.Errorf("news: record %d (%s): mouth location (%q, %q) is not a number",
				i, r.Name(), r.Text[LonColumn], r.Text[LatColumn])
		}
		if lat < b.Min.Y || lat > b.Max.Y || !withinLon(lon, b) {
			continue
		}
		if r.Discharge() <= minDischarge {
			continue
		}
		o = append(o, r)
	}
	sort.SliceStable(o, func(i, j int) bool {
		return o[i].Discharge() < o[j].Discharge()
	})
	return o, nil
}

func withinLon(lon float64, b *geom.Bounds) bool {
	for _, offset := range []float64{0, -360, 360} {
		if l := lon + offset; l >= b.Min.X && l <= b.Max.X {
			return true
		}
	}
	return false
}
