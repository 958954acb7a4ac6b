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

package news2romsutil

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/news2roms"
)

// wgs84 is the projection of the river mouth shapefile.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// mouthFields are the attributes of the river mouth shapefile.
var mouthFields = []goshp.Field{
	goshp.StringField("Name", 80),
	goshp.FloatField("Discharge", 16, 4),
	goshp.NumberField("J", 10),
	goshp.NumberField("I", 10),
	goshp.FloatField("Distance", 16, 10),
	goshp.StringField("Status", 24),
}

// mouthRecord is a river mouth in a shapefile. J and I are -1
// for rivers that could not be assigned to a grid cell.
type mouthRecord struct {
	geom.Point
	Name      string
	Discharge float64
	J, I      int
	Distance  float64
	Status    string
}

func newMouthRecord(a news2roms.Assignment) mouthRecord {
	r := mouthRecord{
		Point:     geom.Point{X: a.River.MouthLon, Y: a.River.MouthLat},
		Name:      a.River.Name,
		Discharge: a.River.Discharge,
		J:         -1,
		I:         -1,
		Status:    "resolved",
	}
	if a.Resolved {
		r.J, r.I = a.Cell.J, a.Cell.I
		r.Distance = a.Distance
	} else {
		r.Status = warningKind(a.Err)
	}
	return r
}

// WriteMouths writes the location and grid assignment of each
// river mouth to a point shapefile.
func WriteMouths(filename string, assignments []news2roms.Assignment) error {
	e, err := shp.NewEncoderFromFields(filename, goshp.POINT, mouthFields...)
	if err != nil {
		return fmt.Errorf("news2roms: creating river mouth shapefile: %v", err)
	}
	for _, a := range assignments {
		r := newMouthRecord(a)
		err = e.EncodeFields(r.Point, r.Name, r.Discharge, r.J, r.I, r.Distance, r.Status)
		if err != nil {
			e.Close()
			return fmt.Errorf("news2roms: writing river mouth shapefile: %v", err)
		}
	}
	e.Close()
	prj := filename[0:len(filename)-len(filepath.Ext(filename))] + ".prj"
	if err := ioutil.WriteFile(prj, []byte(wgs84), 0644); err != nil {
		return fmt.Errorf("news2roms: writing river mouth projection: %v", err)
	}
	return nil
}
