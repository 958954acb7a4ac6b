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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/news2roms"
	"github.com/spatialmodel/news2roms/news"
)

// LoadGrid reads the grid coordinates and land/sea mask from the
// netcdf file at path.
func LoadGrid(path string, vars news2roms.GridVariables) (*news2roms.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("news2roms: opening grid file: %v", err)
	}
	defer f.Close()
	g, err := news2roms.LoadGrid(f, vars)
	if err != nil {
		return nil, fmt.Errorf("news2roms: reading grid file %s: %v", path, err)
	}
	return g, nil
}

// LoadTable reads the NEWS database. files is either a single Excel
// workbook, in which case the named sheets are read from it, or one
// CSV file per table.
func LoadTable(files, sheets []string) (*news.Table, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("news2roms: no NEWS files specified")
	}
	if len(files) == 1 && strings.EqualFold(filepath.Ext(files[0]), ".xlsx") {
		return news.ReadXLSX(files[0], sheets...)
	}
	var readers []*os.File
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()
	for _, fname := range files {
		r, err := os.Open(fname)
		if err != nil {
			return nil, fmt.Errorf("news2roms: opening NEWS file: %v", err)
		}
		readers = append(readers, r)
	}
	rs := make([]io.Reader, len(readers))
	for i, r := range readers {
		rs[i] = r
	}
	return news.ReadCSV(rs...)
}

// SelectRivers converts the NEWS loads to concentrations, evaluates the
// derived fields, and returns the rivers that flow into the domain of g
// with discharge greater than minDischarge [m³/s], sorted by ascending
// discharge.
func SelectRivers(t *news.Table, g *news2roms.Grid, derived map[string]string, minDischarge float64, log logrus.FieldLogger) ([]news2roms.River, error) {
	if err := t.Convert(news.DefaultSpecies); err != nil {
		return nil, err
	}
	if err := t.Derive(derived); err != nil {
		return nil, err
	}
	recs, err := t.Extract(g.Bounds(), minDischarge)
	if err != nil {
		return nil, err
	}
	rivers := make([]news2roms.River, len(recs))
	for i, r := range recs {
		rivers[i] = news2roms.River{
			Name:      r.Name(),
			MouthLon:  r.Lon(),
			MouthLat:  r.Lat(),
			Discharge: r.Discharge(),
			Values:    r.Values,
		}
	}
	log.WithFields(logrus.Fields{
		"basins": len(t.Records),
		"rivers": len(rivers),
	}).Info("selected rivers in grid domain")
	return rivers, nil
}

// ResolveRivers assigns each river to the nearest ocean cell of g,
// logging the rivers that could not be assigned.
func ResolveRivers(g *news2roms.Grid, rivers []news2roms.River, threshold float64, log logrus.FieldLogger) []news2roms.Assignment {
	r := news2roms.NewResolver(g)
	r.Threshold = threshold
	assignments := r.ResolveAll(rivers)
	for _, w := range news2roms.Unresolved(assignments) {
		log.WithField("river", w.River).Warn(w.Err)
	}
	return assignments
}
