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
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

const (
	basinsCSV = `basinid,basinname,mouth_lon,mouth_lat
1,Alpha,-79.9,30.2
2,Beta,-79.5,30.1
3,Gamma,10,45
4,Delta,-79.7,30.5
`
	exportsCSV = `Ld_DIN,Ld_DIP,Ld_DON,Ld_DOP,Ld_TSS
44150.4,9776.16,8830.08,1955.232,1576800
100,10,10,1,1000
100,10,10,1,1000
100,10,10,1,1000
`
	hydrologyCSV = `Qact,basinname
31.5576,ignored
0.15778,ignored
3.15576,ignored
0.631152,ignored
`
)

func testTable(t *testing.T) *Table {
	tbl, err := ReadCSV(strings.NewReader(basinsCSV), strings.NewReader(exportsCSV),
		strings.NewReader(hydrologyCSV))
	require.NoError(t, err)
	return tbl
}

func TestReadCSV(t *testing.T) {
	tbl := testTable(t)
	assert.Equal(t, []string{"basinid", "basinname", "mouth_lon", "mouth_lat",
		"Ld_DIN", "Ld_DIP", "Ld_DON", "Ld_DOP", "Ld_TSS", "Qact"}, tbl.Columns)
	require.Len(t, tbl.Records, 4)

	r := tbl.Records[0]
	assert.Equal(t, "Alpha", r.Name(), "the first table's basinname is kept")
	assert.Equal(t, -79.9, r.Lon())
	assert.Equal(t, 30.2, r.Lat())
	assert.Equal(t, 31.5576, r.Values["Qact"])
	_, ok := r.Values["basinname"]
	assert.False(t, ok, "text cells are not numbers")
}

func TestReadCSVErrors(t *testing.T) {
	t.Run("row mismatch", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(basinsCSV), strings.NewReader("Qact\n1\n"))
		assert.Error(t, err)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestConvert(t *testing.T) {
	tbl := testTable(t)
	require.NoError(t, tbl.Convert(DefaultSpecies))

	r := tbl.Records[0]
	assert.InDelta(t, 1000, r.Discharge(), 1e-9)
	assert.InDelta(t, 0.1, r.Values["DIN_conc"], 1e-12)
	assert.InDelta(t, 0.01, r.Values["DIP_conc"], 1e-12)
	assert.InDelta(t, 0.02, r.Values["DON_conc"], 1e-12)
	assert.InDelta(t, 0.002, r.Values["DOP_conc"], 1e-12)
	assert.InDelta(t, 50, r.Values["TSS_conc"], 1e-9)

	assert.True(t, tbl.HasColumn("DIN_conc"))
	assert.True(t, tbl.HasColumn(DischargeKey))
	assert.False(t, tbl.HasColumn("DOC_conc"), "species without a load column are skipped")

	assert.InDelta(t, 100, tbl.Records[2].Discharge(), 1e-9)
	assert.InDelta(t, 20, tbl.Records[3].Discharge(), 1e-9)
}

func TestConvertZeroDischarge(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("basinname,Qact,Ld_DIN\nDry,0,5\n"))
	require.NoError(t, err)
	require.NoError(t, tbl.Convert(DefaultSpecies))
	assert.Equal(t, 0., tbl.Records[0].Values["DIN_conc"])
}

func TestConvertErrors(t *testing.T) {
	t.Run("no discharge column", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("basinname,Ld_DIN\nA,5\n"))
		require.NoError(t, err)
		assert.Error(t, tbl.Convert(DefaultSpecies))
	})
	t.Run("bad discharge", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("basinname,Qact\nA,n/a\n"))
		require.NoError(t, err)
		assert.Error(t, tbl.Convert(DefaultSpecies))
	})
}

func TestExtract(t *testing.T) {
	tbl := testTable(t)
	_, err := tbl.Extract(geom.NewBounds(), 10)
	assert.Error(t, err, "the table has not been converted")

	require.NoError(t, tbl.Convert(DefaultSpecies))
	b := &geom.Bounds{
		Min: geom.Point{X: 280, Y: 30},
		Max: geom.Point{X: 281, Y: 31},
	}
	recs, err := tbl.Extract(b, 10)
	require.NoError(t, err)
	var names []string
	for _, r := range recs {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"Delta", "Alpha"}, names, "sorted by ascending discharge, Beta is too small and Gamma is outside")

	recs, err = tbl.Extract(b, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Beta", recs[0].Name())

	beta := recs[0].Discharge()
	recs, err = tbl.Extract(b, beta)
	require.NoError(t, err)
	names = names[:0]
	for _, r := range recs {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"Delta", "Alpha"}, names, "the discharge threshold is exclusive")

	// The same rivers in a -180–180 domain.
	west := &geom.Bounds{
		Min: geom.Point{X: -80, Y: 30},
		Max: geom.Point{X: -79, Y: 31},
	}
	recs, err = tbl.Extract(west, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestReadXLSX(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "news.xlsx")
	f := xlsx.NewFile()
	for _, sheet := range []struct {
		name string
		rows [][]string
	}{
		{name: "basins", rows: [][]string{{"basinname", "mouth_lon", "mouth_lat"}, {"Alpha", "-79.9", "30.2"}, {"Beta", "-79.5", "30.1"}}},
		{name: "hydrology", rows: [][]string{{"Qact"}, {"31.5576"}, {"0.15778"}}},
		{name: "other", rows: [][]string{{"x"}, {"1"}}},
	} {
		s, err := f.AddSheet(sheet.name)
		require.NoError(t, err)
		for _, row := range sheet.rows {
			r := s.AddRow()
			for _, v := range row {
				r.AddCell().SetString(v)
			}
		}
	}
	require.NoError(t, f.Save(fname))

	tbl, err := ReadXLSX(fname, "basins", "hydrology")
	require.NoError(t, err)
	assert.Equal(t, []string{"basinname", "mouth_lon", "mouth_lat", "Qact"}, tbl.Columns)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "Beta", tbl.Records[1].Name())
	assert.Equal(t, 0.15778, tbl.Records[1].Values["Qact"])

	_, err = ReadXLSX(fname, "basins", "missing")
	assert.Error(t, err)
}
