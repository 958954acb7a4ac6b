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

// Package news reads the Global NEWS river export database and prepares
// it for use as river forcing: loads are converted to concentrations,
// nutrient fields are derived from them, and the rivers are reduced to
// those that flow into a model domain.
package news

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
)

// Columns of the NEWS tables that identify each river.
const (
	NameColumn      = "basinname"
	LonColumn       = "mouth_lon"
	LatColumn       = "mouth_lat"
	DischargeColumn = "Qact" // actual discharge [km³/yr]
)

// DefaultTables are the names of the NEWS tables, in the order
// that their columns are combined.
var DefaultTables = []string{"basins", "river_exports", "hydrology"}

// Record holds the data for one river basin.
type Record struct {
	// Text holds every cell of the record as it was read.
	Text map[string]string

	// Values holds the cells that could be read as numbers, as well as
	// any values calculated from them.
	Values map[string]float64
}

// Name returns the basin name.
func (r Record) Name() string { return r.Text[NameColumn] }

// Lon returns the longitude of the river mouth [degrees].
func (r Record) Lon() float64 { return r.Values[LonColumn] }

// Lat returns the latitude of the river mouth [degrees].
func (r Record) Lat() float64 { return r.Values[LatColumn] }

// Discharge returns the river discharge [m³/s]. It is only
// available after the table has been converted.
func (r Record) Discharge() float64 { return r.Values[DischargeKey] }

// Table holds the NEWS database, one record per river basin.
type Table struct {
	Columns []string
	Records []Record
}

// HasColumn returns whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// appendColumns adds the columns in header and rows to the table.
// Row i of rows describes the same basin as record i of the table.
// Columns that are already in the table are ignored.
func (t *Table) appendColumns(source string, header []string, rows [][]string) error {
	if len(t.Columns) == 0 {
		t.Records = make([]Record, len(rows))
		for i := range t.Records {
			t.Records[i] = Record{Text: make(map[string]string), Values: make(map[string]float64)}
		}
	} else if len(rows) != len(t.Records) {
		return fmt.Errorf("news: table %s has %d rows but previous tables have %d", source, len(rows), len(t.Records))
	}
	for c, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || t.HasColumn(name) {
			continue
		}
		t.Columns = append(t.Columns, name)
		for i, row := range rows {
			var cell string
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			r := t.Records[i]
			r.Text[name] = cell
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				r.Values[name] = v
			}
		}
	}
	return nil
}

// ReadCSV reads NEWS tables in CSV format, each with a header row, and
// combines their columns. All of the tables must have the same number
// of rows.
func ReadCSV(tables ...io.Reader) (*Table, error) {
	t := new(Table)
	for i, f := range tables {
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		lines, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("news: reading table %d: %v", i, err)
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("news: table %d is empty", i)
		}
		for len(lines) > 1 && emptyRow(lines[len(lines)-1]) {
			lines = lines[:len(lines)-1]
		}
		if err := t.appendColumns(strconv.Itoa(i), lines[0], lines[1:]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadXLSX reads the named sheets of a NEWS workbook in Microsoft Excel
// format and combines their columns. The first row of each sheet
// holds the column names.
func ReadXLSX(fileName string, sheets ...string) (*Table, error) {
	f, err := xlsx.OpenFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("news: opening xlsx file: %v", err)
	}
	t := new(Table)
	for _, sheet := range sheets {
		s, ok := f.Sheet[sheet]
		if !ok {
			return nil, fmt.Errorf("news: reading %s: no sheet %s", fileName, sheet)
		}
		if s.MaxRow == 0 {
			return nil, fmt.Errorf("news: sheet %s is empty", sheet)
		}
		lines := make([][]string, s.MaxRow)
		for j := range lines {
			lines[j] = make([]string, s.MaxCol)
			for i := range lines[j] {
				lines[j][i] = s.Cell(j, i).Value
			}
		}
		// Skip trailing empty rows.
		for len(lines) > 1 && emptyRow(lines[len(lines)-1]) {
			lines = lines[:len(lines)-1]
		}
		if err := t.appendColumns(sheet, lines[0], lines[1:]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
