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

	"github.com/ctessum/unit"
)

// DischargeKey is the name of the record value holding discharge [m³/s].
const DischargeKey = "Discharge"

const (
	secondsPerDay = 86400.

	// Discharge is averaged over a Julian year and loads over
	// a 365-day year.
	daysPerJulianYear = 365.25
	daysPerYear       = 365.

	km3ToM3  = 1.e9
	mgToGram = 1.e6 // megagrams to grams
)

var mole = unit.NewDimension("mole")

// MolarConcentration is the dimension of concentrations in mol m-3.
var MolarConcentration = unit.Dimensions{mole: 1, unit.LengthDim: -3}

// Species is a load column of the NEWS tables that is converted
// to a concentration.
type Species struct {
	// Load is the name of the load column [Mg/yr].
	Load string

	// Conc is the name of the concentration to create.
	Conc string

	// MolarMass is the mass [g] per mole of the element the load is
	// reported as. If it is zero, the concentration is a mass
	// concentration [g m-3] rather than a molar one [mol m-3].
	MolarMass float64
}

// DefaultSpecies are the NEWS loads that are converted to concentrations.
var DefaultSpecies = []Species{
	{Load: "Ld_DIN", Conc: "DIN_conc", MolarMass: 14},
	{Load: "Ld_DIP", Conc: "DIP_conc", MolarMass: 31},
	{Load: "Ld_DON", Conc: "DON_conc", MolarMass: 14},
	{Load: "Ld_DOP", Conc: "DOP_conc", MolarMass: 31},
	{Load: "Ld_DOC", Conc: "DOC_conc", MolarMass: 12},
	{Load: "Ld_POC", Conc: "POC_conc", MolarMass: 12},
	{Load: "Ld_TSS", Conc: "TSS_conc"},
}

// Discharge converts an annual discharge volume [km³/yr] to a
// flow rate [m³/s].
func Discharge(q float64) *unit.Unit {
	return unit.New(q*km3ToM3/(secondsPerDay*daysPerJulianYear), unit.Meter3PerSecond)
}

// MolarFlux converts an annual load [Mg/yr] to a molar flux [mol/s].
func MolarFlux(load, molarMass float64) *unit.Unit {
	return unit.New(load*mgToGram/molarMass/(secondsPerDay*daysPerYear),
		unit.Dimensions{mole: 1, unit.TimeDim: -1})
}

// MassFlux converts an annual load [Mg/yr] to a mass flux [kg/s].
func MassFlux(load float64) *unit.Unit {
	return unit.New(load*mgToGram/1000/(secondsPerDay*daysPerYear),
		unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1})
}

// Concentration returns the concentration of flux in a river with the
// given discharge. If discharge is not positive, the concentration is zero.
func Concentration(flux, discharge *unit.Unit) (*unit.Unit, error) {
	if err := discharge.Check(unit.Meter3PerSecond); err != nil {
		return nil, fmt.Errorf("news: discharge: %v", err)
	}
	c := unit.Div(flux, discharge)
	if discharge.Value() <= 0 {
		return unit.New(0, c.Dimensions()), nil
	}
	return c, nil
}

// Convert adds the river discharge [m³/s] and the concentration of each
// species to every record of the table. Species whose load column is
// not in the table are skipped, and missing loads count as zero.
func (t *Table) Convert(species []Species) error {
	if !t.HasColumn(DischargeColumn) {
		return fmt.Errorf("news: table has no %s column", DischargeColumn)
	}
	var present []Species
	for _, s := range species {
		if t.HasColumn(s.Load) {
			present = append(present, s)
		}
	}
	for i, r := range t.Records {
		q, ok := r.Values[DischargeColumn]
		if !ok {
			return fmt.Errorf("news: record %d (%s): discharge %q is not a number",
				i, r.Name(), r.Text[DischargeColumn])
		}
		discharge := Discharge(q)
		r.Values[DischargeKey] = discharge.Value()
		for _, s := range present {
			load := r.Values[s.Load]
			var c *unit.Unit
			var err error
			if s.MolarMass == 0 {
				c, err = Concentration(MassFlux(load), discharge)
				if err == nil {
					err = c.Check(unit.KilogramPerMeter3)
				}
			} else {
				c, err = Concentration(MolarFlux(load, s.MolarMass), discharge)
				if err == nil {
					err = c.Check(MolarConcentration)
				}
			}
			if err != nil {
				return fmt.Errorf("news: record %d (%s): %s: %v", i, r.Name(), s.Conc, err)
			}
			v := c.Value()
			if s.MolarMass == 0 {
				v *= 1000 // kg m-3 to g m-3
			}
			r.Values[s.Conc] = v
		}
	}
	for _, c := range append([]string{DischargeKey}, concNames(present)...) {
		if !t.HasColumn(c) {
			t.Columns = append(t.Columns, c)
		}
	}
	return nil
}

func concNames(species []Species) []string {
	o := make([]string, len(species))
	for i, s := range species {
		o[i] = s.Conc
	}
	return o
}
