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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/news2roms"
)

// Build creates the named fields from rivers that have been assigned
// to cells of grid g. The plume of each river spreads within radius
// cells of its mouth.
func Build(ctx context.Context, g *news2roms.Grid, assignments []news2roms.Assignment, fields []string,
	radius, maxIterations int, log logrus.FieldLogger) ([]*news2roms.Field, []news2roms.Warning, error) {
	b := news2roms.NewFieldBuilder(g, assignments)
	b.Radius = radius
	b.Grower.MaxIterations = maxIterations
	b.Log = log

	var out []*news2roms.Field
	var warnings []news2roms.Warning
	for _, name := range fields {
		f, w, err := b.Build(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("news2roms: building field %s: %v", name, err)
		}
		f.Units = fieldUnits(name)
		out = append(out, f)
		warnings = append(warnings, w...)
	}
	return out, warnings, nil
}

// fieldUnits returns the units of the named field. Suspended solids
// are mass concentrations and everything else is molar.
func fieldUnits(name string) string {
	if strings.Contains(strings.ToUpper(name), "TSS") {
		return "g m-3"
	}
	return "mol m-3"
}

// WriteOutput writes fields to a new netcdf file at path.
func WriteOutput(path string, g *news2roms.Grid, fields []*news2roms.Field, history string) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("news2roms: creating output file: %v", err)
	}
	if err := news2roms.WriteFields(w, g, fields, history); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// history returns the history attribute for an output file.
func history(clock clockwork.Clock) string {
	return fmt.Sprintf("%s: created by news2roms v%s",
		clock.Now().UTC().Format(time.RFC3339), news2roms.Version)
}
