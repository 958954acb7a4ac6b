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
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
	"github.com/sirupsen/logrus"
)

// DefaultRadius is the default half-width [grid cells] of the window that
// a plume is allowed to spread within.
const DefaultRadius = 10

// FieldBuilder creates gridded fields from rivers that have been assigned
// to grid cells.
type FieldBuilder struct {
	Grid *Grid

	// Assignments are the rivers to stamp, in stamping order. Rivers
	// later in the list overwrite earlier ones where their plumes overlap,
	// so they are normally sorted by ascending discharge. Assignments that
	// are not Resolved are skipped; use Unresolved to report them.
	// Assignments must not be changed after the first field is built.
	Assignments []Assignment

	// Radius is the half-width of the window around each river mouth
	// [grid cells].
	Radius int

	// Grower grows the plume within each window.
	Grower Grower

	Log logrus.FieldLogger

	cacheOnce sync.Once
	cache     *requestcache.Cache
}

// NewFieldBuilder returns a FieldBuilder with the default radius and
// iteration limit.
func NewFieldBuilder(g *Grid, assignments []Assignment) *FieldBuilder {
	return &FieldBuilder{
		Grid:        g,
		Assignments: assignments,
		Radius:      DefaultRadius,
		Log:         logrus.StandardLogger(),
	}
}

// footprint is the part of a plume that does not depend on the field
// being built.
type footprint struct {
	window   Window
	members  *sparse.DenseArray
	warnings []error
}

// footprintRequest holds everything a footprint depends on.
type footprintRequest struct {
	cell   Cell
	radius int
	grower Grower
}

func (r footprintRequest) key() string {
	return fmt.Sprintf("%v r=%d n=%d", r.cell, r.radius, r.grower.MaxIterations)
}

// footprint returns the footprint of a plume starting at cell c, growing
// it the first time it is requested. Rivers that share a mouth cell
// share a footprint as long as Radius and Grower are unchanged.
func (b *FieldBuilder) footprint(ctx context.Context, c Cell) *footprint {
	b.cacheOnce.Do(func() {
		b.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return b.grow(request.(footprintRequest)), nil
		}, runtime.GOMAXPROCS(0),
			requestcache.Deduplicate(), requestcache.Memory(len(b.Assignments)))
	})
	r := footprintRequest{cell: c, radius: b.Radius, grower: b.Grower}
	req := b.cache.NewRequest(ctx, r, r.key())
	result, _ := req.Result()
	return result.(*footprint)
}

func (b *FieldBuilder) grow(r footprintRequest) *footprint {
	cell := r.cell
	ny, nx := b.Grid.Shape()
	w, clipped := NewWindow(cell, r.radius, ny, nx)
	fp := &footprint{window: w}
	if clipped {
		fp.warnings = append(fp.warnings, ErrWindowOutOfBounds)
	}
	mask := w.Extract(b.Grid.Mask)
	seed := sparse.ZerosDense(mask.Shape...)
	c := w.Local(cell)
	seed.Set(1, c.J, c.I)
	members, _, err := r.grower.Grow(seed, mask)
	if err != nil {
		fp.warnings = append(fp.warnings, err)
	}
	fp.members = members
	return fp
}

// Plumes returns the plume of every resolved river for the named field,
// in stamping order. Plumes are computed concurrently.
func (b *FieldBuilder) Plumes(ctx context.Context, field string) ([]Plume, []Warning, error) {
	if b.Radius < 0 {
		return nil, nil, fmt.Errorf("news2roms: plume radius must not be negative but is %d", b.Radius)
	}
	n := len(b.Assignments)
	plumes := make([]*Plume, n)
	warnings := make([][]Warning, n)

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < n; ii += nprocs {
				if ctx.Err() != nil {
					return
				}
				a := b.Assignments[ii]
				if !a.Resolved {
					continue
				}
				v, ok := a.River.Value(field)
				if !ok {
					warnings[ii] = append(warnings[ii], Warning{River: a.River.Name, Field: field,
						Err: fmt.Errorf("river has no value for field %s", field)})
					continue
				}
				fp := b.footprint(ctx, a.Cell)
				for _, err := range fp.warnings {
					warnings[ii] = append(warnings[ii], Warning{River: a.River.Name, Field: field, Err: err})
				}
				plumes[ii] = &Plume{River: a.River.Name, Window: fp.window, Members: fp.members, Value: v}
			}
		}(pp)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var o []Plume
	var w []Warning
	for ii := 0; ii < n; ii++ {
		w = append(w, warnings[ii]...)
		if plumes[ii] != nil {
			o = append(o, *plumes[ii])
		}
	}
	return o, w, nil
}

// Build creates the full-grid field with the given name. Each river's
// plume is stamped in order onto an initially empty field, and the
// result is multiplied by the land/sea mask. Cells that no plume reaches
// are zero. Problems with individual rivers are logged and returned as
// warnings; they do not stop the build.
func (b *FieldBuilder) Build(ctx context.Context, field string) (*Field, []Warning, error) {
	plumes, warnings, err := b.Plumes(ctx, field)
	if err != nil {
		return nil, nil, err
	}
	ny, nx := b.Grid.Shape()
	data := Overlay(sparse.ZerosDense(ny, nx), plumes...)
	floats.Mul(data.Elements, b.Grid.Mask.Elements)

	f := &Field{Name: field, Data: data}
	log := b.log()
	for _, w := range warnings {
		log.WithFields(logrus.Fields{
			"river": w.River,
			"field": w.Field,
		}).Warn(w.Err)
	}
	log.WithFields(logrus.Fields{
		"field":    field,
		"plumes":   len(plumes),
		"cells":    f.Cells(),
		"warnings": len(warnings),
	}).Info("built river field")
	return f, warnings, nil
}

func (b *FieldBuilder) log() logrus.FieldLogger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}
