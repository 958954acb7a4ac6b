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
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/gonum/floats"
)

// ProximityThreshold is the default maximum angular distance [radians]
// between a river mouth and the ocean cell it is assigned to,
// about 64 km at the Earth's surface.
const ProximityThreshold = 0.01

const (
	deg2rad = math.Pi / 180

	// landDistance is larger than any possible angular distance.
	landDistance = 1e36
)

var (
	// ErrUnresolvableMouth is returned when there is no ocean cell within
	// the proximity threshold of a river mouth.
	ErrUnresolvableMouth = errors.New("no ocean cell within the proximity threshold of the river mouth")

	// ErrGridMaskInconsistency is returned when the cell selected for a
	// river mouth turns out to be a land cell.
	ErrGridMaskInconsistency = errors.New("nearest cell to the river mouth is a land cell")
)

// Resolution is the result of assigning a point to a grid cell.
type Resolution struct {
	// Cell is the nearest ocean cell. When Resolved is false it is the
	// best candidate that was found and must not receive a value.
	Cell Cell

	// Distance is the angular distance between the point and the
	// center of Cell [radians].
	Distance float64

	// Resolved is true when Cell is a valid assignment.
	Resolved bool
}

// Resolver finds the ocean cell nearest to a geographic point.
// It is safe for concurrent use.
type Resolver struct {
	Grid *Grid

	// Threshold is the maximum angular distance [radians] for a
	// match. If it is zero or less, ProximityThreshold is used.
	Threshold float64

	initOnce sync.Once

	// per-cell colatitude, its sine and longitude [radians]
	phi, sinPhi, theta []float64

	// ocean is the mask at the time the resolver was first used.
	ocean []bool
}

// NewResolver returns a resolver for grid g.
func NewResolver(g *Grid) *Resolver {
	return &Resolver{Grid: g, Threshold: ProximityThreshold}
}

func (r *Resolver) init() {
	n := len(r.Grid.Mask.Elements)
	r.phi = make([]float64, n)
	r.sinPhi = make([]float64, n)
	r.theta = make([]float64, n)
	r.ocean = make([]bool, n)
	for k := 0; k < n; k++ {
		r.phi[k] = (90 - r.Grid.Lat.Elements[k]) * deg2rad
		r.sinPhi[k] = math.Sin(r.phi[k])
		r.theta[k] = r.Grid.Lon.Elements[k] * deg2rad
		r.ocean[k] = r.Grid.Mask.Elements[k] == 1
	}
}

// Resolve returns the ocean cell nearest to the point at lon, lat [degrees].
// If no ocean cell is within the threshold distance, the returned
// Resolution is not Resolved and the error is ErrUnresolvableMouth.
func (r *Resolver) Resolve(lon, lat float64) (Resolution, error) {
	r.initOnce.Do(r.init)
	if len(r.phi) == 0 {
		return Resolution{Distance: landDistance}, ErrUnresolvableMouth
	}
	phi := (90 - lat) * deg2rad
	sinPhi := math.Sin(phi)
	theta := lon * deg2rad

	dist := make([]float64, len(r.phi))
	for k := range dist {
		if !r.ocean[k] {
			dist[k] = landDistance
			continue
		}
		d := angularDistance(phi, sinPhi, theta, r.phi[k], r.sinPhi[k], r.theta[k])
		if math.IsNaN(d) {
			d = landDistance
		}
		dist[k] = d
	}
	k := floats.MinIdx(dist)
	idx := r.Grid.Mask.IndexNd(k)
	res := Resolution{Cell: Cell{J: idx[0], I: idx[1]}, Distance: dist[k]}
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = ProximityThreshold
	}
	if res.Distance > threshold {
		return res, ErrUnresolvableMouth
	}
	if !r.Grid.IsOcean(res.Cell) {
		return res, ErrGridMaskInconsistency
	}
	res.Resolved = true
	return res, nil
}

// angularDistance returns the great-circle angle between two points
// from the spherical law of cosines, where phi is colatitude and theta
// is longitude [radians]. The law is arranged as
// cos(φ1-φ2) - sinφ1 sinφ2 (1-cos(θ1-θ2)) so that coincident points
// give exactly zero.
func angularDistance(phi1, sinPhi1, theta1, phi2, sinPhi2, theta2 float64) float64 {
	c := math.Cos(phi1-phi2) - sinPhi1*sinPhi2*(1-math.Cos(theta1-theta2))
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Assignment is a river together with the result of resolving
// its mouth to a grid cell.
type Assignment struct {
	River River
	Resolution

	// Err is the reason the river could not be resolved, if any.
	Err error
}

// ResolveAll concurrently resolves the mouths of all rivers. The returned
// assignments are in the same order as rivers.
func (r *Resolver) ResolveAll(rivers []River) []Assignment {
	out := make([]Assignment, len(rivers))
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(rivers); ii += nprocs {
				res, err := r.Resolve(rivers[ii].MouthLon, rivers[ii].MouthLat)
				out[ii] = Assignment{River: rivers[ii], Resolution: res, Err: err}
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return out
}

// Unresolved returns a warning for every assignment that was not resolved.
func Unresolved(assignments []Assignment) []Warning {
	var w []Warning
	for _, a := range assignments {
		if !a.Resolved {
			w = append(w, Warning{River: a.River.Name, Err: a.Err})
		}
	}
	return w
}
