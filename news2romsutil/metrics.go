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
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spatialmodel/news2roms"
)

// metrics records statistics about a single run.
type metrics struct {
	registry   *prometheus.Registry
	rivers     prometheus.Counter
	unresolved prometheus.Counter
	warnings   *prometheus.CounterVec
	duration   prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		rivers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "news2roms_rivers_total",
			Help: "Number of rivers in the grid domain.",
		}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "news2roms_rivers_unresolved_total",
			Help: "Number of rivers that could not be assigned to an ocean cell.",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "news2roms_warnings_total",
			Help: "Number of warnings, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "news2roms_build_duration_seconds",
			Help: "Time taken to build all fields.",
		}),
	}
	m.registry.MustRegister(m.rivers, m.unresolved, m.warnings, m.duration)
	return m
}

func (m *metrics) observeRivers(assignments []news2roms.Assignment) {
	m.rivers.Add(float64(len(assignments)))
	for _, a := range assignments {
		if !a.Resolved {
			m.unresolved.Inc()
		}
	}
}

func (m *metrics) observeWarnings(warnings []news2roms.Warning) {
	for _, w := range warnings {
		m.warnings.WithLabelValues(warningKind(w.Err)).Inc()
	}
}

func (m *metrics) observeDuration(d time.Duration) {
	m.duration.Set(d.Seconds())
}

// write writes the metrics to path in the Prometheus text format.
func (m *metrics) write(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("news2roms: writing metrics: %v", err)
	}
	return nil
}

// warningKind returns a short description of the cause of a warning.
func warningKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, news2roms.ErrUnresolvableMouth):
		return "unresolved_mouth"
	case errors.Is(err, news2roms.ErrGridMaskInconsistency):
		return "mask_inconsistency"
	case errors.Is(err, news2roms.ErrWindowOutOfBounds):
		return "window_clipped"
	case errors.Is(err, news2roms.ErrNonConvergentGrowth):
		return "nonconvergent_growth"
	default:
		return "other"
	}
}
