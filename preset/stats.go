/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package preset

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/docker/go-units"
)

// Stats counts engine activity. All counters are atomic, so the REPL may read
// them while the frame loop writes.
type Stats struct {
	Frames       atomic.Int64
	EvalNanos    atomic.Int64 // total time spent in EvaluateFrame
	Loads        atomic.Int64
	Rejected     atomic.Int64 // presets that failed to load
	DroppedLines atomic.Int64
	BytesLoaded  atomic.Int64
	started      time.Time
}

func newStats() *Stats {
	return &Stats{started: time.Now()}
}

func (s *Stats) observeFrame(d time.Duration) {
	s.Frames.Add(1)
	s.EvalNanos.Add(int64(d))
}

// AvgFrame is the mean evaluation time of a frame.
func (s *Stats) AvgFrame() time.Duration {
	n := s.Frames.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(s.EvalNanos.Load() / n)
}

func (s *Stats) String() string {
	return fmt.Sprintf("up %s, %d frames (avg %v), %d presets loaded (%s), %d rejected, %d lines dropped",
		units.HumanDuration(time.Since(s.started)),
		s.Frames.Load(), s.AvgFrame(),
		s.Loads.Load(), units.HumanSize(float64(s.BytesLoaded.Load())),
		s.Rejected.Load(), s.DroppedLines.Load())
}
