package schedule

import (
	log "github.com/sirupsen/logrus"

	"github.com/schollz/arranger/section"
	"github.com/schollz/arranger/voice"
)

// Timeline is one voice's tick-level activity, spanning the whole song.
type Timeline []bool

// Materialize expands the matrix into per-voice tick timelines and
// applies each voice's start/stop edge shifts. The matrix is not
// mutated; voices must be in the matrix's bit order.
func Materialize(m *Matrix, t *section.Timeline, voices []*voice.Voice) map[string]Timeline {
	logger := log.WithFields(log.Fields{
		"function": "Materialize",
	})
	m.RLock()
	defer m.RUnlock()

	out := make(map[string]Timeline, len(voices))
	for i, v := range voices {
		tl := make(Timeline, t.TotalTicks())
		for sec, vec := range m.Vectors {
			if !vec.Active(i) {
				continue
			}
			start := t.Start(sec)
			for tick := start; tick < start+t.Length(sec); tick++ {
				tl[tick] = true
			}
		}
		if v.StartShift != 0 || v.StopShift != 0 {
			tl = shiftEdges(tl, v.StartShift, v.StopShift)
		}
		out[v.Name] = tl
	}
	logger.Debugf("materialized %d voices over %d ticks", len(voices), t.TotalTicks())
	return out
}

// shiftEdges moves every inactive-to-active boundary by startShift
// ticks and every active-to-inactive boundary by stopShift ticks,
// positive postponing and negative preponing. The very first
// transition-in and the very last transition-out stay put, edges are
// clamped to the song, and a run never inverts.
func shiftEdges(tl Timeline, startShift, stopShift int) Timeline {
	total := len(tl)
	// collect half-open [start, end) tick runs
	runs := [][2]int{}
	start := -1
	for tick, active := range tl {
		if active {
			if start < 0 {
				start = tick
			}
		} else if start >= 0 {
			runs = append(runs, [2]int{start, tick})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, total})
	}

	out := make(Timeline, total)
	for j, r := range runs {
		a, b := r[0], r[1]
		if j > 0 {
			a += startShift
		}
		if j < len(runs)-1 {
			b += stopShift
		}
		if a < 0 {
			a = 0
		}
		if b > total {
			b = total
		}
		if b <= a {
			b = a + 1
		}
		for tick := a; tick < b && tick < total; tick++ {
			out[tick] = true
		}
	}
	return out
}

// Resection folds a tick timeline back to per-section activity using
// the majority tick of each section.
func Resection(tl Timeline, t *section.Timeline) []bool {
	out := make([]bool, t.Count())
	for sec := range out {
		active := 0
		start := t.Start(sec)
		for tick := start; tick < start+t.Length(sec); tick++ {
			if tl[tick] {
				active++
			}
		}
		out[sec] = active*2 > t.Length(sec)
	}
	return out
}
