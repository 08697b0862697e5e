package voice

import (
	"fmt"
	"math"
)

// Unbounded marks a constraint that has no finite limit.
const Unbounded = math.MaxInt32

// Voice holds the activity constraints of a single instrument track.
// A Voice is built once from configuration, bound to a section count
// with Bind, and read-only afterwards.
//
// Start and stop bounds use 1-based section counts measured from the
// song start and song end respectively. The first active section s
// (0-based) must satisfy StartAfterSection < s+1 < StartBeforeSection;
// the last active section mirrors this from the end.
type Voice struct {
	Name string

	// MinActivePercent and MaxActivePercent bound the fraction of the
	// song, in sections, during which the voice is active.
	MinActivePercent float64
	MaxActivePercent float64

	// AllowFullyInactive exempts a voice with zero activity from its
	// minimum activity and minimum segment count.
	AllowFullyInactive bool

	StartAfterSection  int
	StartBeforeSection int
	StopAfterSection   int
	StopBeforeSection  int

	// MinSegmentCount and MaxSegmentCount bound the number of separate
	// contiguous active runs.
	MinSegmentCount int
	MaxSegmentCount int

	// MinSegmentLength and MaxSegmentLength bound each run's length
	// in sections.
	MinSegmentLength int
	MaxSegmentLength int

	// MinPauseLength and MaxPauseLength bound each gap between runs.
	// Leading and trailing inactivity is not a gap.
	MinPauseLength int
	MaxPauseLength int

	// StartShift and StopShift move run edges by ticks after the
	// search is done. Positive postpones, negative prepones.
	StartShift int
	StopShift  int

	// derived by Bind
	minActiveSections int
	maxActiveSections int
	sections          int
}

// New returns a voice with no effective constraints.
func New(name string) (v *Voice) {
	v = new(Voice)
	v.Name = name
	v.MinActivePercent = 0
	v.MaxActivePercent = 100
	v.StartAfterSection = 0
	v.StartBeforeSection = Unbounded
	v.StopAfterSection = 0
	v.StopBeforeSection = Unbounded
	v.MinSegmentCount = 0
	v.MaxSegmentCount = Unbounded
	v.MinSegmentLength = 1
	v.MaxSegmentLength = Unbounded
	v.MinPauseLength = 1
	v.MaxPauseLength = Unbounded
	return
}

// MinActiveSections returns the derived minimum active section count.
// Only valid after Bind.
func (v *Voice) MinActiveSections() int {
	return v.minActiveSections
}

// MaxActiveSections returns the derived maximum active section count.
// Only valid after Bind.
func (v *Voice) MaxActiveSections() int {
	return v.maxActiveSections
}

// canBeSilent reports whether zero activity satisfies every constraint.
func (v *Voice) canBeSilent() bool {
	if v.AllowFullyInactive {
		return true
	}
	return v.minActiveSections == 0 && v.MinSegmentCount == 0
}

// Bind converts the percent bounds into integer section counts (the
// minimum rounds up, the maximum rounds down) and validates the whole
// constraint set against the song length. Every problem found here is
// a configuration error; nothing is clamped.
func (v *Voice) Bind(sections int) (err error) {
	if v.Name == "" {
		return fmt.Errorf("voice has no name")
	}
	if v.MinActivePercent < 0 || v.MaxActivePercent > 100 || v.MinActivePercent > v.MaxActivePercent {
		return fmt.Errorf("voice %s: active percent bounds %g..%g are invalid", v.Name, v.MinActivePercent, v.MaxActivePercent)
	}
	if v.MinSegmentCount < 0 || v.MinSegmentCount > v.MaxSegmentCount {
		return fmt.Errorf("voice %s: segment count bounds %d..%d are invalid", v.Name, v.MinSegmentCount, v.MaxSegmentCount)
	}
	if v.MinSegmentLength < 1 || v.MinSegmentLength > v.MaxSegmentLength {
		return fmt.Errorf("voice %s: segment length bounds %d..%d are invalid", v.Name, v.MinSegmentLength, v.MaxSegmentLength)
	}
	if v.MinPauseLength < 0 || v.MinPauseLength > v.MaxPauseLength {
		return fmt.Errorf("voice %s: pause length bounds %d..%d are invalid", v.Name, v.MinPauseLength, v.MaxPauseLength)
	}

	v.sections = sections
	v.minActiveSections = int(math.Ceil(v.MinActivePercent / 100 * float64(sections)))
	v.maxActiveSections = int(math.Floor(v.MaxActivePercent / 100 * float64(sections)))
	if v.minActiveSections > v.maxActiveSections && !v.AllowFullyInactive {
		return fmt.Errorf("voice %s: active percent bounds %g..%g leave no valid section count over %d sections", v.Name, v.MinActivePercent, v.MaxActivePercent, sections)
	}

	if v.StartAfterSection >= sections {
		return fmt.Errorf("voice %s: startAfterSection %d leaves no section to start in (%d sections)", v.Name, v.StartAfterSection, sections)
	}
	if v.StartBeforeSection != Unbounded && v.StartBeforeSection-v.StartAfterSection < 2 {
		return fmt.Errorf("voice %s: start window (%d,%d) is empty", v.Name, v.StartAfterSection, v.StartBeforeSection)
	}
	if !v.canBeSilent() {
		if v.StopAfterSection >= sections {
			return fmt.Errorf("voice %s: stopAfterSection %d silences the whole song (%d sections)", v.Name, v.StopAfterSection, sections)
		}
		if v.StopBeforeSection != Unbounded && v.StopBeforeSection-v.StopAfterSection < 2 {
			return fmt.Errorf("voice %s: stop window (%d,%d) is empty", v.Name, v.StopAfterSection, v.StopBeforeSection)
		}
		// a voice that owes runs must be able to fit them
		if v.MinSegmentCount > 0 {
			need := v.MinSegmentCount*v.MinSegmentLength + (v.MinSegmentCount-1)*v.MinPauseLength
			if need > sections {
				return fmt.Errorf("voice %s: %d segments of at least %d sections with pauses of at least %d need %d sections, song has %d", v.Name, v.MinSegmentCount, v.MinSegmentLength, v.MinPauseLength, need, sections)
			}
		}
		if v.minActiveSections > 0 && v.MaxSegmentLength != Unbounded && v.MaxSegmentCount != Unbounded {
			if v.MaxSegmentCount*v.MaxSegmentLength < v.minActiveSections {
				return fmt.Errorf("voice %s: %d segments of at most %d sections cannot reach %d active sections", v.Name, v.MaxSegmentCount, v.MaxSegmentLength, v.minActiveSections)
			}
		}
	}
	return
}

// CanActivate is the cheap pre-check used while mutating a section:
// activating a voice ends the pause in progress, which must then have
// a valid length. Leading silence is not a pause.
func (v *Voice) CanActivate(st State) bool {
	if st.Active {
		return false
	}
	if st.Runs == 0 {
		return true
	}
	return st.SpanLength >= v.MinPauseLength && st.SpanLength <= v.MaxPauseLength
}

// CanDeactivate is the cheap pre-check for clearing a voice:
// deactivating ends the run in progress.
func (v *Voice) CanDeactivate(st State) bool {
	if !st.Active {
		return false
	}
	return st.SpanLength >= v.MinSegmentLength
}
