package voice

// Violation names the constraint kind that rejected a section attempt.
// The scheduler tallies these per voice for the exhausted-search report.
type Violation string

const (
	None          Violation = ""
	MinActive     Violation = "minActive"
	MaxActive     Violation = "maxActive"
	MinSegments   Violation = "minSegmentCount"
	MaxSegments   Violation = "maxSegmentCount"
	MinSegmentLen Violation = "minSegmentLength"
	MaxSegmentLen Violation = "maxSegmentLength"
	MaxPauseLen   Violation = "maxPauseLength"
	StartWindow   Violation = "startWindow"
	StopWindow    Violation = "stopWindow"
)

// State is the per-section bookkeeping for one voice. It is a value
// type: assigning it is the deep copy the backtracking stack needs.
// The zero State is the state before the first section.
type State struct {
	// ActiveSections counts sections the voice has been active in.
	ActiveSections int
	// Runs counts contiguous active runs started so far.
	Runs int
	// SpanLength is the length of the run or pause currently in
	// progress, including the current section.
	SpanLength int
	// Active reports whether the current span is a run.
	Active bool
	// StoppedInWindow is set, and stays set, once the voice has been
	// active inside its stop-constraint window.
	StoppedInWindow bool
}

// Next advances the state by one section.
func (st State) Next(active bool) State {
	if active {
		st.ActiveSections++
		if st.Active {
			st.SpanLength++
		} else {
			st.Runs++
			st.SpanLength = 1
			st.Active = true
		}
	} else {
		if st.Active {
			st.SpanLength = 1
			st.Active = false
		} else {
			st.SpanLength++
		}
	}
	return st
}

// Advance moves the voice's state one section forward and maintains
// the sticky stop-window flag. sec is the 0-based section index, total
// the section count of the song.
func (v *Voice) Advance(st State, active bool, sec, total int) State {
	st = st.Next(active)
	if active && total-sec < v.StopBeforeSection {
		st.StoppedInWindow = true
	}
	return st
}

// needsMoreActivity reports whether the voice cannot finish the song
// in its current state without activating again.
func (v *Voice) needsMoreActivity(st State) bool {
	if v.AllowFullyInactive && st.ActiveSections == 0 {
		return false
	}
	return st.ActiveSections < v.minActiveSections || st.Runs < v.MinSegmentCount
}

// Check validates the advanced state of one voice against the full
// constraint set, projecting forward where a bound could still be met.
// It returns the violated constraint kind, or None.
func (v *Voice) Check(st State, sec, total int) Violation {
	fromStart := sec + 1
	fromEnd := total - sec
	remaining := total - 1 - sec

	if st.ActiveSections > v.maxActiveSections {
		return MaxActive
	}
	if st.ActiveSections+remaining < v.minActiveSections {
		if st.ActiveSections > 0 || !v.AllowFullyInactive {
			return MinActive
		}
	}

	if st.Runs > v.MaxSegmentCount {
		return MaxSegments
	}
	if st.Runs < v.MinSegmentCount && !(v.AllowFullyInactive && st.ActiveSections == 0) {
		deficit := v.MinSegmentCount - st.Runs
		need := deficit * v.MinSegmentLength
		if st.Active {
			need += deficit * v.MinPauseLength
		} else {
			need += (deficit - 1) * v.MinPauseLength
			if st.Runs > 0 && v.MinPauseLength > st.SpanLength {
				need += v.MinPauseLength - st.SpanLength
			}
		}
		if need > remaining {
			return MinSegments
		}
	}

	if st.Active {
		if st.SpanLength > v.MaxSegmentLength {
			return MaxSegmentLen
		}
		if st.SpanLength < v.MinSegmentLength && remaining < v.MinSegmentLength-st.SpanLength {
			return MinSegmentLen
		}
	} else if st.Runs > 0 {
		// a pause longer than the maximum is only fatal while the
		// voice still owes activity; otherwise it is trailing silence
		if st.SpanLength > v.MaxPauseLength && v.needsMoreActivity(st) {
			return MaxPauseLen
		}
	}

	if st.Active && st.Runs == 1 && st.SpanLength == 1 {
		if fromStart <= v.StartAfterSection || fromStart >= v.StartBeforeSection {
			return StartWindow
		}
	}
	if st.Runs == 0 && fromStart >= v.StartBeforeSection-1 && !v.canBeSilent() {
		return StartWindow
	}

	if st.Active && fromEnd <= v.StopAfterSection {
		return StopWindow
	}
	if st.Runs > 0 && !st.StoppedInWindow && fromEnd <= v.StopAfterSection+1 {
		return StopWindow
	}

	return None
}
