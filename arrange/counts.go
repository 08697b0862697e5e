package arrange

import "math"

// deriveMaxActivity picks how many voices may be active at once when
// the configuration leaves it open: nearly all of them for small voice
// counts, decaying exponentially towards a fixed fraction for large
// ones.
func deriveMaxActivity(voices int) int {
	const floor = 0.40
	const decay = 0.2
	f := floor + (1-floor)*math.Exp(-decay*float64(voices-1))
	return int(math.Round(float64(voices) * f))
}

// wantedCount decides how many voices the next attempt at section sec
// should have active. The first sections follow the configured fade-in
// sequence, the last sections the fade-out sequence, and the middle is
// a bounded random walk around the previous section's count. The count
// is drawn fresh on every attempt, including backtrack revisits.
func (a *Arranger) wantedCount(sec, prevCount int, havePrev bool) int {
	total := a.Timeline.Count()
	nvoices := len(a.Voices)

	fadeIn := len(a.Settings.StartActivityCounts)
	if fadeIn > total/2 {
		fadeIn = total / 2
	}
	if sec < fadeIn {
		return clampCount(a.Settings.StartActivityCounts[sec], nvoices)
	}

	fadeOut := len(a.Settings.StopActivityCounts)
	if fadeOut > total/2 {
		fadeOut = total / 2
	}
	if total-sec <= fadeOut {
		idx := len(a.Settings.StopActivityCounts) - (total - sec)
		return clampCount(a.Settings.StopActivityCounts[idx], nvoices)
	}

	lo := a.Settings.MinActivityCount
	hi := a.maxActivity
	if havePrev {
		if a.rng.Intn(10) == 0 {
			return clampCount(prevCount, nvoices)
		}
		if step := a.Settings.MaxActivityChangeCount; step > 0 {
			if prevCount-step > lo {
				lo = prevCount - step
			}
			if prevCount+step < hi {
				hi = prevCount + step
			}
		}
	}
	if hi < lo {
		hi = lo
	}
	return clampCount(lo+a.rng.Intn(hi-lo+1), nvoices)
}

func clampCount(n, voices int) int {
	if n < 0 {
		return 0
	}
	if n > voices {
		return voices
	}
	return n
}
