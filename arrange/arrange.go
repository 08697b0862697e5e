package arrange

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/schollz/arranger/schedule"
	"github.com/schollz/arranger/section"
	"github.com/schollz/arranger/voice"
)

func init() {
	log.SetLevel(log.DebugLevel)
}

// anchorBudget is the per-section try budget of section 0, large
// enough that the anchor section never exhausts in practice.
const anchorBudget = 1 << 30

// Settings are the engine knobs of the scheduler.
type Settings struct {
	// StartActivityCounts is the fade-in sequence: the wanted number
	// of active voices for the first sections, taken verbatim.
	StartActivityCounts []int
	// StopActivityCounts is the symmetric fade-out sequence for the
	// last sections.
	StopActivityCounts []int
	// MinActivityCount and MaxActivityCount bound the random walk in
	// the middle of the song. MaxActivityCount 0 means derive it from
	// the voice count.
	MinActivityCount int
	MaxActivityCount int
	// MaxActivityChangeCount bounds how far the walk may move between
	// two adjacent sections.
	MaxActivityChangeCount int
	// MaxIterations is the global try budget; exceeding it fails the
	// search.
	MaxIterations int
	// SectionIterations is the per-section try budget before the
	// engine backtracks one section. Section 0 is exempt.
	SectionIterations int
	// Seed fixes the random source. Equal seed and configuration
	// give bit-for-bit equal results.
	Seed int64
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		StartActivityCounts:    []int{1, 2, 3},
		StopActivityCounts:     []int{3, 2, 1},
		MinActivityCount:       1,
		MaxActivityCount:       0,
		MaxActivityChangeCount: 2,
		MaxIterations:          100000,
		SectionIterations:      2,
		Seed:                   1,
	}
}

// Tally counts constraint violations per voice, for debugging an
// infeasible configuration.
type Tally map[string]map[voice.Violation]int

func (t Tally) add(name string, vio voice.Violation) {
	if _, ok := t[name]; !ok {
		t[name] = make(map[voice.Violation]int)
	}
	t[name][vio]++
}

func (t Tally) String() string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		kinds := make([]string, 0, len(t[name]))
		for kind := range t[name] {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(&sb, "%s: %s x%d\n", name, kind, t[name][voice.Violation(kind)])
		}
	}
	return sb.String()
}

// ExhaustedError reports that the global iteration budget ran out
// before a valid matrix was found, which usually means the constraint
// set is infeasible for the song length.
type ExhaustedError struct {
	Iterations int
	Tally      Tally
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("search exhausted after %d iterations; violations:\n%s", e.Iterations, e.Tally)
}

// Arranger searches for a schedule matrix that satisfies every
// voice's constraints over the given section timeline.
type Arranger struct {
	Timeline *section.Timeline
	Voices   []*voice.Voice
	Settings Settings

	maxActivity int
	rng         *rand.Rand
	tally       Tally
}

// New binds every voice to the timeline and validates the whole
// configuration. All configuration errors surface here, before any
// searching happens.
func New(t *section.Timeline, voices []*voice.Voice, s Settings) (a *Arranger, err error) {
	logger := log.WithFields(log.Fields{
		"function": "Arranger.New",
	})
	if t.Count() == 0 {
		return nil, fmt.Errorf("timeline has no sections")
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("no voices to arrange")
	}
	if len(voices) > 64 {
		return nil, fmt.Errorf("%d voices exceed the 64-voice vector width", len(voices))
	}
	seen := make(map[string]bool, len(voices))
	for _, v := range voices {
		if seen[v.Name] {
			return nil, fmt.Errorf("duplicate voice %q", v.Name)
		}
		seen[v.Name] = true
		if err = v.Bind(t.Count()); err != nil {
			return nil, err
		}
	}

	a = new(Arranger)
	a.Timeline = t
	a.Voices = voices
	a.Settings = s
	a.maxActivity = s.MaxActivityCount
	if a.maxActivity == 0 {
		a.maxActivity = deriveMaxActivity(len(voices))
		logger.Debugf("derived maxActivityCount %d for %d voices", a.maxActivity, len(voices))
	}
	if a.maxActivity > len(voices) {
		a.maxActivity = len(voices)
	}
	if s.MinActivityCount < 0 || s.MinActivityCount > a.maxActivity {
		return nil, fmt.Errorf("minActivityCount %d outside 0..%d", s.MinActivityCount, a.maxActivity)
	}
	if s.MaxIterations < 1 {
		return nil, fmt.Errorf("maxIterations must be positive")
	}
	if s.SectionIterations < 1 {
		return nil, fmt.Errorf("sectionIterations must be positive")
	}
	a.rng = rand.New(rand.NewSource(s.Seed))
	a.tally = make(Tally)
	return
}

// snapshot is one accepted section: its bit-vector and the advanced
// state of every voice. Snapshots are pushed per accepted section and
// popped on backtrack; states are value-copied, never aliased.
type snapshot struct {
	vec    schedule.Vector
	states []voice.State
}

// Run searches section by section, left to right, and returns the
// finished matrix. It fails with *ExhaustedError when MaxIterations
// attempts were not enough.
func (a *Arranger) Run() (m *schedule.Matrix, err error) {
	logger := log.WithFields(log.Fields{
		"function": "Arranger.Run",
	})
	total := a.Timeline.Count()
	nvoices := len(a.Voices)
	logger.Infof("arranging %d voices over %d sections (seed %d)", nvoices, total, a.Settings.Seed)

	stack := make([]snapshot, 0, total)
	tries := make([]int, total)
	iterations := 0

	for len(stack) < total {
		sec := len(stack)
		iterations++
		if iterations > a.Settings.MaxIterations {
			logger.Errorf("no valid arrangement within %d iterations", a.Settings.MaxIterations)
			return nil, &ExhaustedError{Iterations: iterations - 1, Tally: a.tally}
		}

		budget := a.Settings.SectionIterations
		if sec == 0 {
			budget = anchorBudget
		}
		if tries[sec] >= budget {
			if sec == 0 {
				return nil, &ExhaustedError{Iterations: iterations - 1, Tally: a.tally}
			}
			// give up locally: discard this section and redo the
			// previous one with fresh draws
			tries[sec] = 0
			stack = stack[:len(stack)-1]
			logger.Debugf("section %d exhausted, backtracking to %d", sec, sec-1)
			continue
		}
		tries[sec]++

		var prevVec schedule.Vector
		var prevStates []voice.State
		if sec > 0 {
			prevVec = stack[sec-1].vec
			prevStates = stack[sec-1].states
		} else {
			prevStates = make([]voice.State, nvoices)
		}

		wanted := a.wantedCount(sec, prevVec.Count(), sec > 0)
		vec, ok := a.mutate(prevVec, prevStates, wanted)
		if !ok {
			continue
		}

		states := make([]voice.State, nvoices)
		good := true
		for i, v := range a.Voices {
			st := v.Advance(prevStates[i], vec.Active(i), sec, total)
			if vio := v.Check(st, sec, total); vio != voice.None {
				a.tally.add(v.Name, vio)
				good = false
				break
			}
			states[i] = st
		}
		if !good {
			continue
		}
		stack = append(stack, snapshot{vec: vec, states: states})
	}

	names := make([]string, nvoices)
	for i, v := range a.Voices {
		names[i] = v.Name
	}
	m = schedule.New(names)
	for _, s := range stack {
		m.Append(s.vec)
	}
	logger.Infof("arranged in %d iterations", iterations)
	return
}

// mutate derives a section attempt from the previous section's
// vector. Activations are drawn before deactivations; each drawn bit
// is pre-checked against the cheap pause/segment bounds, and any
// failed pre-check aborts the whole attempt.
func (a *Arranger) mutate(prev schedule.Vector, states []voice.State, wanted int) (schedule.Vector, bool) {
	vec := prev
	d := wanted - prev.Count()
	switch {
	case d > 0:
		for k := 0; k < d; k++ {
			i, ok := a.pickInactive(vec, states)
			if !ok {
				return 0, false
			}
			vec = vec.Set(i)
		}
	case d < 0:
		for k := 0; k < -d; k++ {
			i, ok := a.pickActive(vec, states)
			if !ok {
				return 0, false
			}
			vec = vec.Clear(i)
		}
	default:
		// wander sideways half the time so an unchanged count can
		// still move activity between voices
		if a.rng.Intn(2) == 0 && prev.Count() > 0 && prev.Count() < len(a.Voices) {
			i, ok := a.pickInactive(prev, states)
			if !ok {
				return 0, false
			}
			j, ok := a.pickActive(prev, states)
			if !ok {
				return 0, false
			}
			vec = prev.Set(i).Clear(j)
		}
	}
	return vec, true
}

// pickInactive draws one inactive voice uniformly and pre-checks that
// activating it ends a legal pause.
func (a *Arranger) pickInactive(vec schedule.Vector, states []voice.State) (int, bool) {
	cands := make([]int, 0, len(a.Voices))
	for i := range a.Voices {
		if !vec.Active(i) {
			cands = append(cands, i)
		}
	}
	if len(cands) == 0 {
		return 0, false
	}
	i := cands[a.rng.Intn(len(cands))]
	if !a.Voices[i].CanActivate(states[i]) {
		return 0, false
	}
	return i, true
}

// pickActive draws one active voice uniformly and pre-checks that
// deactivating it ends a legal run.
func (a *Arranger) pickActive(vec schedule.Vector, states []voice.State) (int, bool) {
	cands := make([]int, 0, len(a.Voices))
	for i := range a.Voices {
		if vec.Active(i) {
			cands = append(cands, i)
		}
	}
	if len(cands) == 0 {
		return 0, false
	}
	i := cands[a.rng.Intn(len(cands))]
	if !a.Voices[i].CanDeactivate(states[i]) {
		return 0, false
	}
	return i, true
}
