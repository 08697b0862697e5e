package arrange

import (
	"testing"

	"github.com/schollz/arranger/section"
	"github.com/schollz/arranger/voice"
)

func exampleSetup() (*section.Timeline, []*voice.Voice, Settings) {
	tl := section.Uniform(8, 64)
	a := voice.New("A")
	a.MinActivePercent = 50
	voices := []*voice.Voice{a, voice.New("B"), voice.New("C")}
	s := DefaultSettings()
	s.StartActivityCounts = []int{1, 2}
	s.StopActivityCounts = []int{2, 1}
	s.MinActivityCount = 1
	s.Seed = 42
	return tl, voices, s
}

func TestExampleScenario(t *testing.T) {
	tl, voices, s := exampleSetup()
	a, err := New(tl, voices, s)
	if err != nil {
		t.Fatal(err)
	}
	m, err := a.Run()
	if err != nil {
		t.Fatal(err)
	}
	if m.Sections() != 8 {
		t.Fatalf("got %d sections", m.Sections())
	}
	if got := m.Vectors[0].Count(); got != 1 {
		t.Errorf("section 0 has %d active voices, want 1", got)
	}
	if got := m.Vectors[7].Count(); got != 1 {
		t.Errorf("last section has %d active voices, want 1", got)
	}
	if got := m.ActiveCount(0); got < 4 {
		t.Errorf("voice A active in %d of 8 sections, want >= 4", got)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []uint64 {
		tl, voices, s := exampleSetup()
		a, err := New(tl, voices, s)
		if err != nil {
			t.Fatal(err)
		}
		m, err := a.Run()
		if err != nil {
			t.Fatal(err)
		}
		out := make([]uint64, m.Sections())
		for i, v := range m.Vectors {
			out[i] = uint64(v)
		}
		return out
	}
	first := run()
	second := run()
	for sec := range first {
		if first[sec] != second[sec] {
			t.Fatalf("section %d differs between identical runs: %b vs %b", sec, first[sec], second[sec])
		}
	}
}

func TestInfeasibleConfigRejectedEagerly(t *testing.T) {
	// 5 one-section runs need 9 sections, the song has 3
	tl := section.Uniform(3, 64)
	v := voice.New("solo")
	v.MinSegmentCount = 5
	v.MaxSegmentLength = 1
	_, err := New(tl, []*voice.Voice{v}, DefaultSettings())
	if err == nil {
		t.Fatal("statically unsatisfiable config accepted")
	}
}

func TestSearchExhausted(t *testing.T) {
	// 100% activity but the voice may not start before section 1:
	// statically invisible, infeasible at search time
	tl := section.Uniform(4, 64)
	v := voice.New("solo")
	v.MinActivePercent = 100
	v.StartAfterSection = 1
	s := DefaultSettings()
	s.StartActivityCounts = nil
	s.StopActivityCounts = nil
	s.MinActivityCount = 0
	s.MaxIterations = 2000
	s.Seed = 7

	a, err := New(tl, []*voice.Voice{v}, s)
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Run()
	if err == nil {
		t.Fatal("infeasible search should not succeed")
	}
	ex, ok := err.(*ExhaustedError)
	if !ok {
		t.Fatalf("got %T, want *ExhaustedError", err)
	}
	if len(ex.Tally["solo"]) == 0 {
		t.Error("exhausted error carries no violation tally for solo")
	}
}

func TestStopWindowNarrow(t *testing.T) {
	// the stop window admits exactly one section from the end; the
	// solo voice must place its last activity there
	tl := section.Uniform(8, 64)
	solo := voice.New("solo")
	solo.MinActivePercent = 12.5
	solo.StopAfterSection = 3
	solo.StopBeforeSection = 5
	drone := voice.New("drone")
	s := DefaultSettings()
	s.StartActivityCounts = []int{1}
	s.StopActivityCounts = []int{1}
	s.Seed = 3

	a, err := New(tl, []*voice.Voice{solo, drone}, s)
	if err != nil {
		t.Fatal(err)
	}
	m, err := a.Run()
	if err != nil {
		t.Fatal(err)
	}
	runs := m.Runs(0)
	if len(runs) == 0 {
		t.Fatal("solo never active")
	}
	last := runs[len(runs)-1][1]
	if last != 4 { // fromEnd 4 is the only admitted stop
		t.Errorf("solo stops at section %d, want 4", last)
	}
}

func TestConstraintProperties(t *testing.T) {
	tl := section.Uniform(12, 32)
	a := voice.New("A")
	a.MinActivePercent = 40
	a.MinSegmentLength = 2
	b := voice.New("B")
	b.MaxActivePercent = 75
	c := voice.New("C")
	c.MinActivePercent = 10
	voices := []*voice.Voice{a, b, c, voice.New("D")}
	s := DefaultSettings()
	s.Seed = 11

	ar, err := New(tl, voices, s)
	if err != nil {
		t.Fatal(err)
	}
	m, err := ar.Run()
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range voices {
		active := m.ActiveCount(i)
		if active < v.MinActiveSections() || active > v.MaxActiveSections() {
			t.Errorf("%s: %d active sections outside %d..%d", v.Name, active, v.MinActiveSections(), v.MaxActiveSections())
		}
		runs := m.Runs(i)
		if len(runs) < v.MinSegmentCount || len(runs) > v.MaxSegmentCount {
			t.Errorf("%s: %d runs outside %d..%d", v.Name, len(runs), v.MinSegmentCount, v.MaxSegmentCount)
		}
		for _, r := range runs {
			length := r[1] - r[0] + 1
			if length < v.MinSegmentLength || length > v.MaxSegmentLength {
				t.Errorf("%s: run %v length %d outside %d..%d", v.Name, r, length, v.MinSegmentLength, v.MaxSegmentLength)
			}
		}
		for _, p := range m.Pauses(i) {
			length := p[1] - p[0] + 1
			if length < v.MinPauseLength {
				t.Errorf("%s: pause %v length %d below %d", v.Name, p, length, v.MinPauseLength)
			}
		}
	}
}

func TestDeriveMaxActivity(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 2, 10: 5}
	for voices, want := range cases {
		if got := deriveMaxActivity(voices); got != want {
			t.Errorf("%d voices: got %d, want %d", voices, got, want)
		}
	}
	// large counts settle near the fixed fraction
	if got := deriveMaxActivity(50); got < 20 || got > 21 {
		t.Errorf("50 voices: got %d", got)
	}
}

func TestWantedCountFades(t *testing.T) {
	tl, voices, s := exampleSetup()
	a, err := New(tl, voices, s)
	if err != nil {
		t.Fatal(err)
	}
	// fades are taken verbatim, no random draw involved
	if got := a.wantedCount(0, 0, false); got != 1 {
		t.Errorf("section 0: got %d", got)
	}
	if got := a.wantedCount(1, 1, true); got != 2 {
		t.Errorf("section 1: got %d", got)
	}
	if got := a.wantedCount(6, 2, true); got != 2 {
		t.Errorf("section 6: got %d", got)
	}
	if got := a.wantedCount(7, 2, true); got != 1 {
		t.Errorf("section 7: got %d", got)
	}
}

func TestID(t *testing.T) {
	tl, voices, s := exampleSetup()
	a, _ := New(tl, voices, s)
	b, _ := New(tl, voices, s)
	if a.ID() == "" || len(a.ID()) < 8 {
		t.Errorf("bad id %q", a.ID())
	}
	if a.ID() != b.ID() {
		t.Error("equal configurations should share an id")
	}
	s.Seed = 99
	c, _ := New(tl, voices, s)
	if a.ID() == c.ID() {
		t.Error("different seeds should not share an id")
	}
}
