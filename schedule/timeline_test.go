package schedule

import (
	"testing"

	"github.com/schollz/arranger/section"
	"github.com/schollz/arranger/voice"
)

func bindVoice(t *testing.T, v *voice.Voice, sections int) *voice.Voice {
	t.Helper()
	if err := v.Bind(sections); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMaterialize(t *testing.T) {
	tl := section.Uniform(4, 10)
	m := buildMatrix([]string{"bass"}, ".##.")
	v := bindVoice(t, voice.New("bass"), 4)

	out := Materialize(m, tl, []*voice.Voice{v})
	got, ok := out["bass"]
	if !ok {
		t.Fatal("no timeline for bass")
	}
	if len(got) != 40 {
		t.Fatalf("got %d ticks", len(got))
	}
	for tick := 0; tick < 40; tick++ {
		want := tick >= 10 && tick < 30
		if got[tick] != want {
			t.Errorf("tick %d: got %v", tick, got[tick])
		}
	}
}

func TestResectionRoundTrip(t *testing.T) {
	tl := section.Uniform(6, 8)
	m := buildMatrix([]string{"lead"}, "#.##.#")
	v := bindVoice(t, voice.New("lead"), 6)

	out := Materialize(m, tl, []*voice.Voice{v})
	back := Resection(out["lead"], tl)
	for sec := 0; sec < 6; sec++ {
		if back[sec] != m.Active(sec, 0) {
			t.Errorf("section %d: got %v, want %v", sec, back[sec], m.Active(sec, 0))
		}
	}
}

func TestShiftEdges(t *testing.T) {
	tl := section.Uniform(6, 4) // 24 ticks
	m := buildMatrix([]string{"pad"}, "##..##")
	v := voice.New("pad")
	v.StartShift = 2
	v.StopShift = -1
	bindVoice(t, v, 6)

	out := Materialize(m, tl, []*voice.Voice{v})["pad"]
	// unshifted runs: ticks [0,8) and [16,24)
	// first transition-in is pinned at 0
	if !out[0] {
		t.Error("first transition-in moved")
	}
	// first run's end preponed by 1: last active tick 6
	if !out[6] || out[7] {
		t.Errorf("first run end not shifted: tick6=%v tick7=%v", out[6], out[7])
	}
	// second run's start postponed by 2: first active tick 18
	if out[17] || !out[18] {
		t.Errorf("second run start not shifted: tick17=%v tick18=%v", out[17], out[18])
	}
	// last transition-out is pinned at the song end
	if !out[23] {
		t.Error("last transition-out moved")
	}
}

func TestShiftNeverInverts(t *testing.T) {
	// a huge prepone on the stop edge may not erase the run
	tl := section.Uniform(4, 4)
	m := buildMatrix([]string{"pad"}, "#.#.")
	v := voice.New("pad")
	v.StopShift = -100
	bindVoice(t, v, 4)

	out := Materialize(m, tl, []*voice.Voice{v})["pad"]
	// first run [0,4) keeps at least its pinned start tick
	if !out[0] {
		t.Error("first run vanished")
	}
	active := 0
	for _, b := range out {
		if b {
			active++
		}
	}
	if active == 0 {
		t.Error("all runs vanished")
	}
}
