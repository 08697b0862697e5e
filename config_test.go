package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/schollz/arranger/voice"
)

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "arranger.json")
	raw := `{
		"sections": 8,
		"sectionLength": 64,
		"seed": 42,
		"startActivityCounts": [1, 2],
		"voices": [
			{"name": "A", "minActive": 50},
			{"name": "B", "maxSegmentLength": 3}
		]
	}`
	if err := ioutil.WriteFile(filename, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	tl, voices, s, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	if tl.Count() != 8 || tl.TotalTicks() != 512 {
		t.Errorf("got %d sections, %d ticks", tl.Count(), tl.TotalTicks())
	}
	if s.Seed != 42 {
		t.Errorf("got seed %d", s.Seed)
	}
	if len(s.StartActivityCounts) != 2 {
		t.Errorf("got start counts %v", s.StartActivityCounts)
	}
	if len(s.StopActivityCounts) != 3 {
		t.Errorf("defaults should fill stop counts, got %v", s.StopActivityCounts)
	}
	if voices[0].MinActivePercent != 50 || voices[0].MaxActivePercent != 100 {
		t.Errorf("voice A bounds %g..%g", voices[0].MinActivePercent, voices[0].MaxActivePercent)
	}
	if voices[1].MaxSegmentLength != 3 || voices[1].MaxSegmentCount != voice.Unbounded {
		t.Errorf("voice B segment bounds %d / %d", voices[1].MaxSegmentLength, voices[1].MaxSegmentCount)
	}
}

func TestDefaultConfigBuilds(t *testing.T) {
	_, voices, _, err := DefaultConfig().Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) != 3 {
		t.Errorf("got %d voices", len(voices))
	}
}
