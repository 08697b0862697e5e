package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/schollz/arranger/arrange"
	"github.com/schollz/arranger/section"
	"github.com/schollz/arranger/voice"
)

// VoiceConfig is one voice entry of the settings file. A zero value
// means "use the default", so maxima default to unbounded and minima
// to their loosest setting.
type VoiceConfig struct {
	Name               string  `json:"name"`
	MinActive          float64 `json:"minActive"`
	MaxActive          float64 `json:"maxActive"`
	AllowFullyInactive bool    `json:"allowFullyInactive"`
	StartAfterSection  int     `json:"startAfterSection"`
	StartBeforeSection int     `json:"startBeforeSection"`
	StopAfterSection   int     `json:"stopAfterSection"`
	StopBeforeSection  int     `json:"stopBeforeSection"`
	MinSegmentCount    int     `json:"minSegmentCount"`
	MaxSegmentCount    int     `json:"maxSegmentCount"`
	MinSegmentLength   int     `json:"minSegmentLength"`
	MaxSegmentLength   int     `json:"maxSegmentLength"`
	MinPauseLength     int     `json:"minPauseLength"`
	MaxPauseLength     int     `json:"maxPauseLength"`
	StartShift         int     `json:"startShift"`
	StopShift          int     `json:"stopShift"`
}

// Voice converts the config entry into a bound-ready voice.
func (vc VoiceConfig) Voice() *voice.Voice {
	v := voice.New(vc.Name)
	v.MinActivePercent = vc.MinActive
	if vc.MaxActive > 0 {
		v.MaxActivePercent = vc.MaxActive
	}
	v.AllowFullyInactive = vc.AllowFullyInactive
	v.StartAfterSection = vc.StartAfterSection
	if vc.StartBeforeSection > 0 {
		v.StartBeforeSection = vc.StartBeforeSection
	}
	v.StopAfterSection = vc.StopAfterSection
	if vc.StopBeforeSection > 0 {
		v.StopBeforeSection = vc.StopBeforeSection
	}
	v.MinSegmentCount = vc.MinSegmentCount
	if vc.MaxSegmentCount > 0 {
		v.MaxSegmentCount = vc.MaxSegmentCount
	}
	if vc.MinSegmentLength > 0 {
		v.MinSegmentLength = vc.MinSegmentLength
	}
	if vc.MaxSegmentLength > 0 {
		v.MaxSegmentLength = vc.MaxSegmentLength
	}
	if vc.MinPauseLength > 0 {
		v.MinPauseLength = vc.MinPauseLength
	}
	if vc.MaxPauseLength > 0 {
		v.MaxPauseLength = vc.MaxPauseLength
	}
	v.StartShift = vc.StartShift
	v.StopShift = vc.StopShift
	return v
}

// Config is the JSON settings file: the song shape, the engine knobs,
// and the voices.
type Config struct {
	Sections      int `json:"sections"`
	SectionLength int `json:"sectionLength"`

	StartActivityCounts    []int `json:"startActivityCounts"`
	StopActivityCounts     []int `json:"stopActivityCounts"`
	MinActivityCount       int   `json:"minActivityCount"`
	MaxActivityCount       int   `json:"maxActivityCount"`
	MaxActivityChangeCount int   `json:"maxActivityChangeCount"`
	MaxIterations          int   `json:"maxIterations"`
	SectionIterations      int   `json:"sectionIterations"`
	Seed                   int64 `json:"seed"`

	Voices []VoiceConfig `json:"voices"`
}

// DefaultConfig is the fallback when no settings file is present:
// three voices over sixteen sections.
func DefaultConfig() Config {
	return Config{
		Sections:      16,
		SectionLength: 64,
		Voices: []VoiceConfig{
			{Name: "bass", MinActive: 50},
			{Name: "lead", MinActive: 25},
			{Name: "pad"},
		},
	}
}

// LoadConfig reads the settings file.
func LoadConfig(filename string) (c Config, err error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return
	}
	err = json.Unmarshal(b, &c)
	return
}

// Build turns the config into the engine's inputs.
func (c Config) Build() (t *section.Timeline, voices []*voice.Voice, s arrange.Settings, err error) {
	if c.Sections < 1 || c.SectionLength < 1 {
		err = fmt.Errorf("need at least one section of at least one tick, got %dx%d", c.Sections, c.SectionLength)
		return
	}
	t = section.Uniform(c.Sections, c.SectionLength)
	voices = make([]*voice.Voice, len(c.Voices))
	for i, vc := range c.Voices {
		voices[i] = vc.Voice()
	}
	s = arrange.DefaultSettings()
	if c.StartActivityCounts != nil {
		s.StartActivityCounts = c.StartActivityCounts
	}
	if c.StopActivityCounts != nil {
		s.StopActivityCounts = c.StopActivityCounts
	}
	if c.MinActivityCount > 0 {
		s.MinActivityCount = c.MinActivityCount
	}
	if c.MaxActivityCount > 0 {
		s.MaxActivityCount = c.MaxActivityCount
	}
	if c.MaxActivityChangeCount > 0 {
		s.MaxActivityChangeCount = c.MaxActivityChangeCount
	}
	if c.MaxIterations > 0 {
		s.MaxIterations = c.MaxIterations
	}
	if c.SectionIterations > 0 {
		s.SectionIterations = c.SectionIterations
	}
	if c.Seed != 0 {
		s.Seed = c.Seed
	}
	return
}
