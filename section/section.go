package section

// Timeline holds the section boundaries of a song. Sections are the
// granularity at which activity decisions are made; each section spans
// a fixed number of ticks.
type Timeline struct {
	lengths []int
	starts  []int
	total   int
}

// New builds a timeline from per-section tick lengths.
func New(lengths []int) *Timeline {
	t := new(Timeline)
	t.lengths = make([]int, len(lengths))
	t.starts = make([]int, len(lengths))
	for i, l := range lengths {
		t.lengths[i] = l
		t.starts[i] = t.total
		t.total += l
	}
	return t
}

// Uniform builds a timeline of count sections, each length ticks long.
func Uniform(count, length int) *Timeline {
	lengths := make([]int, count)
	for i := range lengths {
		lengths[i] = length
	}
	return New(lengths)
}

// Count returns the number of sections.
func (t *Timeline) Count() int {
	return len(t.lengths)
}

// Length returns the tick length of section i.
func (t *Timeline) Length(i int) int {
	return t.lengths[i]
}

// Start returns the first tick of section i.
func (t *Timeline) Start(i int) int {
	return t.starts[i]
}

// TotalTicks returns the tick length of the whole song.
func (t *Timeline) TotalTicks() int {
	return t.total
}

// SectionAt maps a tick to its section, or -1 if the tick is
// outside the song.
func (t *Timeline) SectionAt(tick int) int {
	if tick < 0 || tick >= t.total {
		return -1
	}
	for i := len(t.starts) - 1; i >= 0; i-- {
		if tick >= t.starts[i] {
			return i
		}
	}
	return -1
}
