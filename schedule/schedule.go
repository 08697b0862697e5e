package schedule

import (
	"encoding/json"
	"io/ioutil"
	"math/bits"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Vector is one section's activity bit-vector, one bit per voice.
type Vector uint64

// Active reports whether voice i is active.
func (v Vector) Active(i int) bool {
	return v&(1<<uint(i)) != 0
}

// Set returns the vector with voice i active.
func (v Vector) Set(i int) Vector {
	return v | 1<<uint(i)
}

// Clear returns the vector with voice i inactive.
func (v Vector) Clear(i int) Vector {
	return v &^ (1 << uint(i))
}

// Count returns the number of active voices.
func (v Vector) Count() int {
	return bits.OnesCount64(uint64(v))
}

// Render draws the first n bits as '#' and '.'.
func (v Vector) Render(n int) string {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		if v.Active(i) {
			b[i] = '#'
		} else {
			b[i] = '.'
		}
	}
	return string(b)
}

// Matrix is the accepted per-section activity of every voice: one
// Vector per section, bit i belonging to Names[i].
type Matrix struct {
	Names   []string
	Vectors []Vector
	sync.RWMutex
}

// New returns an empty matrix for the named voices.
func New(names []string) *Matrix {
	m := new(Matrix)
	m.Lock()
	m.Names = make([]string, len(names))
	copy(m.Names, names)
	m.Vectors = []Vector{}
	m.Unlock()
	return m
}

// Open loads a previously saved matrix.
func Open(filename string) (*Matrix, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return new(Matrix), err
	}
	var payload struct {
		Names   []string
		Vectors []Vector
	}
	err = json.Unmarshal(b, &payload)
	m := new(Matrix)
	m.Lock()
	m.Names = payload.Names
	m.Vectors = payload.Vectors
	m.Unlock()
	return m, err
}

// Save writes the matrix as JSON.
func (m *Matrix) Save(filename string) (err error) {
	m.RLock()
	defer m.RUnlock()
	b, err := json.Marshal(struct {
		Names   []string
		Vectors []Vector
	}{m.Names, m.Vectors})
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, b, 0755)
}

// Append adds one accepted section.
func (m *Matrix) Append(v Vector) {
	m.Lock()
	defer m.Unlock()
	m.Vectors = append(m.Vectors, v)
}

// Sections returns the number of sections appended so far.
func (m *Matrix) Sections() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.Vectors)
}

// Active reports whether voice i is active in section sec.
func (m *Matrix) Active(sec, i int) bool {
	m.RLock()
	defer m.RUnlock()
	return m.Vectors[sec].Active(i)
}

// ActiveCount returns the number of sections voice i is active in.
func (m *Matrix) ActiveCount(i int) (n int) {
	m.RLock()
	defer m.RUnlock()
	for _, v := range m.Vectors {
		if v.Active(i) {
			n++
		}
	}
	return
}

// Runs returns the maximal contiguous active spans of voice i as
// inclusive [start, end] section pairs.
func (m *Matrix) Runs(i int) (runs [][2]int) {
	m.RLock()
	defer m.RUnlock()
	runs = [][2]int{}
	start := -1
	for sec, v := range m.Vectors {
		if v.Active(i) {
			if start < 0 {
				start = sec
			}
		} else if start >= 0 {
			runs = append(runs, [2]int{start, sec - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(m.Vectors) - 1})
	}
	return
}

// Pauses returns the gaps between runs of voice i as inclusive
// [start, end] section pairs. Leading and trailing inactivity is
// not included.
func (m *Matrix) Pauses(i int) (pauses [][2]int) {
	pauses = [][2]int{}
	runs := m.Runs(i)
	for j := 1; j < len(runs); j++ {
		pauses = append(pauses, [2]int{runs[j-1][1] + 1, runs[j][0] - 1})
	}
	return
}

// Render draws the matrix as one row per voice, sections left to right.
func (m *Matrix) Render() string {
	logger := log.WithFields(log.Fields{
		"function": "Matrix.Render",
	})
	m.RLock()
	defer m.RUnlock()
	logger.Debugf("rendering %d sections, %d voices", len(m.Vectors), len(m.Names))
	width := 0
	for _, name := range m.Names {
		if len(name) > width {
			width = len(name)
		}
	}
	var sb strings.Builder
	for i, name := range m.Names {
		sb.WriteString(name)
		sb.WriteString(strings.Repeat(" ", width-len(name)+1))
		for _, v := range m.Vectors {
			if v.Active(i) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
