package arrange

import (
	hashids "github.com/speps/go-hashids"
)

// ID returns a short stable identifier for this arrangement, derived
// from the seed, the section count, and the voice count. Equal inputs
// give equal IDs, so a stored arrangement can be found again.
func (a *Arranger) ID() string {
	hd := hashids.NewData()
	hd.Salt = "arranger"
	hd.MinLength = 8
	h, _ := hashids.NewWithData(hd)
	seed := int(a.Settings.Seed)
	if seed < 0 {
		seed = -seed
	}
	id, _ := h.Encode([]int{seed, a.Timeline.Count(), len(a.Voices)})
	return id
}
