package services

import (
	"math/rand/v2"
	"sync"
)

// DefaultPalette holds the six pin colors markers and rows are drawn with.
var DefaultPalette = []string{
	"#0084FF",
	"#44BEC7",
	"#FFC300",
	"#FA3C4C",
	"#D696BB",
	"#3FB1CE",
}

// ColorAssigner hands out a palette color per entity id.
//
// Colors are chosen uniformly at random with replacement, so distinct ids may share
// a color. Once an id has a color it keeps it for the lifetime of the assigner;
// EnsureColors never reassigns, which keeps pins from changing color on refresh.
type ColorAssigner struct {
	mu      sync.Mutex
	palette []string
	rng     *rand.Rand
	colors  map[string]string
}

// NewColorAssigner returns an assigner over palette (DefaultPalette when empty).
// A nil rng uses a randomly seeded source.
func NewColorAssigner(palette []string, rng *rand.Rand) *ColorAssigner {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p := make([]string, len(palette))
	copy(p, palette)

	return &ColorAssigner{
		palette: p,
		rng:     rng,
		colors:  make(map[string]string),
	}
}

// EnsureColors assigns a color to every id not seen before and returns how many were new.
// Empty ids are ignored.
func (a *ColorAssigner) EnsureColors(ids ...string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	assigned := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := a.colors[id]; ok {
			continue
		}
		a.colors[id] = a.palette[a.rng.IntN(len(a.palette))]
		assigned++
	}
	return assigned
}

func (a *ColorAssigner) ColorOf(id string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.colors[id]
	return c, ok
}

// Snapshot returns a copy of the current id -> color map.
func (a *ColorAssigner) Snapshot() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]string, len(a.colors))
	for k, v := range a.colors {
		out[k] = v
	}
	return out
}
