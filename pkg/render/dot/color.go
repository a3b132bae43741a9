package dot

import "math/rand/v2"

// DefaultPalette is the fixed set of pastel cluster backgrounds.
var DefaultPalette = []string{
	"#e8f1fa", "#eaf5e6", "#fdf1e1", "#f6e8f4",
	"#fbf7dc", "#e6f4f3", "#f3ebe4", "#ecebf7",
}

// ColorPicker hands out cluster colors. Implementations must be
// deterministic so repeated runs produce identical documents.
type ColorPicker interface {
	Next() string
}

// RoundRobin cycles through a palette in order.
type RoundRobin struct {
	palette []string
	i       int
}

// NewRoundRobin creates a picker over palette, or DefaultPalette when empty.
func NewRoundRobin(palette []string) *RoundRobin {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &RoundRobin{palette: palette}
}

// Next returns the next color in the cycle.
func (r *RoundRobin) Next() string {
	c := r.palette[r.i%len(r.palette)]
	r.i++
	return c
}

// Seeded draws colors pseudo-randomly from a palette; the same seed always
// yields the same sequence.
type Seeded struct {
	palette []string
	rng     *rand.Rand
}

// NewSeeded creates a seeded picker over palette, or DefaultPalette when
// empty.
func NewSeeded(palette []string, seed uint64) *Seeded {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Seeded{palette: palette, rng: rand.New(rand.NewPCG(seed, seed))}
}

// Next returns a color from the palette.
func (s *Seeded) Next() string {
	return s.palette[s.rng.IntN(len(s.palette))]
}
