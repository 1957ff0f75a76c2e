package models

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// DefaultFieldSeed keeps generated fields reproducible across restarts.
const DefaultFieldSeed int64 = 42

// GenerateField builds a deterministic synthetic turbine field of the given
// size. Positions stay inside the scene extent with a small margin so culling
// spheres never poke past the bounds, years span the German expansion era and
// power ratings cover the common onshore range.
func GenerateField(count int, seed int64) []*Turbine {
	rng := rand.New(rand.NewSource(seed))

	turbines := make([]*Turbine, 0, count)
	for i := 0; i < count; i++ {
		x := -1.5 + rng.Float32()*3.0
		z := -1.8 + rng.Float32()*3.6

		t := NewTurbine(x, z)
		t.Year = 1990 + rng.Intn(34)
		t.PowerKW = 2000 + rng.Float32()*6000
		t.Height = DefaultHeight * (0.8 + rng.Float32()*0.4)
		t.RotorRadius = DefaultRotorRadius * (0.8 + rng.Float32()*0.4)
		t.BaseHeight = 0.02 * math32.Abs(math32.Sin(x*3.1)*math32.Cos(z*2.7))
		turbines = append(turbines, t)
	}
	return turbines
}
