package layer

import (
	"math"
	"math/rand"
)

// Init draws initial parameter values from an explicit, seedable source.
// Passing the same seed reproduces the same network.
type Init struct {
	rng *rand.Rand
}

// NewInit creates an initializer seeded with seed.
func NewInit(seed int64) *Init {
	return &Init{rng: rand.New(rand.NewSource(seed))}
}

// Xavier fills dst with Glorot-uniform values in
// [-sqrt(6/(fanIn+fanOut)), +sqrt(6/(fanIn+fanOut))]. Suited to
// sigmoid and tanh activations.
func (in *Init) Xavier(fanIn, fanOut int, dst []float64) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range dst {
		dst[i] = (in.rng.Float64()*2 - 1) * limit
	}
}

// He fills dst with normal values of standard deviation sqrt(2/fanIn).
// Suited to ReLU-family activations.
func (in *Init) He(fanIn int, dst []float64) {
	std := math.Sqrt(2.0 / float64(fanIn))
	for i := range dst {
		dst[i] = in.rng.NormFloat64() * std
	}
}
