package dpsk

import "math/rand"

// addGaussianNoise returns a copy of samples with independent Gaussian
// noise of the given standard deviation added to each element. It mirrors
// the noise injection helper the original DPSK modem's test domain used
// (AddGausNoise), reimplemented on math/rand since the corpus carries no
// dedicated statistical-distribution package.
func addGaussianNoise(rng *rand.Rand, samples []float64, stddev float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s + rng.NormFloat64()*stddev
	}
	return out
}
