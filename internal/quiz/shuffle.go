package quiz

import "math/rand/v2"

// Rand is the random source for shuffling. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Shuffle permutes s in place with the Fisher-Yates algorithm.
func Shuffle[T any](s []T, r Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := int(r.Float64() * float64(i+1))
		s[i], s[j] = s[j], s[i]
	}
}
