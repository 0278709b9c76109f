package perturb

import (
	"hash/fnv"
	"math/rand/v2"
)

// newStream returns the deterministic pseudo-random stream for one
// (sample, spec) pair. The spec seed is combined with an FNV-1a hash of the
// sample ID: two calls with identical inputs are byte-identical, while two
// different samples diverge under the same seed.
//
// Each call returns an independent generator, so concurrent perturbation of
// different samples shares no random state.
func newStream(seed int64, sampleID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(sampleID))
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}
