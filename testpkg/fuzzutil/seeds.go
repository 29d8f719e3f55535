package fuzzutil

import "math/rand"

// SeedCorpus returns deterministic starting inputs for the fuzzer,
// ranging from the empty script to inputs of tens of thousands of
// bytes, which decode to several thousand operations.
func SeedCorpus() [][]byte {
	r := rand.New(rand.NewSource(41))

	corpus := [][]byte{{}}
	for size := 1; size <= 50_000; size *= 8 {
		input := make([]byte, size)
		r.Read(input)
		corpus = append(corpus, input)
	}
	return corpus
}
