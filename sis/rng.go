// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// rng.go — deterministic per-trial random streams.
//
// Goals:
//   - Determinism: the same root seed and trial index give the same stream,
//     independent of worker count or scheduling order.
//   - Isolation: each trial owns its *rand.Rand; streams are never shared.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. A State owns exactly one.
package sis

import "math/rand"

// deriveSeed mixes a root seed and a stream identifier into a new 64-bit
// seed with a SplitMix64 finalizer, so neighbouring trial indices give
// uncorrelated streams.
//
// Complexity: O(1).
func deriveSeed(root int64, stream uint64) int64 {
	var x uint64
	x = uint64(root) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// streamSeed maps seed 0 to defaultSeed. Every stream is seeded through it,
// whether freshly allocated or reseeded in place.
func streamSeed(seed int64) int64 {
	if seed == 0 {
		return defaultSeed
	}
	return seed
}

// newRand returns a deterministic *rand.Rand seeded with streamSeed(seed).
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(streamSeed(seed)))
}

// shuffleInts performs an in-place Fisher–Yates shuffle of a.
//
// Complexity: O(n) time, O(1) extra space.
func shuffleInts(a []int, r *rand.Rand) {
	for i := len(a) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}
