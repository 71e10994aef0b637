// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// config.go — internal configuration and deterministic defaults.
//
// Deterministic defaults (no surprises):
//   - vertex IDs are decimal indices ("0","1","2",...)
//   - rng = nil (pure/deterministic unless seeded)
package builder

import (
	"math/rand"
	"strconv"
)

// builderConfig aggregates all knobs used by constructors.
// It is passed by VALUE to constructors.
type builderConfig struct {
	// RNG for stochastic choices; nil means “no randomness”.
	rng *rand.Rand
}

// newBuilderConfig constructs a config with deterministic defaults and applies
// all options in order (later overrides earlier).
// Complexity: O(len(opts)).
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	var cfg builderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// vertexID is the ID scheme of the index-based constructors: 0→"0", 42→"42".
func vertexID(idx int) string {
	return strconv.Itoa(idx)
}
