// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// errors.go — sentinel errors for the builder package.
//
// Error policy:
//   - Only sentinel variables (package-level) are exposed.
//   - Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   - Implementations attach context using "%s: ...: %w" with the method tag.
//   - Algorithms MUST NOT panic at runtime; validation panics are confined to
//     option constructor functions (WithX...).
//
// Priority when several validations fail: size, then probability, then RNG,
// then graph mode, then construction exhaustion.

package builder

import "errors"

// ErrTooFewVertices indicates that a numeric parameter (n, rows, cols, degree)
// is outside the domain allowed by the requested constructor.
var ErrTooFewVertices = errors.New("builder: parameter too small")

// ErrInvalidProbability indicates that a probability value is outside [0,1].
var ErrInvalidProbability = errors.New("builder: probability out of range")

// ErrNeedRandSource indicates that a stochastic constructor requires a non-nil
// *rand.Rand (WithSeed must be set).
var ErrNeedRandSource = errors.New("builder: rng is required")

// ErrUnsupportedGraphMode indicates the constructor is incompatible with the
// core.Graph mode (e.g., RandomRegular on a directed graph).
var ErrUnsupportedGraphMode = errors.New("builder: unsupported graph mode")

// ErrConstructFailed indicates that the builder exhausted its bounded attempts
// (e.g., RandomRegular pairing restarts) or received a nil constructor.
var ErrConstructFailed = errors.New("builder: construction failed")
