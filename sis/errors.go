// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// errors.go — sentinel errors for the sis package.
//
// Policy:
//   - Only sentinels are exported; call sites wrap them with the method name
//     via fmt.Errorf("%s: ...: %w", method, ErrX).
//   - Callers branch with errors.Is. Runtime code never panics; only option
//     constructors do, for programmer errors.
package sis

import "errors"

var (
	// ErrConfiguration indicates invalid engine parameters or arguments
	// (non-finite rates, t2 ≤ t1, negative fraction, nil topology, ...).
	ErrConfiguration = errors.New("sis: invalid configuration")

	// ErrPrecondition indicates a call made in a state that does not allow
	// it: stepping with no infected node or seeding a saturated graph.
	ErrPrecondition = errors.New("sis: precondition violated")

	// ErrDegenerate indicates a step whose total event propensity is zero,
	// so no next event exists.
	ErrDegenerate = errors.New("sis: zero total propensity")

	// ErrNodeOutOfRange indicates a node index outside [0, N).
	ErrNodeOutOfRange = errors.New("sis: node index out of range")
)
