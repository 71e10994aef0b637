// SPDX-License-Identifier: MIT
// Package: ssis/seasonal
//
// rate.go — periodic piecewise-constant transmissibility, its integral and
// the integral's inverse.
//
// Canonical model (one period of length t2):
//
//	λ(t) = lambda            for phase dt ∈ [0, t1)
//	λ(t) = lambda + dlambda  for phase dt ∈ [t1, t2)
//
//	Λ(t)  = ∫₀ᵗ λ(s) ds = k·Lt2 + partial(dt),  k = ⌊t/t2⌋
//	Lt1   = lambda·t1
//	Lt2   = Lt1 + (lambda+dlambda)·(t2−t1)
//
// Contract:
//   - New validates 0 ≤ t1 < t2, lambda ≥ 0, lambda+dlambda ≥ 0, all finite.
//   - Rate is immutable after New and safe for concurrent use.
//   - EvaluateIntegralInverse(EvaluateIntegral(t)) == t (fp tolerance)
//     wherever λ > 0 around t. On a zero-rate phase Λ is flat and the inverse
//     returns the right end of the flat segment.
//
// Complexity: every method is O(1).
package seasonal

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration indicates invalid rate parameters.
var ErrConfiguration = errors.New("seasonal: invalid configuration")

const methodNew = "New"

// Rate is the seasonal transmissibility signal λ(t).
type Rate struct {
	t1, t2  float64
	lambda  float64
	dlambda float64
	high    float64 // lambda + dlambda
	lt1     float64 // Λ over [0, t1)
	lt2     float64 // Λ over one full period
}

// New validates the parameters and precomputes the one-period integrals.
//
// Errors:
//   - ErrConfiguration: non-finite input, t1 < 0, t2 ≤ t1, lambda < 0 or
//     lambda+dlambda < 0.
func New(t1, t2, lambda, dlambda float64) (*Rate, error) {
	for _, v := range []float64{t1, t2, lambda, dlambda} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s: non-finite parameter %v: %w", methodNew, v, ErrConfiguration)
		}
	}
	if t1 < 0 {
		return nil, fmt.Errorf("%s: t1=%g < 0: %w", methodNew, t1, ErrConfiguration)
	}
	if t2 <= t1 {
		return nil, fmt.Errorf("%s: t2=%g must exceed t1=%g: %w", methodNew, t2, t1, ErrConfiguration)
	}
	if lambda < 0 {
		return nil, fmt.Errorf("%s: lambda=%g < 0: %w", methodNew, lambda, ErrConfiguration)
	}
	high := lambda + dlambda
	if high < 0 {
		return nil, fmt.Errorf("%s: lambda+dlambda=%g < 0: %w", methodNew, high, ErrConfiguration)
	}

	r := &Rate{t1: t1, t2: t2, lambda: lambda, dlambda: dlambda, high: high}
	r.lt1 = lambda * t1
	r.lt2 = r.lt1 + high*(t2-t1)

	return r, nil
}

// T1 returns the start of the boosted phase within a period.
func (r *Rate) T1() float64 { return r.t1 }

// T2 returns the period length.
func (r *Rate) T2() float64 { return r.t2 }

// Lambda returns the baseline rate.
func (r *Rate) Lambda() float64 { return r.lambda }

// DLambda returns the additive boost applied during [t1, t2).
func (r *Rate) DLambda() float64 { return r.dlambda }

// PeriodIntegral returns Λ over one full period (Lt2).
func (r *Rate) PeriodIntegral() float64 { return r.lt2 }

// phase splits t ≥ 0 into (whole periods, offset within the period).
func (r *Rate) phase(t float64) (float64, float64) {
	k := math.Floor(t / r.t2)
	dt := t - k*r.t2
	// Guard fp drift at the period boundary: dt must stay in [0, t2).
	if dt >= r.t2 {
		k++
		dt -= r.t2
	}
	if dt < 0 {
		dt = 0
	}

	return k, dt
}

// Evaluate returns λ(t). Negative t is clamped to 0.
func (r *Rate) Evaluate(t float64) float64 {
	if t < 0 {
		t = 0
	}
	_, dt := r.phase(t)
	if dt < r.t1 {
		return r.lambda
	}

	return r.high
}

// EvaluateIntegral returns Λ(t) = ∫₀ᵗ λ(s) ds; Λ(t) = 0 for t ≤ 0.
func (r *Rate) EvaluateIntegral(t float64) float64 {
	if t <= 0 {
		return 0
	}
	k, dt := r.phase(t)
	if dt < r.t1 {
		return k*r.lt2 + r.lambda*dt
	}

	return k*r.lt2 + r.lt1 + r.high*(dt-r.t1)
}

// EvaluateIntegralInverse returns the smallest-period t with Λ(t) = L.
//
// Edge cases:
//   - L ≤ 0 returns 0.
//   - A signal that is identically zero (Lt2 == 0) never accumulates
//     intensity, so any L > 0 maps to +Inf.
func (r *Rate) EvaluateIntegralInverse(L float64) float64 {
	if L <= 0 {
		return 0
	}
	if r.lt2 == 0 {
		return math.Inf(1)
	}

	k := math.Floor(L / r.lt2)
	dL := L - k*r.lt2
	if dL >= r.lt2 {
		k++
		dL -= r.lt2
	}
	if dL < 0 {
		dL = 0
	}

	// lt1 > 0 implies lambda > 0, so the first branch never divides by zero.
	if dL < r.lt1 {
		return k*r.t2 + dL/r.lambda
	}
	// dL ≥ lt1 and dL < lt2 imply high > 0 here.
	return k*r.t2 + r.t1 + (dL-r.lt1)/r.high
}
