// SPDX-License-Identifier: MIT
// Package: ssis/seasonal
//
// profile.go — tabulates λ(t) and Λ(t) for inspection and plotting.

package seasonal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrBadProfile indicates a non-positive step or negative horizon.
var ErrBadProfile = errors.New("seasonal: invalid profile range")

// profileHeader is the header row of WriteProfile.
const profileHeader = "t\tl\tL\n"

// WriteProfile writes the tab-separated table "t\tl\tL" sampling the signal
// at t = 0, step, 2·step, ... while t < tmax, three decimals per column.
//
// Samples are computed as i·step rather than by repeated addition, so long
// tables do not drift.
//
// Errors:
//   - ErrBadProfile: step ≤ 0 or tmax < 0.
//   - any error from w.
func (r *Rate) WriteProfile(w io.Writer, tmax, step float64) error {
	if !(step > 0) || tmax < 0 {
		return fmt.Errorf("WriteProfile: tmax=%g step=%g: %w", tmax, step, ErrBadProfile)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(profileHeader); err != nil {
		return err
	}
	for i := 0; ; i++ {
		t := float64(i) * step
		if t >= tmax {
			break
		}
		if _, err := fmt.Fprintf(bw, "%1.3f\t%1.3f\t%1.3f\n", t, r.Evaluate(t), r.EvaluateIntegral(t)); err != nil {
			return err
		}
	}

	return bw.Flush()
}
