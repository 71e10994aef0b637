// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// config.go — engine parameters and event-generation modes.

package sis

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how event propensities and waiting times are generated.
type Mode int

const (
	// ModeConstant uses a fixed propensity per S–I contact and per infected
	// node, draws the waiting time as the minimum of per-event exponential
	// variates, and selects the event by a separate weighted draw.
	ModeConstant Mode = iota

	// ModeSeasonal drives infections by the seasonal rate λ(t) and
	// recoveries by RecoveryRate, sampling the next time exactly through
	// the integrated intensity Λ and its inverse.
	ModeSeasonal
)

const (
	// DefaultInfectionPropensity is the per-contact infection propensity of
	// ModeConstant.
	DefaultInfectionPropensity = 2.0 / 200.0

	// DefaultRecoveryPropensity is the per-node recovery propensity of
	// ModeConstant.
	DefaultRecoveryPropensity = 1.0

	// DefaultSnapshotEvery is the snapshot interval of RunSingleTrial, in events.
	DefaultSnapshotEvery = 50
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeConstant:
		return "constant"
	case ModeSeasonal:
		return "seasonal"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "constant" or "seasonal" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant", "":
		return ModeConstant, nil
	case "seasonal":
		return ModeSeasonal, nil
	default:
		return 0, fmt.Errorf("ParseMode: unknown mode %q: %w", s, ErrConfiguration)
	}
}

// Config holds the engine parameters.
//
// T1, T2, Lambda and DLambda describe the seasonal rate signal and are
// required in both modes. RecoveryRate is the per-node recovery rate of
// ModeSeasonal; ModeConstant validates and keeps it but recovers at
// RecoveryPropensity instead.
//
// A nil InfectionPropensity or RecoveryPropensity selects the package
// default; an explicit zero is kept, so a constant-mode chain without
// transmission is expressible. SnapshotEvery = 0 selects
// DefaultSnapshotEvery.
type Config struct {
	T1, T2          float64
	Lambda, DLambda float64
	RecoveryRate    float64

	InfectionPropensity *float64 `json:",omitempty"`
	RecoveryPropensity  *float64 `json:",omitempty"`

	Mode          Mode
	SnapshotEvery int
}

// Propensity returns a pointer to v for the optional Config fields.
func Propensity(v float64) *float64 { return &v }

// withDefaults returns c with unset knobs replaced by package defaults. The
// propensities are copied so the caller's variables cannot change a built
// Engine.
func (c Config) withDefaults() Config {
	c.InfectionPropensity = propensityOr(c.InfectionPropensity, DefaultInfectionPropensity)
	c.RecoveryPropensity = propensityOr(c.RecoveryPropensity, DefaultRecoveryPropensity)
	if c.SnapshotEvery == 0 {
		c.SnapshotEvery = DefaultSnapshotEvery
	}

	return c
}

func propensityOr(p *float64, def float64) *float64 {
	if p == nil {
		return Propensity(def)
	}
	return Propensity(*p)
}

// validate checks the engine-specific fields of a defaulted Config; the rate
// signal is checked by seasonal.New.
func (c Config) validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"RecoveryRate", c.RecoveryRate},
		{"InfectionPropensity", *c.InfectionPropensity},
		{"RecoveryPropensity", *c.RecoveryPropensity},
	}
	for _, chk := range checks {
		if math.IsNaN(chk.v) || math.IsInf(chk.v, 0) || chk.v < 0 {
			return fmt.Errorf("%s: %s=%g must be finite and ≥ 0: %w", methodNew, chk.name, chk.v, ErrConfiguration)
		}
	}
	if c.Mode != ModeConstant && c.Mode != ModeSeasonal {
		return fmt.Errorf("%s: %v: %w", methodNew, c.Mode, ErrConfiguration)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("%s: SnapshotEvery=%d < 0: %w", methodNew, c.SnapshotEvery, ErrConfiguration)
	}

	return nil
}
