package sis_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/ssis/network"
)

// mustTopology returns a helper unwrapping a topology factory result.
func mustTopology(t *testing.T) func(*network.Topology, error) *network.Topology {
	t.Helper()
	return func(topo *network.Topology, err error) *network.Topology {
		t.Helper()
		if err != nil {
			t.Fatalf("topology: %v", err)
		}
		return topo
	}
}

func nanFloat() float64 { return math.NaN() }

func infFloat() float64 { return math.Inf(1) }

// divmod splits x into whole periods of p and the remaining phase.
func divmod(x, p float64) (float64, float64) {
	k := math.Floor(x / p)
	return k, x - k*p
}
