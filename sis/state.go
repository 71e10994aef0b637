// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// state.go — per-trial simulation state.
//
// A State carries everything a trial mutates: the infected flag of every
// node, the susceptible candidate set, the clock T, the integrated seasonal
// intensity L and the trial's random stream. The topology is shared and
// read-only.
//
// Invariants (hold after every exported call):
//   - InfectedCount() == number of i with Infected(i), and lies in [0, N].
//   - i is in the susceptible set ⇔ !Infected(i); pos[i] is its slot or -1.
//
// Concurrency:
//   - A State belongs to exactly one goroutine at a time.
package sis

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/ssis/network"
)

// State is the mutable state of one trial.
type State struct {
	topo *network.Topology
	rng  *rand.Rand

	infected    []bool
	susceptible []int // swap-remove set of susceptible nodes
	pos         []int // slot of node i in susceptible, -1 when infected
	nInfected   int

	t float64
	l float64

	buf  eventBuffer
	perm []int
}

// NewState allocates a State over topo with its own stream seeded by seed
// (0 selects the default seed). All nodes start susceptible at T = 0.
//
// Errors:
//   - ErrConfiguration: topo == nil.
func NewState(topo *network.Topology, seed int64) (*State, error) {
	if topo == nil {
		return nil, fmt.Errorf("NewState: nil topology: %w", ErrConfiguration)
	}
	n := topo.VertexCount()
	st := &State{
		topo:        topo,
		rng:         newRand(seed),
		infected:    make([]bool, n),
		susceptible: make([]int, n),
		pos:         make([]int, n),
	}
	st.reset()

	return st, nil
}

// reseed restarts the State's stream exactly as NewState(topo, seed) would
// have seeded it.
func (st *State) reseed(seed int64) {
	st.rng.Seed(streamSeed(seed))
}

// reset returns every node to susceptible and the clocks to zero.
func (st *State) reset() {
	st.susceptible = st.susceptible[:len(st.infected)]
	for i := range st.infected {
		st.infected[i] = false
		st.susceptible[i] = i
		st.pos[i] = i
	}
	st.nInfected = 0
	st.t, st.l = 0, 0
}

// infect marks i infected; it reports whether the flag changed.
func (st *State) infect(i int) bool {
	if st.infected[i] {
		return false
	}
	st.infected[i] = true
	st.nInfected++

	// Swap-remove i from the susceptible set.
	p := st.pos[i]
	last := len(st.susceptible) - 1
	moved := st.susceptible[last]
	st.susceptible[p] = moved
	st.pos[moved] = p
	st.susceptible = st.susceptible[:last]
	st.pos[i] = -1

	return true
}

// heal marks i susceptible; it reports whether the flag changed.
func (st *State) heal(i int) bool {
	if !st.infected[i] {
		return false
	}
	st.infected[i] = false
	st.nInfected--
	st.pos[i] = len(st.susceptible)
	st.susceptible = append(st.susceptible, i)

	return true
}

// Topology returns the contact structure the State runs on.
func (st *State) Topology() *network.Topology { return st.topo }

// T returns the simulation clock.
func (st *State) T() float64 { return st.t }

// L returns the seasonal intensity Λ(T) integrated up to the clock.
func (st *State) L() float64 { return st.l }

// VertexCount returns N.
func (st *State) VertexCount() int { return len(st.infected) }

// InfectedCount returns the number of infected nodes.
func (st *State) InfectedCount() int { return st.nInfected }

// SusceptibleCount returns N − InfectedCount().
func (st *State) SusceptibleCount() int { return len(st.susceptible) }

// Fraction returns InfectedCount()/N.
func (st *State) Fraction() float64 {
	return float64(st.nInfected) / float64(len(st.infected))
}

// Infected reports whether node i is infected; out-of-range i is reported
// as not infected.
func (st *State) Infected(i int) bool {
	if i < 0 || i >= len(st.infected) {
		return false
	}
	return st.infected[i]
}
