// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// events.go — the two transitions of the SIS chain and the per-step buffer
// that enumerates them.

package sis

// EventKind distinguishes the two SIS transitions.
type EventKind uint8

const (
	// KindInfection flips a susceptible node to infected.
	KindInfection EventKind = iota + 1
	// KindRecovery flips an infected node back to susceptible.
	KindRecovery
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case KindInfection:
		return "infection"
	case KindRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// Event is a candidate or applied transition. The set of implementations
// is closed: Infection and Recovery.
type Event interface {
	Kind() EventKind
	Node() int
	Rate() float64
	isEvent()
}

// Infection is the transmission from infected Source to susceptible Target
// along one contact.
type Infection struct {
	Target     int
	Source     int
	Propensity float64
}

// Recovery is the recovery of infected Target.
type Recovery struct {
	Target     int
	Propensity float64
}

func (Infection) Kind() EventKind { return KindInfection }
func (e Infection) Node() int     { return e.Target }
func (e Infection) Rate() float64 { return e.Propensity }
func (Infection) isEvent()        {}
func (Recovery) Kind() EventKind  { return KindRecovery }
func (e Recovery) Node() int      { return e.Target }
func (e Recovery) Rate() float64  { return e.Propensity }
func (Recovery) isEvent()         {}

// eventBuffer holds the candidate events of one step. Recoveries come
// first, then infections; cum is the running propensity sum over that
// concatenation. Buffers are reused across steps of the same State.
type eventBuffer struct {
	recoveries []Recovery
	infections []Infection
	cum        []float64
}

func (b *eventBuffer) reset() {
	b.recoveries = b.recoveries[:0]
	b.infections = b.infections[:0]
	b.cum = b.cum[:0]
}

func (b *eventBuffer) len() int { return len(b.recoveries) + len(b.infections) }

// at returns the i-th event of the concatenation.
func (b *eventBuffer) at(i int) Event {
	if i < len(b.recoveries) {
		return b.recoveries[i]
	}
	return b.infections[i-len(b.recoveries)]
}

// rate returns the propensity of the i-th event without boxing it.
func (b *eventBuffer) rate(i int) float64 {
	if i < len(b.recoveries) {
		return b.recoveries[i].Propensity
	}
	return b.infections[i-len(b.recoveries)].Propensity
}
