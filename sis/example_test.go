package sis_test

import (
	"context"
	"fmt"
	"os"

	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/sis"
)

// ExampleEngine_ImplementNextEvent steps a fully infected K4: with no
// susceptible contact left, the only possible transition is a recovery.
func ExampleEngine_ImplementNextEvent() {
	topo, _ := network.Complete(4)
	eng, _ := sis.New(sis.Config{T1: 10, T2: 20, Lambda: 2, RecoveryRate: 1}, sis.WithSeed(1))
	st, _ := eng.NewState(topo, 0)

	seeded, _ := eng.InfectRandomNodes(st, 1.0)
	n, _ := eng.ImplementNextEvent(st)
	fmt.Println("seeded:", seeded)
	fmt.Println("infected after one event:", n)
	fmt.Println("clock advanced:", st.T() > 0)
	// Output:
	// seeded: 4
	// infected after one event: 3
	// clock advanced: true
}

// ExampleTSVSink shows the snapshot table layout.
func ExampleTSVSink() {
	sink := sis.NewTSVSink(os.Stdout)
	_ = sink.WriteSnapshot(sis.Snapshot{Label: "Cont", T: 1.5, Fraction: 0.25})
	_ = sink.WriteSnapshot(sis.Snapshot{Label: "Cont", T: 3.25, Fraction: 0.2})
	// Output:
	// model	time	i
	// Cont	1.500	0.25000
	// Cont	3.250	0.20000
}

// ExampleEngine_Aggregate estimates the long-run infected level.
func ExampleEngine_Aggregate() {
	topo, _ := network.Complete(200)
	eng, _ := sis.New(sis.Config{T1: 10, T2: 20, Lambda: 2, RecoveryRate: 1, InfectionPropensity: sis.Propensity(0.001)},
		sis.WithSeed(3), sis.WithWorkers(2))
	sum, _ := eng.Aggregate(context.Background(), topo, 0, 10, 1000)
	fmt.Printf("trials=%d extinct=%d mean=%.1f\n", sum.Trials, sum.Extinct, sum.Mean)
	// Output:
	// trials=10 extinct=10 mean=0.0
}
