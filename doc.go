// Package ssis simulates Susceptible-Infected-Susceptible epidemics on
// contact networks with an exact event-driven (Gillespie) algorithm,
// optionally under a periodic two-phase seasonal transmissibility.
//
// What is in the module?
//
//	core/     — thread-safe Graph, Vertex and Edge primitives
//	builder/  — contact-graph constructors: complete, grid, G(n,p), k-regular
//	network/  — immutable CSR Topology used by the engine
//	seasonal/ — λ(t), its integral Λ(t) and the inverse Λ⁻¹
//	sis/      — the Engine: per-trial State, event selection, trials, Aggregate
//	store/    — SQLite persistence of runs, snapshots and summaries
//	metrics/  — Prometheus collector and /metrics endpoint
//	config/   — YAML configuration with validation
//	logging/  — slog construction with a TRACE level
//	cmd/ssis  — the command-line driver
//
// Quick start:
//
//	topo, _ := network.Complete(200)
//	eng, _ := sis.New(sis.Config{T1: 10, T2: 20, Lambda: 2}, sis.WithSeed(42))
//	st, _ := eng.NewState(topo, 0)
//	_, _ = eng.RunSingleTrial(ctx, st, 1.0, 100, sis.NewTSVSink(os.Stdout), "Cont")
//
// Every random draw of a trial comes from the trial's own source, derived
// from the engine seed and the trial index. Aggregate results therefore
// do not depend on the number of workers.
package ssis
