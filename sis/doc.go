// SPDX-License-Identifier: MIT

// Package sis simulates Susceptible-Infected-Susceptible epidemics on a
// static contact network with an exact, event-driven stochastic algorithm.
//
// An Engine holds the immutable parameters (the seasonal transmissibility
// signal, recovery rate, propensities and Mode). A State holds everything a
// single trial mutates. Engines are shared freely; States never are.
//
// Two event-generation modes are available:
//
//   - ModeConstant: fixed propensity per S–I contact and per infected node;
//     the waiting time and the fired event are drawn independently.
//   - ModeSeasonal: infections follow the periodic rate λ(t) and recoveries
//     the configured rate μ; the next time is sampled exactly by inverting
//     the integrated intensity Λ.
//
// Quick start:
//
//	topo, _ := network.Complete(200)
//	eng, _ := sis.New(sis.Config{T1: 10, T2: 20, Lambda: 2, RecoveryRate: 1},
//		sis.WithSeed(7), sis.WithWorkers(4))
//	mean, _ := eng.GetAsymptoticNumberOfInfectedNodes(ctx, topo, 0.01, 100, 50)
//
// Errors are package sentinels (ErrConfiguration, ErrPrecondition,
// ErrDegenerate, ErrNodeOutOfRange) wrapped with call-site context.
package sis
