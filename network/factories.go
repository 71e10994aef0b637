// SPDX-License-Identifier: MIT
// Package: ssis/network
//
// factories.go — ready-made contact topologies on top of builder.
//
// Factories build a simple graph, undirected unless Directed(true) is
// given, and snapshot it with FromGraph. Random factories are
// deterministic for a given seed.
package network

import (
	"fmt"

	"github.com/katalvlaran/ssis/builder"
	"github.com/katalvlaran/ssis/core"
)

// Option customizes a topology factory.
type Option func(*factoryConfig)

type factoryConfig struct {
	directed bool
}

// Directed makes every contact one-way: an infected node then transmits
// only along its out-edges. KRegular rejects directed graphs.
func Directed(directed bool) Option {
	return func(c *factoryConfig) {
		c.directed = directed
	}
}

// Complete returns K_n.
func Complete(n int, opts ...Option) (*Topology, error) {
	return build("Complete", opts, nil, builder.Complete(n))
}

// Lattice returns the lx×ly orthogonal lattice; node IDs are "r,c".
func Lattice(lx, ly int, opts ...Option) (*Topology, error) {
	return build("Lattice", opts, nil, builder.Grid(lx, ly))
}

// ErdosRenyi returns a G(n,p) random graph drawn from seed.
func ErdosRenyi(n int, p float64, seed int64, opts ...Option) (*Topology, error) {
	return build("ErdosRenyi", opts, []builder.BuilderOption{builder.WithSeed(seed)}, builder.RandomSparse(n, p))
}

// KRegular returns a random k-regular graph drawn from seed.
// n·k must be even and k < n.
func KRegular(n, k int, seed int64, opts ...Option) (*Topology, error) {
	return build("KRegular", opts, []builder.BuilderOption{builder.WithSeed(seed)}, builder.RandomRegular(n, k))
}

func build(method string, opts []Option, bopts []builder.BuilderOption, ctor builder.Constructor) (*Topology, error) {
	var fc factoryConfig
	for _, opt := range opts {
		opt(&fc)
	}

	g, err := builder.BuildGraph([]core.GraphOption{core.WithDirected(fc.directed)}, bopts, ctor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return FromGraph(g)
}
