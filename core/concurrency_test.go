// Package core_test verifies thread-safety of core.Graph under concurrent operations.
package core_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssis/core"
)

// TestConcurrentAddEdge ensures that concurrent AddEdge calls are safe
// and every contact appears. Errors are collected, never asserted inside goroutines.
func TestConcurrentAddEdge(t *testing.T) {
	g := core.NewGraph()
	const num = 200
	var wg sync.WaitGroup
	errs := make(chan error, num)
	wg.Add(num)

	for i := 0; i < num; i++ {
		go func(id int) {
			defer wg.Done()
			if _, err := g.AddEdge("X", fmt.Sprintf("V%d", id)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	nbrs, err := g.NeighborIDs("X")
	require.NoError(t, err)
	require.Len(t, nbrs, num)
	require.Equal(t, num+1, g.Stats().VertexCount)
}

// TestConcurrentReadersDuringWrites mixes NeighborIDs readers with writers.
func TestConcurrentReadersDuringWrites(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddVertex("Base"))

	const rounds = 100
	var wg sync.WaitGroup
	wg.Add(2 * rounds)
	for i := 0; i < rounds; i++ {
		go func(id int) {
			defer wg.Done()
			_, _ = g.AddEdge("Base", fmt.Sprintf("V%d", id))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = g.NeighborIDs("Base")
			_ = g.Stats()
		}()
	}
	wg.Wait()

	nbrs, err := g.NeighborIDs("Base")
	require.NoError(t, err)
	require.Len(t, nbrs, rounds)
	require.Equal(t, rounds, g.Stats().EdgeCount)
}
