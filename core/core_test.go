package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/ssis/core"
)

type GraphSuite struct {
	suite.Suite
	g *core.Graph
}

func (s *GraphSuite) SetupTest() {
	// Undirected by default; individual tests may override
	s.g = core.NewGraph()
}

func (s *GraphSuite) TestAddVertexIdempotent() {
	require := require.New(s.T())

	require.NoError(s.g.AddVertex("A"))
	require.NoError(s.g.AddVertex("B"))
	require.NoError(s.g.AddVertex("A"))
	require.Equal(2, s.g.Stats().VertexCount, "duplicate AddVertex must be a no-op")
	require.Equal([]string{"A", "B"}, s.g.Vertices())

	require.ErrorIs(s.g.AddVertex(""), core.ErrEmptyVertexID)
}

func (s *GraphSuite) TestVerticesInsertionOrder() {
	require := require.New(s.T())
	for _, id := range []string{"10", "2", "1"} {
		require.NoError(s.g.AddVertex(id))
	}
	ids := s.g.Vertices()
	require.Equal([]string{"10", "2", "1"}, ids)

	ids[0] = "mutated"
	require.Equal("10", s.g.Vertices()[0], "Vertices returns a copy")
}

func (s *GraphSuite) TestAddEdgeMirrorsUndirected() {
	require := require.New(s.T())
	eid, err := s.g.AddEdge("A", "B")
	require.NoError(err)
	require.Equal("e1", eid)

	adj := s.g.AdjacencyList()
	require.Equal([]string{"B"}, adj["A"])
	require.Equal([]string{"A"}, adj["B"])
	require.Equal(1, s.g.Stats().EdgeCount)
}

func (s *GraphSuite) TestAddEdgeRejectsLoopsAndParallels() {
	require := require.New(s.T())

	_, err := s.g.AddEdge("A", "A")
	require.ErrorIs(err, core.ErrLoopNotAllowed)

	_, err = s.g.AddEdge("A", "B")
	require.NoError(err)
	_, err = s.g.AddEdge("A", "B")
	require.ErrorIs(err, core.ErrMultiEdgeNotAllowed)
	_, err = s.g.AddEdge("B", "A")
	require.ErrorIs(err, core.ErrMultiEdgeNotAllowed, "the mirror of an undirected contact already exists")

	_, err = s.g.AddEdge("", "B")
	require.ErrorIs(err, core.ErrEmptyVertexID)
	require.Equal(1, s.g.Stats().EdgeCount)
}

func (s *GraphSuite) TestDirectedNeighbors() {
	require := require.New(s.T())
	dg := core.NewGraph(core.WithDirected(true))
	require.True(dg.Directed())

	_, err := dg.AddEdge("X", "Y")
	require.NoError(err)

	out, err := dg.NeighborIDs("X")
	require.NoError(err)
	require.Equal([]string{"Y"}, out)

	in, err := dg.NeighborIDs("Y")
	require.NoError(err)
	require.Empty(in)

	_, err = dg.AddEdge("Y", "X")
	require.NoError(err, "the reverse direction is a distinct contact")
	require.Equal(2, dg.Stats().EdgeCount)
}

func (s *GraphSuite) TestNeighborIDsOrderAndErrors() {
	require := require.New(s.T())
	for _, id := range []string{"hub", "c", "a", "b"} {
		require.NoError(s.g.AddVertex(id))
	}
	for _, id := range []string{"b", "a", "c"} {
		_, err := s.g.AddEdge("hub", id)
		require.NoError(err)
	}

	nbrs, err := s.g.NeighborIDs("hub")
	require.NoError(err)
	require.Equal([]string{"c", "a", "b"}, nbrs, "neighbors follow insertion index")

	_, err = s.g.NeighborIDs("")
	require.ErrorIs(err, core.ErrEmptyVertexID)
	_, err = s.g.NeighborIDs("missing")
	require.ErrorIs(err, core.ErrVertexNotFound)
}

func (s *GraphSuite) TestStatsAndAdjacencyList() {
	require := require.New(s.T())
	_, err := s.g.AddEdge("A", "B")
	require.NoError(err)
	_, err = s.g.AddEdge("B", "C")
	require.NoError(err)
	require.NoError(s.g.AddVertex("D"))

	st := s.g.Stats()
	require.Equal(core.GraphStats{Directed: false, VertexCount: 4, EdgeCount: 2}, *st)
	require.False(s.g.Directed())

	adj := s.g.AdjacencyList()
	require.Len(adj, 4)
	require.Equal([]string{"A", "C"}, adj["B"])
	require.Equal([]string{"B"}, adj["C"])
	require.Empty(adj["D"], "isolated vertices are listed with no contacts")
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphSuite))
}
