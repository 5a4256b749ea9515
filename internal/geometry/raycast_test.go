package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squarePolygon() *Polygon {
	return NewPolygon([]Vertex{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
	}, nil)
}

func TestContainsSquare(t *testing.T) {
	square := squarePolygon()

	tests := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"center", 5, 5, true},
		{"outside right", 15, 5, false},
		{"outside above", 5, 15, false},
		{"outside diagonal", -3, -3, false},
		{"near corner inside", 9.999, 9.999, true},
		{"near corner outside", 10.001, 10.001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, square.Contains(tt.x, tt.y))
		})
	}
}

// Points exactly on an edge or vertex may classify either way under the
// half-open convention, but the answer must never change between calls.
func TestContainsBoundaryDeterminism(t *testing.T) {
	square := squarePolygon()

	boundary := [][2]float64{
		{0, 5},   // left edge
		{10, 5},  // right edge
		{5, 0},   // bottom edge
		{5, 10},  // top edge
		{10, 10}, // vertex
		{0, 0},   // vertex
	}
	for _, pt := range boundary {
		first := square.Contains(pt[0], pt[1])
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, square.Contains(pt[0], pt[1]),
				"classification of (%v,%v) changed between runs", pt[0], pt[1])
		}
	}
}

func TestContainsDegenerateRing(t *testing.T) {
	assert.False(t, NewPolygon(nil, nil).Contains(0, 0))
	assert.False(t, NewPolygon([]Vertex{{0, 0}, {1, 1}}, nil).Contains(0.5, 0.5))
}

func TestContainsConcavePolygon(t *testing.T) {
	// U shaped: the notch between the prongs is outside.
	u := NewPolygon([]Vertex{
		{0, 0}, {12, 0}, {12, 10}, {8, 10}, {8, 4}, {4, 4}, {4, 10}, {0, 10},
	}, nil)

	assert.True(t, u.Contains(2, 8), "left prong")
	assert.True(t, u.Contains(10, 8), "right prong")
	assert.False(t, u.Contains(6, 8), "notch")
	assert.True(t, u.Contains(6, 2), "base")
}

// Interior rings are carried in the data model but never evaluated: a
// point inside a hole still counts as inside the polygon.
func TestContainsIgnoresHoles(t *testing.T) {
	hole := []Vertex{{4, 4}, {6, 4}, {6, 6}, {4, 6}}
	p := NewPolygon([]Vertex{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, [][]Vertex{hole})

	assert.True(t, p.Contains(5, 5))
	require.Len(t, p.Holes, 1)
}

func TestPolygonSetUnion(t *testing.T) {
	// Two disjoint squares.
	a := squarePolygon()
	b := NewPolygon([]Vertex{{20, 0}, {30, 0}, {30, 10}, {20, 10}}, nil)
	set := &PolygonSet{Polygons: []*Polygon{a, b}}

	assert.True(t, set.ContainsUnion(5, 5), "inside A only")
	assert.True(t, set.ContainsUnion(25, 5), "inside B only")
	assert.False(t, set.ContainsUnion(15, 5), "inside neither")
}

func TestPolygonSetIntersection(t *testing.T) {
	// Two overlapping squares sharing [5,10]x[0,10].
	a := squarePolygon()
	b := NewPolygon([]Vertex{{5, 0}, {15, 0}, {15, 10}, {5, 10}}, nil)
	set := &PolygonSet{Polygons: []*Polygon{a, b}}

	assert.True(t, set.ContainsIntersection(7, 5), "inside both")
	assert.False(t, set.ContainsIntersection(2, 5), "inside A only")
	assert.False(t, set.ContainsIntersection(12, 5), "inside B only")
	assert.False(t, set.ContainsIntersection(20, 5), "inside neither")

	empty := &PolygonSet{}
	assert.False(t, empty.ContainsIntersection(0, 0))
}

func TestBoundingBoxShortCircuit(t *testing.T) {
	square := squarePolygon()
	require.NotNil(t, square.bbox)
	assert.Equal(t, 0.0, square.bbox.Xmin)
	assert.Equal(t, 10.0, square.bbox.Xmax)

	// Far outside the box must be rejected, with the same answer the full
	// test would give.
	assert.False(t, square.Contains(1e9, 1e9))
}
