package io

import (
	"sync"

	"github.com/ecopia-map/las_clip/internal/clip"
	"github.com/ecopia-map/las_clip/internal/geometry"
)

type StandardConsumer struct {
	polygons *geometry.PolygonSet
	strategy clip.Strategy
	external bool
}

func NewStandardConsumer(polygons *geometry.PolygonSet, strategy clip.Strategy, external bool) *StandardConsumer {
	return &StandardConsumer{
		polygons: polygons,
		strategy: strategy,
		external: external,
	}
}

// Classifies WorkUnits against the polygon set until the work channel is
// closed. The polygon set is shared read-only state, safe for any number
// of concurrent consumers.
func (c *StandardConsumer) Consume(work chan *WorkUnit, results chan *ResultUnit, wg *sync.WaitGroup) {
	defer wg.Done()

	for unit := range work {
		keep := make([]bool, len(unit.Points))
		for i, point := range unit.Points {
			keep[i] = c.classify(point.X, point.Y)
		}
		results <- &ResultUnit{Index: unit.Index, Points: unit.Points, Keep: keep}
	}
}

func (c *StandardConsumer) classify(x, y float64) bool {
	var inside bool
	if c.strategy == clip.Intersection {
		inside = c.polygons.ContainsIntersection(x, y)
	} else {
		inside = c.polygons.ContainsUnion(x, y)
	}
	return inside != c.external
}
