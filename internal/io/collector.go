package io

import (
	"sync"

	"github.com/ecopia-map/las_clip/internal/las"
)

// OrderedCollector drains classified batches and forwards the kept points
// to the las writer in strict input order: batches arriving ahead of their
// turn are parked until every earlier index has been written. With N
// consumers at most N batches are parked, keeping memory bounded by
// O(workers x chunk) regardless of cloud size.
type OrderedCollector struct {
	writer *las.LasWriter
	kept   uint64
}

func NewOrderedCollector(writer *las.LasWriter) *OrderedCollector {
	return &OrderedCollector{writer: writer}
}

// Collect runs until the results channel is closed. Write failures are
// submitted to errChan once; later batches are drained without writing so
// the producer and consumers never block.
func (c *OrderedCollector) Collect(results chan *ResultUnit, errChan chan error, wg *sync.WaitGroup) {
	defer wg.Done()

	pending := make(map[int]*ResultUnit)
	next := 0
	failed := false

	for unit := range results {
		pending[unit.Index] = unit
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if failed {
				continue
			}
			if err := c.writeUnit(ready); err != nil {
				errChan <- err
				failed = true
			}
		}
	}
}

func (c *OrderedCollector) writeUnit(unit *ResultUnit) error {
	for i, point := range unit.Points {
		if !unit.Keep[i] {
			continue
		}
		if err := c.writer.AddLasPoint(point); err != nil {
			return err
		}
		c.kept++
	}
	return nil
}

// Kept returns the number of points written so far.
func (c *OrderedCollector) Kept() uint64 {
	return c.kept
}
