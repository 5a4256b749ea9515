package io

import (
	"sync"

	"github.com/ecopia-map/las_clip/internal/las"
)

type StandardProducer struct {
	lasFile   *las.LasFile
	chunkSize int
}

func NewStandardProducer(lasFile *las.LasFile, chunkSize int) *StandardProducer {
	return &StandardProducer{
		lasFile:   lasFile,
		chunkSize: chunkSize,
	}
}

// Streams the point records of the las file into WorkUnits of at most
// chunkSize points and submits them to the work channel, preserving input
// order through the unit index. Closes the channel when the stream is
// exhausted or a read error occurred; errors are submitted to errChan and
// end production immediately.
func (p *StandardProducer) Produce(work chan *WorkUnit, errChan chan error, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(work)

	for index := 0; ; index++ {
		points, more, err := p.lasFile.ReadBatch(p.chunkSize, nil)
		if err != nil {
			errChan <- err
			return
		}
		if len(points) > 0 {
			work <- &WorkUnit{Index: index, Points: points}
		}
		if !more {
			return
		}
	}
}
