package io

import (
	"github.com/ecopia-map/las_clip/internal/las"
)

// Contains one batch of point records to classify. Index is the position
// of the batch in the input stream; the collector uses it to restore input
// order before anything is written.
type WorkUnit struct {
	Index  int
	Points []las.Point
}

// Contains a classified batch: Keep[i] reports whether Points[i] survives
// the clip.
type ResultUnit struct {
	Index  int
	Points []las.Point
	Keep   []bool
}
