package clip

import "fmt"

// Summary reports the outcome of a completed clip run. Non fatal notices
// (dropped interior rings and the like) travel here rather than as errors
// so that a documented limitation does not interrupt normal operation.
type Summary struct {
	PointsRead   uint64
	PointsKept   uint64
	PolygonCount int
	DroppedRings int
	Notices      []string
}

func (s *Summary) AddNotice(format string, args ...interface{}) {
	s.Notices = append(s.Notices, fmt.Sprintf(format, args...))
}

func (s *Summary) String() string {
	return fmt.Sprintf("points_read:%d points_kept:%d polygons:%d dropped_rings:%d",
		s.PointsRead, s.PointsKept, s.PolygonCount, s.DroppedRings)
}
