package geometry

// Vertex is a 2D polygon vertex. Point elevation plays no role in the
// clip test, polygons are evaluated on the X,Y plane only.
type Vertex struct {
	X float64
	Y float64
}

// Polygon is a simple polygon described by its outer ring. The ring is
// implicitly closed: the last vertex connects back to the first, no
// explicit closure vertex is stored. Interior rings (holes) read from the
// source file are retained for inspection but are never evaluated.
type Polygon struct {
	Ring  []Vertex
	Holes [][]Vertex

	bbox *BoundingBox
}

// Builds a new Polygon from its outer ring, precomputing the ring bounding
// box used to short circuit the containment test.
func NewPolygon(ring []Vertex, holes [][]Vertex) *Polygon {
	p := &Polygon{Ring: ring, Holes: holes}
	if len(ring) > 0 {
		bbox := &BoundingBox{
			Xmin: ring[0].X, Xmax: ring[0].X,
			Ymin: ring[0].Y, Ymax: ring[0].Y,
		}
		for _, v := range ring[1:] {
			if v.X < bbox.Xmin {
				bbox.Xmin = v.X
			}
			if v.X > bbox.Xmax {
				bbox.Xmax = v.X
			}
			if v.Y < bbox.Ymin {
				bbox.Ymin = v.Y
			}
			if v.Y > bbox.Ymax {
				bbox.Ymax = v.Y
			}
		}
		p.bbox = bbox
	}
	return p
}

// PolygonSet is the clip boundary: the set of polygons loaded from the
// shapefile. It is built once, never mutated afterwards, and therefore safe
// for concurrent reads from classification workers.
type PolygonSet struct {
	Polygons []*Polygon
}

func (s *PolygonSet) Len() int {
	return len(s.Polygons)
}

// ContainsUnion reports whether the point lies inside at least one polygon
// of the set.
func (s *PolygonSet) ContainsUnion(x, y float64) bool {
	for _, p := range s.Polygons {
		if p.Contains(x, y) {
			return true
		}
	}
	return false
}

// ContainsIntersection reports whether the point lies inside every polygon
// of the set. An empty set contains nothing.
func (s *PolygonSet) ContainsIntersection(x, y float64) bool {
	if len(s.Polygons) == 0 {
		return false
	}
	for _, p := range s.Polygons {
		if !p.Contains(x, y) {
			return false
		}
	}
	return true
}
