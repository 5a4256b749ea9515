package geometry

// Ray casting (even-odd rule) point in polygon test, after
// https://www.ecse.rpi.edu/Homepages/wrf/Research/Short_Notes/pnpoly.html

// Contains reports whether the point (x, y) lies inside the polygon's outer
// ring. A semi-infinite horizontal ray is cast from the point and edge
// crossings are counted; an odd count means inside.
//
// The crossing test is half open in y: an edge counts only when one
// endpoint is strictly above the ray and the other is not, so a vertex
// shared by two adjacent edges is never counted twice and horizontal edges
// never count. Points exactly on the boundary may resolve either way, but
// always the same way for the same inputs.
func (pg *Polygon) Contains(x, y float64) bool {
	if len(pg.Ring) < 3 {
		return false
	}
	if pg.bbox != nil && !pg.bbox.ContainsXY(x, y) {
		return false
	}
	a := pg.Ring[len(pg.Ring)-1]
	in := false
	for _, b := range pg.Ring {
		if rayIntersectsSegment(x, y, a, b) {
			in = !in
		}
		a = b
	}
	return in
}

func rayIntersectsSegment(x, y float64, a, b Vertex) bool {
	return (a.Y > y) != (b.Y > y) &&
		x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X
}
