package geometry

// Contains the X,Y,Z coordinates of a point in an arbitrary planar
// coordinate space. All inputs of a clip run are assumed to share one space.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// Axis aligned bounding box
type BoundingBox struct {
	Xmin float64
	Xmax float64
	Ymin float64
	Ymax float64
	Zmin float64
	Zmax float64
}

func NewBoundingBox(xmin, xmax, ymin, ymax, zmin, zmax float64) *BoundingBox {
	return &BoundingBox{
		Xmin: xmin,
		Xmax: xmax,
		Ymin: ymin,
		Ymax: ymax,
		Zmin: zmin,
		Zmax: zmax,
	}
}

// Returns true if the X,Y projection of the box contains the given planar point
func (b *BoundingBox) ContainsXY(x, y float64) bool {
	return x >= b.Xmin && x <= b.Xmax && y >= b.Ymin && y <= b.Ymax
}

// Returns true if the box contains the given coordinate on all three axes
func (b *BoundingBox) Contains(c Coordinate) bool {
	return b.ContainsXY(c.X, c.Y) && c.Z >= b.Zmin && c.Z <= b.Zmax
}

// Expand returns a copy of the box grown by the given slack per axis.
func (b *BoundingBox) Expand(dx, dy, dz float64) *BoundingBox {
	return NewBoundingBox(b.Xmin-dx, b.Xmax+dx, b.Ymin-dy, b.Ymax+dy, b.Zmin-dz, b.Zmax+dz)
}
