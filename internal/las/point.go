package las

import "encoding/binary"

// Byte offsets within a point data record common to formats 0-3.
const (
	recordOffsetX     = 0
	recordOffsetY     = 4
	recordOffsetZ     = 8
	recordOffsetFlags = 14
)

// Point is one decoded point data record. X,Y,Z are real world coordinates
// (raw integer * scale + offset). Raw holds the complete record bytes in
// the source layout; everything besides the coordinates (intensity,
// classification, returns, color, ...) is carried there without
// reinterpretation so the writer can pass it through unchanged.
type Point struct {
	X   float64
	Y   float64
	Z   float64
	Raw []byte
}

// RawX returns the scaled integer X coordinate as stored on disk.
func (p Point) RawX() int32 {
	return int32(binary.LittleEndian.Uint32(p.Raw[recordOffsetX:]))
}

func (p Point) RawY() int32 {
	return int32(binary.LittleEndian.Uint32(p.Raw[recordOffsetY:]))
}

func (p Point) RawZ() int32 {
	return int32(binary.LittleEndian.Uint32(p.Raw[recordOffsetZ:]))
}

// ReturnNumber extracts the return number (1-5) from the record flag byte.
func (p Point) ReturnNumber() int {
	return int(p.Raw[recordOffsetFlags] & 0x07)
}

func decodePoint(raw []byte, h *LasHeader) Point {
	x := int32(binary.LittleEndian.Uint32(raw[recordOffsetX:]))
	y := int32(binary.LittleEndian.Uint32(raw[recordOffsetY:]))
	z := int32(binary.LittleEndian.Uint32(raw[recordOffsetZ:]))
	return Point{
		X:   float64(x)*h.XScale + h.XOffset,
		Y:   float64(y)*h.YScale + h.YOffset,
		Z:   float64(z)*h.ZScale + h.ZOffset,
		Raw: raw,
	}
}
