package shp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ecopia-map/las_clip/internal/clip"
	"github.com/ecopia-map/las_clip/internal/geometry"
)

// ESRI shapefile constants. The 100 byte main file header mixes byte
// orders: the file code and record headers are big endian, everything
// else little endian.
const (
	shapefileCode    = 9994
	shapefileVersion = 1000

	mainHeaderLength   = 100
	recordHeaderLength = 8
)

// Shape type tags. Only the polygon family is accepted; Z and M variants
// carry extra measure arrays after the rings that the loader skips.
const (
	ShapeNull     int32 = 0
	ShapePolygon  int32 = 5
	ShapePolygonZ int32 = 15
	ShapePolygonM int32 = 25
)

// Result of loading a polygon shapefile. DroppedRings counts the interior
// or extra rings that were discarded: only the first ring of each polygon
// record bounds the clip, holes are intentionally not evaluated.
type PolygonFile struct {
	Polygons     *geometry.PolygonSet
	DroppedRings int
}

// LoadPolygons decodes all polygon records of the shapefile at fileName
// into a PolygonSet. The load is synchronous, polygon data is small next
// to the point cloud it clips. Non polygon records make the whole file
// unusable (*clip.UnsupportedGeometryError); malformed structure is a
// *clip.FormatError.
func LoadPolygons(fileName string) (*PolygonFile, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, &clip.IOError{Path: fileName, Op: "open", Err: err}
	}
	defer f.Close()

	head := make([]byte, mainHeaderLength)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, &clip.FormatError{Path: fileName, Reason: "file too short for a shapefile header"}
	}
	if code := int32(binary.BigEndian.Uint32(head[0:])); code != shapefileCode {
		return nil, &clip.FormatError{Path: fileName, Reason: fmt.Sprintf("bad file code %d, want %d", code, shapefileCode)}
	}
	if version := int32(binary.LittleEndian.Uint32(head[28:])); version != shapefileVersion {
		return nil, &clip.FormatError{Path: fileName, Reason: fmt.Sprintf("unsupported shapefile version %d", version)}
	}

	result := &PolygonFile{Polygons: &geometry.PolygonSet{}}

	recordHeader := make([]byte, recordHeaderLength)
	for recordIndex := 1; ; recordIndex++ {
		if _, err := io.ReadFull(f, recordHeader); err != nil {
			if err == io.EOF {
				break
			}
			return nil, &clip.FormatError{Path: fileName, Reason: fmt.Sprintf("short record header at record %d", recordIndex)}
		}

		// Content length is in 16 bit words.
		contentLength := int(binary.BigEndian.Uint32(recordHeader[4:])) * 2
		if contentLength < 4 {
			return nil, &clip.FormatError{Path: fileName, Reason: fmt.Sprintf("record %d content too short", recordIndex)}
		}
		content := make([]byte, contentLength)
		if _, err := io.ReadFull(f, content); err != nil {
			return nil, &clip.FormatError{Path: fileName, Reason: fmt.Sprintf("short record content at record %d", recordIndex)}
		}

		shapeType := int32(binary.LittleEndian.Uint32(content[0:]))
		switch shapeType {
		case ShapeNull:
			continue
		case ShapePolygon, ShapePolygonZ, ShapePolygonM:
			polygon, dropped, err := decodePolygon(content, fileName, recordIndex)
			if err != nil {
				return nil, err
			}
			result.Polygons.Polygons = append(result.Polygons.Polygons, polygon)
			result.DroppedRings += dropped
		default:
			return nil, &clip.UnsupportedGeometryError{Path: fileName, Record: recordIndex, ShapeType: shapeType}
		}
	}

	return result, nil
}

// Decodes one polygon record: shape type, box, numParts, numPoints, the
// parts index array, then numPoints x/y pairs. Z/M measure arrays of the
// PolygonZ/PolygonM variants trail the rings and are ignored.
func decodePolygon(content []byte, fileName string, recordIndex int) (*geometry.Polygon, int, error) {
	malformed := func(reason string) error {
		return &clip.FormatError{Path: fileName, Reason: fmt.Sprintf("record %d: %s", recordIndex, reason)}
	}

	// shape type (4) + box (32) + numParts (4) + numPoints (4)
	if len(content) < 44 {
		return nil, 0, malformed("polygon record too short")
	}
	numParts := int(int32(binary.LittleEndian.Uint32(content[36:])))
	numPoints := int(int32(binary.LittleEndian.Uint32(content[40:])))
	if numParts < 1 || numPoints < 3 {
		return nil, 0, malformed(fmt.Sprintf("polygon with %d parts and %d points", numParts, numPoints))
	}
	pointsStart := 44 + 4*numParts
	if len(content) < pointsStart+16*numPoints {
		return nil, 0, malformed("polygon record shorter than declared parts and points")
	}

	parts := make([]int, numParts+1)
	for i := 0; i < numParts; i++ {
		parts[i] = int(int32(binary.LittleEndian.Uint32(content[44+4*i:])))
	}
	parts[numParts] = numPoints

	rings := make([][]geometry.Vertex, 0, numParts)
	for i := 0; i < numParts; i++ {
		start, end := parts[i], parts[i+1]
		if start < 0 || end > numPoints || start >= end {
			return nil, 0, malformed(fmt.Sprintf("ring %d bounds [%d,%d) out of range", i, start, end))
		}
		ring := make([]geometry.Vertex, 0, end-start)
		for j := start; j < end; j++ {
			off := pointsStart + 16*j
			ring = append(ring, geometry.Vertex{
				X: math.Float64frombits(binary.LittleEndian.Uint64(content[off:])),
				Y: math.Float64frombits(binary.LittleEndian.Uint64(content[off+8:])),
			})
		}
		// Shapefile rings repeat the first vertex as an explicit closure;
		// the in-memory ring is implicitly closed, so trim it.
		if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		if len(ring) < 3 {
			return nil, 0, malformed(fmt.Sprintf("ring %d has fewer than 3 distinct vertices", i))
		}
		rings = append(rings, ring)
	}

	// First ring only: holes and any additional outer rings are dropped,
	// reported through PolygonFile.DroppedRings.
	return geometry.NewPolygon(rings[0], rings[1:]), len(rings) - 1, nil
}
