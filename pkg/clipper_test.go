package pkg

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/las_clip/internal/clip"
	"github.com/ecopia-map/las_clip/internal/las"
	"github.com/ecopia-map/las_clip/tools"
)

const (
	lasHeaderSize  = 227
	lasRecordSize  = 20
	lasTestScale   = 0.001
	shapefileCode  = 9994
	shapefileMagic = 1000
)

// writeTestLas builds a minimal LAS 1.2 / point format 0 file. Intensity
// carries the point index so the kept subset can be traced back to input
// positions after a clip.
func writeTestLas(t *testing.T, path string, coords [][3]float64) {
	t.Helper()

	head := make([]byte, lasHeaderSize)
	copy(head[0:], "LASF")
	head[24] = 1 // version major
	head[25] = 2 // version minor
	binary.LittleEndian.PutUint16(head[94:], lasHeaderSize)
	binary.LittleEndian.PutUint32(head[96:], lasHeaderSize)
	head[104] = 0
	binary.LittleEndian.PutUint16(head[105:], lasRecordSize)
	binary.LittleEndian.PutUint32(head[107:], uint32(len(coords)))
	binary.LittleEndian.PutUint32(head[111:], uint32(len(coords)))
	for axis := 0; axis < 3; axis++ {
		binary.LittleEndian.PutUint64(head[131+8*axis:], math.Float64bits(lasTestScale))
		binary.LittleEndian.PutUint64(head[155+8*axis:], math.Float64bits(0))
	}

	minV := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	var records []byte
	for i, c := range coords {
		record := make([]byte, lasRecordSize)
		for axis := 0; axis < 3; axis++ {
			raw := int32(math.Round(c[axis] / lasTestScale))
			binary.LittleEndian.PutUint32(record[4*axis:], uint32(raw))
			minV[axis] = math.Min(minV[axis], c[axis])
			maxV[axis] = math.Max(maxV[axis], c[axis])
		}
		binary.LittleEndian.PutUint16(record[12:], uint16(i))
		record[14] = 0x09
		records = append(records, record...)
	}
	for axis := 0; axis < 3; axis++ {
		binary.LittleEndian.PutUint64(head[179+16*axis:], math.Float64bits(maxV[axis]))
		binary.LittleEndian.PutUint64(head[179+16*axis+8:], math.Float64bits(minV[axis]))
	}

	require.NoError(t, os.WriteFile(path, append(head, records...), 0644))
}

// writeTestShapefile builds a .shp of polygon records, one per rings entry;
// each entry may carry extra rings (holes).
func writeTestShapefile(t *testing.T, path string, polygons [][][][2]float64) {
	t.Helper()

	var body []byte
	for i, rings := range polygons {
		content := binary.LittleEndian.AppendUint32(nil, 5) // polygon
		content = append(content, make([]byte, 32)...)      // box

		numPoints := 0
		var closed [][][2]float64
		for _, ring := range rings {
			c := append(append([][2]float64{}, ring...), ring[0])
			closed = append(closed, c)
			numPoints += len(c)
		}
		content = binary.LittleEndian.AppendUint32(content, uint32(len(closed)))
		content = binary.LittleEndian.AppendUint32(content, uint32(numPoints))
		start := 0
		for _, ring := range closed {
			content = binary.LittleEndian.AppendUint32(content, uint32(start))
			start += len(ring)
		}
		for _, ring := range closed {
			for _, v := range ring {
				content = binary.LittleEndian.AppendUint64(content, math.Float64bits(v[0]))
				content = binary.LittleEndian.AppendUint64(content, math.Float64bits(v[1]))
			}
		}

		header := make([]byte, 8)
		binary.BigEndian.PutUint32(header[0:], uint32(i+1))
		binary.BigEndian.PutUint32(header[4:], uint32(len(content)/2))
		body = append(body, header...)
		body = append(body, content...)
	}

	head := make([]byte, 100)
	binary.BigEndian.PutUint32(head[0:], shapefileCode)
	binary.BigEndian.PutUint32(head[24:], uint32((100+len(body))/2))
	binary.LittleEndian.PutUint32(head[28:], shapefileMagic)
	binary.LittleEndian.PutUint32(head[32:], 5)

	require.NoError(t, os.WriteFile(path, append(head, body...), 0644))
}

func square(x0, y0, size float64) [][2]float64 {
	return [][2]float64{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}}
}

// keptIndexes decodes the output file and maps every record back to its
// input position through the intensity field.
func keptIndexes(t *testing.T, path string) []int {
	t.Helper()
	lf, err := las.NewLasFile(path, "r")
	require.NoError(t, err)
	defer lf.Close()

	var indexes []int
	var points []las.Point
	for {
		var more bool
		points, more, err = lf.ReadBatch(100, points)
		require.NoError(t, err)
		if !more {
			break
		}
	}
	for _, p := range points {
		indexes = append(indexes, int(binary.LittleEndian.Uint16(p.Raw[12:])))
	}
	return indexes
}

func defaultOpts() *clip.Options {
	return &clip.Options{
		Strategy: clip.Union,
		// Tiny batches and several workers so ordering across batch
		// boundaries is actually exercised.
		ChunkSize:  2,
		NumWorkers: 4,
	}
}

func TestClipUnion(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")

	coords := [][3]float64{
		{5, 5, 1},   // inside A
		{15, 5, 1},  // outside both
		{5, 15, 1},  // outside both
		{9, 9, 2},   // inside A
		{25, 5, 3},  // inside B
		{-1, -1, 0}, // outside both
		{25, 9, 3},  // inside B
	}
	writeTestLas(t, inPath, coords)
	writeTestShapefile(t, shpPath, [][][][2]float64{
		{square(0, 0, 10)},
		{square(20, 0, 10)},
	})

	summary, err := Clip(inPath, shpPath, outPath, defaultOpts())
	require.NoError(t, err)

	assert.Equal(t, uint64(7), summary.PointsRead)
	assert.Equal(t, uint64(4), summary.PointsKept)
	assert.Equal(t, 2, summary.PolygonCount)
	assert.Equal(t, 0, summary.DroppedRings)
	assert.Empty(t, summary.Notices)

	// Order preservation: kept points keep their relative input order.
	assert.Empty(t, cmp.Diff([]int{0, 3, 4, 6}, keptIndexes(t, outPath)))
}

func TestClipExternal(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")

	coords := [][3]float64{{5, 5, 1}, {15, 5, 1}, {5, 15, 1}}
	writeTestLas(t, inPath, coords)
	writeTestShapefile(t, shpPath, [][][][2]float64{{square(0, 0, 10)}})

	opts := defaultOpts()
	opts.External = true
	summary, err := Clip(inPath, shpPath, outPath, opts)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), summary.PointsKept)
	assert.Empty(t, cmp.Diff([]int{1, 2}, keptIndexes(t, outPath)))
}

func TestClipIntersection(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")

	coords := [][3]float64{
		{7, 5, 1},  // inside both
		{2, 5, 1},  // inside A only
		{12, 5, 1}, // inside B only
		{20, 5, 1}, // inside neither
	}
	writeTestLas(t, inPath, coords)
	writeTestShapefile(t, shpPath, [][][][2]float64{
		{square(0, 0, 10)},
		{square(5, 0, 10)},
	})

	opts := defaultOpts()
	opts.Strategy = clip.Intersection
	summary, err := Clip(inPath, shpPath, outPath, opts)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), summary.PointsKept)
	assert.Empty(t, cmp.Diff([]int{0}, keptIndexes(t, outPath)))
}

// Clipping an already clipped output against the same polygon set removes
// nothing further and reproduces the file byte for byte.
func TestClipIdempotence(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")
	againPath := filepath.Join(dir, "again.las")

	coords := [][3]float64{
		{5, 5, 1}, {15, 5, 1}, {9, 1, 2}, {0.5, 0.5, 0}, {10.5, 5, 1},
	}
	writeTestLas(t, inPath, coords)
	writeTestShapefile(t, shpPath, [][][][2]float64{{square(0, 0, 10)}})

	first, err := Clip(inPath, shpPath, outPath, defaultOpts())
	require.NoError(t, err)

	second, err := Clip(outPath, shpPath, againPath, defaultOpts())
	require.NoError(t, err)

	assert.Equal(t, first.PointsKept, second.PointsRead)
	assert.Equal(t, first.PointsKept, second.PointsKept)

	outBytes, err := os.ReadFile(outPath)
	require.NoError(t, err)
	againBytes, err := os.ReadFile(againPath)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(outBytes, againBytes))
}

func TestClipDroppedRingsReported(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")

	coords := [][3]float64{
		{5, 5, 1}, // inside the hole: still kept, holes are not evaluated
		{1, 1, 1}, // inside the outer ring proper
		{15, 5, 1},
	}
	writeTestLas(t, inPath, coords)
	writeTestShapefile(t, shpPath, [][][][2]float64{
		{square(0, 0, 10), square(4, 4, 2)},
	})

	summary, err := Clip(inPath, shpPath, outPath, defaultOpts())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DroppedRings)
	assert.Len(t, summary.Notices, 1)
	assert.Equal(t, uint64(2), summary.PointsKept)
	assert.Empty(t, cmp.Diff([]int{0, 1}, keptIndexes(t, outPath)))
}

func TestClipTruncatedInput(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")

	writeTestLas(t, inPath, [][3]float64{{5, 5, 1}, {6, 6, 1}})
	// Declare far more records than the file holds.
	raw, err := os.ReadFile(inPath)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(raw[107:], 1000)
	require.NoError(t, os.WriteFile(inPath, raw, 0644))
	writeTestShapefile(t, shpPath, [][][][2]float64{{square(0, 0, 10)}})

	_, err = Clip(inPath, shpPath, outPath, defaultOpts())
	var truncErr *clip.TruncatedFileError
	require.ErrorAs(t, err, &truncErr)
}

// The orchestrator must not leave a partial output behind on failure.
func TestRunClipperRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "poly.shp")
	outPath := filepath.Join(dir, "out.las")

	writeTestLas(t, inPath, [][3]float64{{5, 5, 1}})
	raw, err := os.ReadFile(inPath)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(raw[107:], 1000)
	require.NoError(t, os.WriteFile(inPath, raw, 0644))
	writeTestShapefile(t, shpPath, [][][][2]float64{{square(0, 0, 10)}})

	opts := defaultOpts()
	opts.Input = inPath
	opts.Shapefile = shpPath
	opts.Output = outPath
	opts.Overwrite = true

	err = NewClipper(tools.NewStandardFileFinder()).RunClipper(opts)
	require.Error(t, err)
	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "partial output should have been removed")
}

func TestClipUnsupportedGeometryAborts(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.las")
	shpPath := filepath.Join(dir, "lines.shp")
	outPath := filepath.Join(dir, "out.las")

	writeTestLas(t, inPath, [][3]float64{{5, 5, 1}})

	// One polyline record.
	content := binary.LittleEndian.AppendUint32(nil, 3)
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:], 1)
	binary.BigEndian.PutUint32(header[4:], uint32(len(content)/2))
	head := make([]byte, 100)
	binary.BigEndian.PutUint32(head[0:], shapefileCode)
	binary.LittleEndian.PutUint32(head[28:], shapefileMagic)
	raw := append(head, append(header, content...)...)
	require.NoError(t, os.WriteFile(shpPath, raw, 0644))

	_, err := Clip(inPath, shpPath, outPath, defaultOpts())
	var geomErr *clip.UnsupportedGeometryError
	require.ErrorAs(t, err, &geomErr)

	// Rejected before any output is written.
	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}
