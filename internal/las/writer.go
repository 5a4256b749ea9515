package las

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/shopspring/decimal"

	"github.com/ecopia-map/las_clip/internal/clip"
)

// LasWriter re-encodes a stream of kept points into a new LAS file. The
// source file's header block and variable length records are replicated
// byte for byte; point records are appended in the exact layout they were
// read in. Close seeks back and patches the point count, the per return
// counts and the bounding box, so the finished file always declares
// exactly the records it holds.
type LasWriter struct {
	fileName string
	f        *os.File
	w        *bufio.Writer
	header   LasHeader

	written  uint64
	byReturn [5]uint64

	// Bounds are accumulated in decimal arithmetic. LAS scale factors are
	// decimal values (0.001 and friends) that binary floats cannot
	// represent exactly; recomputing min/max from the raw integers keeps
	// the declared bounding box faithful to the records.
	scale   [3]decimal.Decimal
	offset  [3]decimal.Decimal
	minimum [3]decimal.Decimal
	maximum [3]decimal.Decimal
}

// InitializeUsingFile creates a new LAS file at fileName that inherits the
// header and variable length records of src. Point records are added with
// AddLasPoint; the file is not valid until Close has patched the header.
func InitializeUsingFile(fileName string, src *LasFile) (*LasWriter, error) {
	f, err := os.Create(fileName)
	if err != nil {
		return nil, &clip.IOError{Path: fileName, Op: "create", Err: err}
	}

	w := bufio.NewWriterSize(f, 64*1024)
	if _, err := w.Write(src.prelude); err != nil {
		f.Close()
		return nil, &clip.IOError{Path: fileName, Op: "write", Err: err}
	}

	lw := &LasWriter{
		fileName: fileName,
		f:        f,
		w:        w,
		header:   src.Header,
	}
	lw.scale[0] = decimal.NewFromFloat(src.Header.XScale)
	lw.scale[1] = decimal.NewFromFloat(src.Header.YScale)
	lw.scale[2] = decimal.NewFromFloat(src.Header.ZScale)
	lw.offset[0] = decimal.NewFromFloat(src.Header.XOffset)
	lw.offset[1] = decimal.NewFromFloat(src.Header.YOffset)
	lw.offset[2] = decimal.NewFromFloat(src.Header.ZOffset)
	return lw, nil
}

// AddLasPoint appends one point record, passing the raw record bytes
// through unchanged.
func (lw *LasWriter) AddLasPoint(p Point) error {
	if _, err := lw.w.Write(p.Raw); err != nil {
		return &clip.IOError{Path: lw.fileName, Op: "write", Err: err}
	}

	if r := p.ReturnNumber(); r >= 1 && r <= 5 {
		lw.byReturn[r-1]++
	}
	raw := [3]int64{int64(p.RawX()), int64(p.RawY()), int64(p.RawZ())}
	for axis := 0; axis < 3; axis++ {
		v := decimal.NewFromInt(raw[axis]).Mul(lw.scale[axis]).Add(lw.offset[axis])
		if lw.written == 0 {
			lw.minimum[axis], lw.maximum[axis] = v, v
			continue
		}
		if v.LessThan(lw.minimum[axis]) {
			lw.minimum[axis] = v
		}
		if v.GreaterThan(lw.maximum[axis]) {
			lw.maximum[axis] = v
		}
	}

	lw.written++
	return nil
}

// PointsWritten returns the number of records added so far.
func (lw *LasWriter) PointsWritten() uint64 {
	return lw.written
}

// Close flushes buffered records and patches the header fields that depend
// on the final record set. When no point was kept the source bounding box
// is left in place, there is nothing to recompute it from.
func (lw *LasWriter) Close() error {
	if lw.f == nil {
		return nil
	}
	defer func() { lw.f = nil }()

	if err := lw.w.Flush(); err != nil {
		lw.f.Close()
		return &clip.IOError{Path: lw.fileName, Op: "write", Err: err}
	}

	patch := make([]byte, 0, 24+48)
	patch = binary.LittleEndian.AppendUint32(patch, uint32(lw.written))
	for i := 0; i < 5; i++ {
		patch = binary.LittleEndian.AppendUint32(patch, uint32(lw.byReturn[i]))
	}
	if _, err := lw.f.WriteAt(patch, offsetNumberPoints); err != nil {
		lw.f.Close()
		return &clip.IOError{Path: lw.fileName, Op: "write", Err: err}
	}

	if lw.written > 0 {
		bbox := make([]byte, 0, 48)
		for axis := 0; axis < 3; axis++ {
			bbox = binary.LittleEndian.AppendUint64(bbox, math.Float64bits(lw.maximum[axis].InexactFloat64()))
			bbox = binary.LittleEndian.AppendUint64(bbox, math.Float64bits(lw.minimum[axis].InexactFloat64()))
		}
		if _, err := lw.f.WriteAt(bbox, offsetBoundingBox); err != nil {
			lw.f.Close()
			return &clip.IOError{Path: lw.fileName, Op: "write", Err: err}
		}
	}

	if err := lw.f.Close(); err != nil {
		return &clip.IOError{Path: lw.fileName, Op: "close", Err: err}
	}
	return nil
}
