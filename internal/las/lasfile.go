package las

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ecopia-map/las_clip/internal/clip"
)

// LasFile reads a LAS point cloud file: the public header block is decoded
// eagerly, point data records are streamed forward-only, record by record.
// The whole file is never buffered.
type LasFile struct {
	fileName string
	f        *os.File
	r        *bufio.Reader

	// The raw header block plus variable length records, everything up to
	// the point data offset. Kept so a writer can replicate the source
	// header contract byte for byte.
	prelude []byte

	Header     LasHeader
	pointsRead uint64
}

// NewLasFile opens fileName and decodes its header. fileMode "r" prepares
// the file for point streaming, "rh" reads the header only. Returns
// *clip.FormatError when the signature, version or header invariants are
// violated and *clip.TruncatedFileError when the file is shorter than the
// point count it declares, both before any point is streamed.
func NewLasFile(fileName, fileMode string) (*LasFile, error) {
	if fileMode != "r" && fileMode != "rh" {
		return nil, fmt.Errorf("las: unsupported file mode %q", fileMode)
	}

	f, err := os.Open(fileName)
	if err != nil {
		return nil, &clip.IOError{Path: fileName, Op: "open", Err: err}
	}
	lf := &LasFile{fileName: fileName, f: f}

	if err := lf.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if fileMode == "rh" {
		return lf, nil
	}

	// Fail fast on truncation: the declared record count must fit in the
	// bytes that follow the point data offset.
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &clip.IOError{Path: fileName, Op: "stat", Err: err}
	}
	stride := uint64(lf.Header.PointRecordLength)
	available := uint64(0)
	if size := uint64(info.Size()); size > uint64(lf.Header.OffsetToPoints) {
		available = (size - uint64(lf.Header.OffsetToPoints)) / stride
	}
	if available < uint64(lf.Header.NumberPoints) {
		f.Close()
		return nil, &clip.TruncatedFileError{
			Path:     fileName,
			Expected: uint64(lf.Header.NumberPoints),
			Actual:   available,
		}
	}

	lf.r = bufio.NewReaderSize(f, 64*1024)
	return lf, nil
}

func (lf *LasFile) readHeader() error {
	head := make([]byte, headerSizeV12)
	if _, err := io.ReadFull(lf.f, head); err != nil {
		return &clip.FormatError{Path: lf.fileName, Reason: "file too short for a LAS header"}
	}
	header := decodeHeader(head)
	if reason := header.validate(); reason != "" {
		return &clip.FormatError{Path: lf.fileName, Reason: reason}
	}

	// Keep header plus VLR bytes for writers, then leave the descriptor
	// positioned at the first point record.
	prelude := make([]byte, header.OffsetToPoints)
	copy(prelude, head)
	if _, err := io.ReadFull(lf.f, prelude[len(head):]); err != nil {
		return &clip.FormatError{Path: lf.fileName, Reason: "file too short for declared point data offset"}
	}

	lf.Header = header
	lf.prelude = prelude
	return nil
}

// PointsRead returns the number of point records streamed so far.
func (lf *LasFile) PointsRead() uint64 {
	return lf.pointsRead
}

// ReadBatch reads up to n point data records and appends the decoded points
// to dst. Returns dst and true while records remain after this batch. The
// sequence is forward-only and non restartable.
func (lf *LasFile) ReadBatch(n int, dst []Point) ([]Point, bool, error) {
	remaining := uint64(lf.Header.NumberPoints) - lf.pointsRead
	if remaining == 0 {
		return dst, false, nil
	}
	if uint64(n) > remaining {
		n = int(remaining)
	}

	stride := int(lf.Header.PointRecordLength)
	buf := make([]byte, n*stride)
	if _, err := io.ReadFull(lf.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return dst, false, &clip.TruncatedFileError{
				Path:     lf.fileName,
				Expected: uint64(lf.Header.NumberPoints),
				Actual:   lf.pointsRead,
			}
		}
		return dst, false, &clip.IOError{Path: lf.fileName, Op: "read", Err: err}
	}

	for i := 0; i < n; i++ {
		dst = append(dst, decodePoint(buf[i*stride:(i+1)*stride], &lf.Header))
	}
	lf.pointsRead += uint64(n)
	return dst, lf.pointsRead < uint64(lf.Header.NumberPoints), nil
}

func (lf *LasFile) Close() error {
	if lf.f == nil {
		return nil
	}
	err := lf.f.Close()
	lf.f = nil
	return err
}
