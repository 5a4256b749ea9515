package clip

import "fmt"

// FormatError reports an input file whose signature or structure is not the
// expected binary layout. Fatal, detected before any output is written.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid file format %q: %s", e.Path, e.Reason)
}

// UnsupportedGeometryError reports a shapefile feature that is not a simple
// closed polygon. The pipeline aborts rather than silently skipping the
// feature, a dropped geometry could produce a clip boundary the user did
// not intend.
type UnsupportedGeometryError struct {
	Path      string
	Record    int
	ShapeType int32
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("unsupported geometry type %d in record %d of %q: only polygon shapes are supported",
		e.ShapeType, e.Record, e.Path)
}

// TruncatedFileError reports a point cloud file whose header declares more
// point records than the file actually holds.
type TruncatedFileError struct {
	Path     string
	Expected uint64
	Actual   uint64
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("truncated file %q: header declares %d point records, found %d",
		e.Path, e.Expected, e.Actual)
}

// IOError reports an open/read/write failure at the OS boundary.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
