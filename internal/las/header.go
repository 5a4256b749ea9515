package las

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ecopia-map/las_clip/internal/geometry"
)

// Field offsets within the LAS public header block. The block is little
// endian with fixed offsets; versions 1.0-1.2 use a 227 byte block, 1.3
// appends the waveform record pointer for a total of 235 bytes.
const (
	offsetFileSignature  = 0
	offsetVersionMajor   = 24
	offsetVersionMinor   = 25
	offsetHeaderSize     = 94
	offsetToPointData    = 96
	offsetNumberOfVLRs   = 100
	offsetPointFormatID  = 104
	offsetPointRecordLen = 105
	offsetNumberPoints   = 107
	offsetPointsByReturn = 111
	offsetScaleFactors   = 131
	offsetCoordOffsets   = 155
	offsetBoundingBox    = 179

	headerSizeV12 = 227
	headerSizeV13 = 235

	fileSignature = "LASF"
)

// Minimum point record lengths per point data record format 0-3. Records
// longer than the minimum carry extra bytes that are passed through opaque.
var minPointRecordLength = map[byte]uint16{
	0: 20,
	1: 28,
	2: 26,
	3: 34,
}

// LasHeader holds the decoded public header block of a LAS file.
type LasHeader struct {
	FileSignature      string
	VersionMajor       byte
	VersionMinor       byte
	HeaderSize         uint16
	OffsetToPoints     uint32
	NumberOfVLRs       uint32
	PointFormatID      byte
	PointRecordLength  uint16
	NumberPoints       uint32
	PointsByReturn     [5]uint32
	XScale, YScale     float64
	ZScale             float64
	XOffset, YOffset   float64
	ZOffset            float64
	MaxX, MinX         float64
	MaxY, MinY         float64
	MaxZ, MinZ         float64
}

// Bounds returns the bounding box the header declares.
func (h LasHeader) Bounds() *geometry.BoundingBox {
	return geometry.NewBoundingBox(h.MinX, h.MaxX, h.MinY, h.MaxY, h.MinZ, h.MaxZ)
}

func (h LasHeader) String() string {
	return fmt.Sprintf("LAS %d.%d format:%d record_length:%d num_of_points:%d bbox:[%f %f %f %f %f %f]",
		h.VersionMajor, h.VersionMinor, h.PointFormatID, h.PointRecordLength, h.NumberPoints,
		h.MinX, h.MaxX, h.MinY, h.MaxY, h.MinZ, h.MaxZ)
}

// Decodes the public header block from its raw bytes. The caller has
// already checked that at least headerSizeV12 bytes are present.
func decodeHeader(raw []byte) LasHeader {
	f64 := func(off int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(raw[off:]))
	}

	h := LasHeader{
		FileSignature:     string(raw[offsetFileSignature : offsetFileSignature+4]),
		VersionMajor:      raw[offsetVersionMajor],
		VersionMinor:      raw[offsetVersionMinor],
		HeaderSize:        binary.LittleEndian.Uint16(raw[offsetHeaderSize:]),
		OffsetToPoints:    binary.LittleEndian.Uint32(raw[offsetToPointData:]),
		NumberOfVLRs:      binary.LittleEndian.Uint32(raw[offsetNumberOfVLRs:]),
		PointFormatID:     raw[offsetPointFormatID],
		PointRecordLength: binary.LittleEndian.Uint16(raw[offsetPointRecordLen:]),
		NumberPoints:      binary.LittleEndian.Uint32(raw[offsetNumberPoints:]),
	}
	for i := 0; i < 5; i++ {
		h.PointsByReturn[i] = binary.LittleEndian.Uint32(raw[offsetPointsByReturn+4*i:])
	}
	h.XScale = f64(offsetScaleFactors)
	h.YScale = f64(offsetScaleFactors + 8)
	h.ZScale = f64(offsetScaleFactors + 16)
	h.XOffset = f64(offsetCoordOffsets)
	h.YOffset = f64(offsetCoordOffsets + 8)
	h.ZOffset = f64(offsetCoordOffsets + 16)
	h.MaxX = f64(offsetBoundingBox)
	h.MinX = f64(offsetBoundingBox + 8)
	h.MaxY = f64(offsetBoundingBox + 16)
	h.MinY = f64(offsetBoundingBox + 24)
	h.MaxZ = f64(offsetBoundingBox + 32)
	h.MinZ = f64(offsetBoundingBox + 40)
	return h
}

// validate enforces the header invariants the streaming code relies on.
// Returns a reason string usable in a FormatError, empty when the header
// is sound.
func (h LasHeader) validate() string {
	if h.FileSignature != fileSignature {
		return fmt.Sprintf("bad file signature %q, want %q", h.FileSignature, fileSignature)
	}
	if h.VersionMajor != 1 || h.VersionMinor > 3 {
		return fmt.Sprintf("unsupported LAS version %d.%d", h.VersionMajor, h.VersionMinor)
	}
	if h.HeaderSize < headerSizeV12 {
		return fmt.Sprintf("header size %d below minimum %d", h.HeaderSize, headerSizeV12)
	}
	if uint32(h.HeaderSize) > h.OffsetToPoints {
		return fmt.Sprintf("point data offset %d overlaps header of size %d", h.OffsetToPoints, h.HeaderSize)
	}
	if h.XScale == 0 || h.YScale == 0 || h.ZScale == 0 {
		return fmt.Sprintf("zero coordinate scale factor [%g %g %g]", h.XScale, h.YScale, h.ZScale)
	}
	minLen, ok := minPointRecordLength[h.PointFormatID]
	if !ok {
		return fmt.Sprintf("unsupported point data record format %d", h.PointFormatID)
	}
	if h.PointRecordLength < minLen {
		return fmt.Sprintf("point record length %d below minimum %d for format %d",
			h.PointRecordLength, minLen, h.PointFormatID)
	}
	return ""
}
