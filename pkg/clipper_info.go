package pkg

import (
	"path/filepath"

	"github.com/golang/glog"

	"github.com/ecopia-map/las_clip/internal/clip"
	"github.com/ecopia-map/las_clip/internal/geometry"
	"github.com/ecopia-map/las_clip/internal/las"
	"github.com/ecopia-map/las_clip/tools"
)

// ClipperInfo implements the info command: it decodes a las file header,
// streams every point record and reports how many fall outside the bounds
// the header declares. Useful to sanity check inputs (and clip outputs)
// without writing anything.
type ClipperInfo struct {
	fileFinder tools.FileFinder
}

func NewClipperInfo(fileFinder tools.FileFinder) IClipper {
	return &ClipperInfo{
		fileFinder: fileFinder,
	}
}

func (info *ClipperInfo) RunClipper(opts *clip.Options) error {
	lasFiles := info.fileFinder.GetLasFilesToProcess(opts)

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	for _, filePath := range lasFiles {
		if err := info.inspectLasFile(filePath, chunkSize); err != nil {
			return err
		}
		glog.Infoln("> done processing", filepath.Base(filePath))
	}

	return nil
}

func (info *ClipperInfo) inspectLasFile(filePath string, chunkSize int) error {
	lasFile, err := las.NewLasFile(filePath, "r")
	if err != nil {
		return err
	}
	defer func() { _ = lasFile.Close() }()

	header := lasFile.Header
	tools.LogOutput(filepath.Base(filePath), header.String())
	glog.Infoln("las_file num_of_points:", header.NumberPoints)

	// Compare against the declared bounds with one scale step of slack per
	// axis, coordinates are only as precise as the quantization grid.
	bounds := header.Bounds().Expand(header.XScale, header.YScale, header.ZScale)

	outOfBounds := uint64(0)
	var points []las.Point
	var more bool
	for {
		points, more, err = lasFile.ReadBatch(chunkSize, points[:0])
		if err != nil {
			return err
		}
		for _, p := range points {
			if !bounds.Contains(geometry.Coordinate{X: p.X, Y: p.Y, Z: p.Z}) {
				outOfBounds++
				glog.V(1).Infof("point outside declared bounds X:[%f] Y:[%f] Z:[%f]", p.X, p.Y, p.Z)
			}
		}
		if !more {
			break
		}
	}

	tools.LogOutput("points:", lasFile.PointsRead(), "outside declared bounds:", outOfBounds)
	return nil
}
