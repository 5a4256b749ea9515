package pkg

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/las_clip/internal/clip"
	"github.com/ecopia-map/las_clip/internal/io"
	"github.com/ecopia-map/las_clip/internal/las"
	"github.com/ecopia-map/las_clip/internal/shp"
	"github.com/ecopia-map/las_clip/tools"
)

// Number of points read per batch when the caller does not say otherwise.
const DefaultChunkSize = 1000000

type IClipper interface {
	RunClipper(opts *clip.Options) error
}

type Clipper struct {
	fileFinder tools.FileFinder
}

func NewClipper(fileFinder tools.FileFinder) IClipper {
	return &Clipper{
		fileFinder: fileFinder,
	}
}

// Starts the clip process
func (clipper *Clipper) RunClipper(opts *clip.Options) error {
	lasFiles := clipper.fileFinder.GetLasFilesToProcess(opts)
	glog.Infoln("las_file list", lasFiles)

	if len(lasFiles) == 0 {
		return fmt.Errorf("no las files found in %q", opts.Input)
	}

	for i, filePath := range lasFiles {
		tools.LogOutput("Processing file " + strconv.Itoa(i+1) + "/" + strconv.Itoa(len(lasFiles)))

		outputPath := opts.Output
		if opts.FolderProcessing {
			outputPath = filepath.Join(opts.Output, filepath.Base(filePath))
		}
		if _, err := os.Stat(outputPath); err == nil && !opts.Overwrite {
			return fmt.Errorf("output file %q already exists, pass -y to overwrite", outputPath)
		}

		summary, err := Clip(filePath, opts.Shapefile, outputPath, opts)
		if err != nil {
			// Whatever was written so far is not a valid result.
			if removeErr := os.Remove(outputPath); removeErr != nil && !os.IsNotExist(removeErr) {
				glog.Infoln("could not remove partial output", outputPath, removeErr)
			}
			return err
		}

		tools.LogOutput("> done processing", filepath.Base(filePath), summary.String())
		for _, notice := range summary.Notices {
			tools.LogOutput("> notice:", notice)
		}
	}

	return nil
}

// Clip streams the point cloud at lasPath through the polygon set loaded
// from shpPath and writes the surviving points to outPath in the source
// layout. Single pass, forward-only: peak memory is bounded by the batch
// size times the number of classification workers, never by the cloud
// size. Output point order equals input point order restricted to the
// kept subset.
func Clip(lasPath, shpPath, outPath string, opts *clip.Options) (*clip.Summary, error) {
	polygonFile, err := shp.LoadPolygons(shpPath)
	if err != nil {
		return nil, err
	}
	glog.Infof("loaded %d polygon(s) from %q, %d ring(s) dropped",
		polygonFile.Polygons.Len(), shpPath, polygonFile.DroppedRings)

	lasFile, err := las.NewLasFile(lasPath, "r")
	if err != nil {
		return nil, err
	}
	defer func() { _ = lasFile.Close() }()
	glog.Infoln("las_file header:", lasFile.Header.String())

	lasWriter, err := las.InitializeUsingFile(outPath, lasFile)
	if err != nil {
		return nil, err
	}

	numWorkers := opts.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumers
	workChannel := make(chan *io.WorkUnit, numWorkers*5)
	resultChannel := make(chan *io.ResultUnit, numWorkers*5)

	// init channel where producer and collector can submit errors that prevented them to finish the job
	errorChannel := make(chan error, numWorkers+2)

	var producerWaitGroup sync.WaitGroup
	producerWaitGroup.Add(1)
	producer := io.NewStandardProducer(lasFile, chunkSize)
	go producer.Produce(workChannel, errorChannel, &producerWaitGroup)

	var consumerWaitGroup sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		consumerWaitGroup.Add(1)
		consumer := io.NewStandardConsumer(polygonFile.Polygons, opts.Strategy, opts.External)
		go consumer.Consume(workChannel, resultChannel, &consumerWaitGroup)
	}

	var collectorWaitGroup sync.WaitGroup
	collectorWaitGroup.Add(1)
	collector := io.NewOrderedCollector(lasWriter)
	go collector.Collect(resultChannel, errorChannel, &collectorWaitGroup)

	// wait for the producer and the consumers, then release the collector
	producerWaitGroup.Wait()
	consumerWaitGroup.Wait()
	close(resultChannel)
	collectorWaitGroup.Wait()

	close(errorChannel)
	for err := range errorChannel {
		_ = lasWriter.Close()
		return nil, err
	}

	if err := lasWriter.Close(); err != nil {
		return nil, err
	}

	summary := &clip.Summary{
		PointsRead:   lasFile.PointsRead(),
		PointsKept:   collector.Kept(),
		PolygonCount: polygonFile.Polygons.Len(),
		DroppedRings: polygonFile.DroppedRings,
	}
	if polygonFile.DroppedRings > 0 {
		summary.AddNotice("%d polygon ring(s) beyond the first were dropped, holes are not evaluated",
			polygonFile.DroppedRings)
	}
	return summary, nil
}
