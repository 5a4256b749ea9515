package clip

import "strings"

type Strategy string

const (
	// Keep points falling inside any polygon of the set.
	Union Strategy = "UNION"

	// Keep only points falling inside every polygon of the set.
	Intersection Strategy = "INTERSECTION"
)

func (s Strategy) String() string {
	if s == Union {
		return "UNION"
	} else if s == Intersection {
		return "INTERSECTION"
	}
	return ""
}

func ParseStrategy(value string) Strategy {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "UNION" {
		return Union
	} else if normalizedValue == "INTERSECTION" {
		return Intersection
	}
	return ""
}

// Contains the options needed for the clip run
type Options struct {
	Input            string   // Input LAS file/folder
	Shapefile        string   // Shapefile containing the clip polygons
	Output           string   // Output LAS file (or folder in folder processing mode)
	Strategy         Strategy // Polygon set combination strategy
	External         bool     // Keep points outside the polygons instead of inside
	ChunkSize        int      // Number of points read per batch
	NumWorkers       int      // Number of classification workers, 0 means one per CPU
	FolderProcessing bool     // Enables the processing of all LAS files in folder
	Recursive        bool     // Recursive lookup of LAS files in subfolders
	Overwrite        bool     // Overwrite the output file without asking

	Command string
}

func (opt *Options) Copy() *Options {
	newOpt := *opt
	return &newOpt
}
