package tools

import (
	"flag"
	"log"
)

const (
	CommandClip = "clip"
	CommandInfo = "info"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type ClipFlags struct {
	Input                     *string `json:"input"`
	Shapefile                 *string `json:"shapefile"`
	Strategy                  *string `json:"strategy"`
	External                  *bool
	ChunkSize                 *int `json:"chunk_size"`
	Threads                   *int
	FolderProcessing          *bool
	RecursiveFolderProcessing *bool
}

type FlagsForCommandClip struct {
	ClipFlags
	Output       *string
	Overwrite    *bool
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool
}

type FlagsForCommandInfo struct {
	ClipFlags
}

func ParseFlagsGlobal() FlagsGlobal {
	// No -v shorthand here, glog already owns it on the global flag set.
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of las_clip.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandClip(args []string) FlagsForCommandClip {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-clip", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input las file/folder.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output las file (or folder when -folder is set).")
	shapefile := defineStringFlagCommand(flagCommand, "shapefile", "p", "", "Specifies the shapefile that contains the clip polygons.")
	strategy := defineStringFlagCommand(flagCommand, "strategy", "", "UNION", "Polygon combination strategy, can be 'UNION' or 'INTERSECTION'. 'UNION' keeps points inside any polygon, 'INTERSECTION' keeps only points inside all of them.")
	external := defineBoolFlagCommand(flagCommand, "external", "e", false, "Keeps the points outside the polygons instead of the ones inside.")
	chunkSize := defineIntFlagCommand(flagCommand, "chunk-size", "c", 0, "Number of points read per iteration. 0 picks the default.")
	threads := defineIntFlagCommand(flagCommand, "threads", "n", 0, "Number of classification workers. 0 uses all available cores.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all las files from input folder. Input must be a folder if specified")
	recursiveFolderProcessing := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all .las files inside the subfolders")
	overwrite := defineBoolFlagCommand(flagCommand, "yes", "y", false, "Overwrites existing output files without asking.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of las_clip.")

	flagCommand.Parse(args)

	return FlagsForCommandClip{
		ClipFlags: ClipFlags{
			Input:                     input,
			Shapefile:                 shapefile,
			Strategy:                  strategy,
			External:                  external,
			ChunkSize:                 chunkSize,
			Threads:                   threads,
			FolderProcessing:          folderProcessing,
			RecursiveFolderProcessing: recursiveFolderProcessing,
		},
		Output:       output,
		Overwrite:    overwrite,
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Help:         help,
		Version:      version,
	}
}

func ParseFlagsForCommandInfo(args []string) FlagsForCommandInfo {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-info", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input las file/folder.")
	chunkSize := defineIntFlagCommand(flagCommand, "chunk-size", "c", 0, "Number of points read per iteration. 0 picks the default.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all las files from input folder. Input must be a folder if specified")
	recursiveFolderProcessing := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all .las files inside the subfolders")

	shapefile := ""
	strategy := "UNION"
	external := false
	threads := 1

	flagCommand.Parse(args)

	return FlagsForCommandInfo{
		ClipFlags: ClipFlags{
			Input:                     input,
			Shapefile:                 &shapefile,
			Strategy:                  &strategy,
			External:                  &external,
			ChunkSize:                 chunkSize,
			Threads:                   &threads,
			FolderProcessing:          folderProcessing,
			RecursiveFolderProcessing: recursiveFolderProcessing,
		},
	}
}

func defineStringFlag(name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flag.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
