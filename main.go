/*
 * This file is part of the las_clip distribution.
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 */

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ecopia-map/las_clip/internal/clip"
	"github.com/ecopia-map/las_clip/pkg"
	"github.com/ecopia-map/las_clip/tools"
)

const VERSION = "0.3.1"

const logo = `
 _                   _ _
| | __ _ ___     ___| (_)_ __
| |/ _  / __|   / __| | | '_ \
| | (_| \__ \  | (__| | | |_) |
|_|\__,_|___/___\___|_|_| .__/
           |_____|      |_|
        Clips LAS point clouds with shapefile polygons
`

// Exit codes per error class, so scripts can tell a malformed input from a
// plain I/O failure.
const (
	exitOK = iota
	exitFailure
	exitFormatError
	exitUnsupportedGeometry
	exitTruncatedFile
	exitIOError
)

func main() {
	log.SetPrefix("[las_clip] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	tools.LoadEnvFile()

	flagsGlobal := tools.ParseFlagsGlobal()
	log.Println(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [clip|info].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandClip:
		mainCommandClip(args)
	case tools.CommandInfo:
		mainCommandInfo(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [clip|info]", cmd)
	}
}

func mainCommandClip(args []string) {
	flags := tools.ParseFlagsForCommandClip(args)

	if *flags.Help {
		showHelp()
		return
	}

	if *flags.Version {
		printVersion()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	opts := &clip.Options{
		Input:            *flags.Input,
		Shapefile:        *flags.Shapefile,
		Output:           *flags.Output,
		Strategy:         clip.ParseStrategy(*flags.Strategy),
		External:         *flags.External,
		ChunkSize:        *flags.ChunkSize,
		NumWorkers:       *flags.Threads,
		FolderProcessing: *flags.FolderProcessing,
		Recursive:        *flags.RecursiveFolderProcessing,
		Overwrite:        *flags.Overwrite,
		Command:          tools.CommandClip,
	}

	if msg, res := validateOptionsForCommandClip(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	// An existing single-file output needs an explicit go-ahead.
	if !opts.FolderProcessing && !opts.Overwrite {
		if _, err := os.Stat(opts.Output); err == nil {
			if !confirmOverwrite(opts.Output) {
				tools.LogOutput("Run cancelled.")
				return
			}
			opts.Overwrite = true
		}
	}

	err := pkg.NewClipper(tools.NewStandardFileFinder()).RunClipper(opts)
	if err != nil {
		log.Println("Error while clipping: ", err)
		os.Exit(exitCodeFor(err))
	}
	tools.LogOutput("Clip Completed")
}

func validateOptionsForCommandClip(opts *clip.Options) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if _, err := os.Stat(opts.Shapefile); os.IsNotExist(err) {
		return "Shapefile not found", false
	}
	if opts.Output == "" {
		return "Output path not specified", false
	}
	if opts.FolderProcessing {
		if _, err := os.Stat(opts.Output); os.IsNotExist(err) {
			return "Output folder not found", false
		}
	}
	if opts.Strategy == "" {
		return "strategy should be either UNION or INTERSECTION", false
	}

	return "", true
}

func mainCommandInfo(args []string) {
	flags := tools.ParseFlagsForCommandInfo(args)
	log.Println("flags", tools.FmtJSONString(flags))

	opts := &clip.Options{
		Input:            *flags.Input,
		ChunkSize:        *flags.ChunkSize,
		FolderProcessing: *flags.FolderProcessing,
		Recursive:        *flags.RecursiveFolderProcessing,
		Command:          tools.CommandInfo,
	}

	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		log.Fatal("Error parsing input parameters: Input file/folder not found")
	}

	err := pkg.NewClipperInfo(tools.NewStandardFileFinder()).RunClipper(opts)
	if err != nil {
		log.Println("Error while reading: ", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var formatErr *clip.FormatError
	var geometryErr *clip.UnsupportedGeometryError
	var truncatedErr *clip.TruncatedFileError
	var ioErr *clip.IOError

	switch {
	case errors.As(err, &formatErr):
		return exitFormatError
	case errors.As(err, &geometryErr):
		return exitUnsupportedGeometry
	case errors.As(err, &truncatedErr):
		return exitTruncatedFile
	case errors.As(err, &ioErr):
		return exitIOError
	}
	return exitFailure
}

func confirmOverwrite(path string) bool {
	fmt.Printf("Output file %q already exists.\n", path)
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Overwrite [y/n]: ")
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

func printLogo() {
	fmt.Print(logo + "\n")
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("las_clip is a tool that filters LAS point clouds so that only points falling inside (or outside) shapefile polygons survive")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
