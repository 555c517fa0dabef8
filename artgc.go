// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"

	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/logger"
	"github.com/spezifisch/artgc/remote"
	"github.com/spezifisch/artgc/subsonic"
	tviewcommand "github.com/spezifisch/tview-command"
	"github.com/spf13/viper"
)

var osExit = os.Exit  // A variable to allow mocking os.Exit in tests
var headlessMode bool // This can be set to true during tests
var testMode bool     // This can be set to true during tests, too

const DEVELOPMENT = "development"

// APIVersion is the OpenSubsonic API version we talk, communicated to the server
const APIVersion = "1.8.0"

// Name is the client name we tell the server
var Name string = "artgc"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

// initCommandHandler sets up tview-command as main input handler
func initCommandHandler(logger *logger.Logger) {
	tviewcommand.SetLogHandler(func(msg string) {
		logger.Print(msg)
	})

	configPath := viper.GetString("ui.commands")
	if configPath == "" {
		return
	}

	// Load the configuration file
	config, err := tviewcommand.LoadConfig(configPath)
	if err != nil || config == nil {
		logger.PrintError("Failed to load command-shortcut config", err)
	}
}

// stdoutLogger prints to stdout for the non-interactive modes.
type stdoutLogger struct{}

func (stdoutLogger) Print(s string) {
	fmt.Println(s)
}

func (stdoutLogger) Printf(s string, as ...interface{}) {
	fmt.Printf(s+"\n", as...)
}

func (stdoutLogger) PrintError(source string, err error) {
	fmt.Printf("Error(%s) -> %s\n", source, err)
}

// listGalleryStats loads every item, runs one pass with nothing on screen
// and prints what is left.
func listGalleryStats(items []galleryItem, loader *artLoader, out logger.LoggerInterface) {
	for _, item := range items {
		if _, err := loader.Load(item); err != nil {
			out.PrintError(item.Title, err)
			continue
		}
		out.Printf("%-40s %s", item.Title, item.Key())
	}

	report := loader.collector.Collect()
	out.Print(formatReport(report))
	loader.collector.Stats().Print(out)
}

// return codes:
// 0 - OK
// 1 - generic errors
// 2 - main config errors
func main() {
	// parse flags and config
	help := flag.Bool("help", false, "Print usage")
	enableDbus := flag.Bool("dbus", false, "expose the collector on the D-Bus session bus")
	list := flag.Bool("list", false, "load the gallery once, collect and print collector stats")
	dir := flag.String("dir", "", "gallery `directory` (overrides gallery.dir)")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")
	configFile := flag.String("config", "", "use config `file`")
	version := flag.Bool("version", false, "print the artgc version and exit")

	flag.Parse()
	if *help {
		fmt.Printf("USAGE: %s <args> [http[s]://[user:pass@]server:port]\n", os.Args[0])
		flag.Usage()
		osExit(0)
		return
	}
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok {
			Version = bi.Main.Version
		}
	}
	if *version {
		fmt.Printf("artgc %s\n", Version)
		osExit(0)
		return
	}

	// cpu/memprofile code straight from https://pkg.go.dev/runtime/pprof
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	// config gathering
	if len(flag.Args()) > 0 {
		if err := parseServerArg(flag.Arg(0)); err != nil {
			fmt.Println(err)
			fmt.Printf("Usage: %s <args> [http[s]://[user:pass@]server:port]\n", os.Args[0])
			osExit(1)
			return
		}
	}

	if err := readConfig(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read configuration from file '%s': %v\n", *configFile, err)
		osExit(2)
		return
	}
	gcCfg, err := gcConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid collector configuration: %v\n", err)
		osExit(2)
		return
	}

	logger := logger.Init()
	initCommandHandler(logger)

	if testMode {
		fmt.Println("Running in test mode for testing.")
		osExit(0)
		return
	}

	collector := gc.New(gcCfg, nil, logger)

	var connection *subsonic.Connection
	if viper.IsSet("server.host") {
		connection = subsonic.Init(logger)
		connection.SetClientInfo(Name, APIVersion)
		connection.Username = viper.GetString("auth.username")
		connection.Password = viper.GetString("auth.password")
		connection.Host = viper.GetString("server.host")
		connection.PlaintextAuth = viper.GetBool("auth.plaintext")
	}

	loader := &artLoader{
		collector:  collector,
		connection: connection,
		coverSize:  viper.GetInt("gallery.cover-size"),
		logger:     logger,
	}

	galleryDir := viper.GetString("gallery.dir")
	if *dir != "" {
		galleryDir = *dir
	}
	albumCount := viper.GetInt("gallery.album-count")

	items, err := listGallery(connection, galleryDir, albumCount)
	if err != nil {
		fmt.Printf("Error listing gallery: %s\n", err)
		osExit(1)
		return
	}

	if *list {
		listGalleryStats(items, loader, stdoutLogger{})
		osExit(0)
		return
	}

	if headlessMode {
		fmt.Println("Running in headless mode for testing.")
		osExit(0)
		return
	}

	ui := InitGui(items, galleryDir, albumCount, collector, loader, logger)

	// init collector control over dbus (linux only but fails gracefully on other systems)
	if *enableDbus {
		ui.collectorService, err = remote.RegisterCollectorService(queuedControl{ui: ui}, logger)
		if err != nil {
			fmt.Printf("Unable to register collector with DBUS: %s\n", err)
			fmt.Println("Try running without -dbus")
			osExit(1)
			return
		}
	}

	// run main loop
	if err := ui.Run(); err != nil {
		panic(err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		runtime.GC()    // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
