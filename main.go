// ABOUTME: Entry point for the coderush-optimizer application
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI, TUI or server modes

// Package main provides the entry point for coderush-optimizer, a genetic
// algorithm that assigns competition tasks to a team of solvers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"coderush-optimizer/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	visual := flag.Bool("visual", false, "run in visual/interactive mode with live parameter tuning")
	serve := flag.Bool("serve", false, "run the HTTP API server")
	addr := flag.String("addr", ":8080", "listen address for -serve")
	authSecret := flag.String("auth-secret", os.Getenv("CODERUSH_AUTH_SECRET"), "HMAC secret for bearer tokens (empty disables auth)")
	seed := flag.Uint64("seed", 0, "RNG seed for reproducible runs (0 = random)")
	jsonOut := flag.Bool("json", false, "print the full result as JSON")
	debug := flag.Bool("debug", false, "enable debug logging to coderush-optimizer-debug.log")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 && !*serve {
		fmt.Println("Usage: coderush-optimizer [flags] <dataset.yaml>")
		fmt.Println("Example: coderush-optimizer -seed 42 testdata/dataset.yaml")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *serve {
		datasetPath := ""
		if len(args) == 1 {
			datasetPath = args[0]
		}

		if err := server.Run(server.Options{
			Addr:        *addr,
			DatasetPath: datasetPath,
			AuthSecret:  *authSecret,
		}); err != nil {
			log.Printf("Server error: %v", err)

			return 1
		}

		return 0
	}

	opts := RunOptions{
		DatasetPath: args[0],
		Seed:        *seed,
		JSONOutput:  *jsonOut,
		DebugLog:    *debug,
	}

	if *visual {
		if err := RunTUI(opts); err != nil {
			log.Printf("TUI error: %v", err)

			return 1
		}

		return 0
	}

	if err := RunCLI(opts); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
