// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/loom/main.go
// Summary: Loom command entrypoint.
// Usage: Run `loom [files...]` to open a tiled terminal workspace;
// any file arguments are opened as editor tabs.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/avhagen/loom/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("loom", flag.ContinueOnError)

	fromScratch := fs.Bool("from-scratch", false, "Start fresh, ignoring any saved workspace")
	snapshotPath := fs.String("snapshot", "", "Path to the workspace database (default: under user config dir)")
	logPath := fs.String("log", "", "File to append logs to (default: discard)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err == nil {
			defer devnull.Close()
			log.SetOutput(devnull)
		}
	}

	cfg := config.System()
	if err := config.Err(); err != nil {
		log.Printf("[loom] config load: %v", err)
	}

	if *snapshotPath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		*snapshotPath = filepath.Join(configDir, "loom", "workspace.db")
	}

	a, err := newApp(cfg, *snapshotPath, *fromScratch)
	if err != nil {
		return err
	}
	defer a.shutdown()

	for _, path := range fs.Args() {
		if err := a.files.Open(path); err != nil {
			log.Printf("[loom] cannot open %s: %v", path, err)
		}
	}

	return a.eventLoop()
}
