// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Built-in defaults applied over loaded configuration.

package config

import "os"

func applyDefaults(cfg Config) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cfg.RegisterDefaults("terminal", Section{
		"shell":      shell,
		"scrollback": 500,
	})
	cfg.RegisterDefaults("snapshot", Section{
		"enabled": true,
	})
	cfg.RegisterDefaults("ui", Section{
		"query_terminal_colors": true,
	})
}

// Shell returns the configured login shell.
func Shell(cfg Config) string {
	fallback := os.Getenv("SHELL")
	if fallback == "" {
		fallback = "/bin/sh"
	}
	return cfg.GetString("terminal", "shell", fallback)
}

// ScrollbackLines returns the configured per-terminal scrollback size.
func ScrollbackLines(cfg Config) int {
	return cfg.GetInt("terminal", "scrollback", 500)
}

// SnapshotEnabled reports whether workspace persistence is on.
func SnapshotEnabled(cfg Config) bool {
	return cfg.GetBool("snapshot", "enabled", true)
}

// QueryTerminalColors reports whether to probe the terminal for its
// default palette at startup.
func QueryTerminalColors(cfg Config) bool {
	return cfg.GetBool("ui", "query_terminal_colors", true)
}
