// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/manager.go
// Summary: Terminal session lifecycle: spawn, write, resize, kill.
// Usage: Owns the authoritative set of live terminal ids consumed by
// the layout engine's terminal reconciliation.

package term

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/creack/pty"

	"github.com/avhagen/loom/layout"
)

// StartFunc launches the command on a pty and returns the master end.
// Injected so tests can run sessions without a real pty.
type StartFunc func(*exec.Cmd) (*os.File, error)

// Manager tracks live terminal sessions. Every spawn and exit reports
// the updated id set through onChange, which the caller feeds to
// layout.(*Workspace).SyncTerminalTabs.
type Manager struct {
	mu         sync.Mutex
	shell      string
	scrollback int
	start      StartFunc
	sessions   map[string]*Session
	seq        int
	onChange   func(ids []string)
	onData     func(id string)
	closed     bool
}

// NewManager creates a session manager running the given shell.
// scrollback bounds each session's kept history; zero or negative
// picks the default. A nil start function uses pty.Start.
func NewManager(shell string, scrollback int, start StartFunc, onChange func([]string), onData func(string)) *Manager {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	if start == nil {
		start = pty.Start
	}
	return &Manager{
		shell:      shell,
		scrollback: scrollback,
		start:      start,
		sessions:   make(map[string]*Session),
		onChange:   onChange,
		onData:     onData,
	}
}

// Spawn starts a new shell session and returns its terminal id.
func (m *Manager) Spawn(cols, rows int) (string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", fmt.Errorf("manager closed")
	}
	m.seq++
	id := strconv.Itoa(m.seq)

	cmd := exec.Command(m.shell)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLUMNS="+strconv.Itoa(cols),
		"LINES="+strconv.Itoa(rows),
	)
	ptmx, err := m.start(cmd)
	if err != nil {
		m.mu.Unlock()
		log.Printf("[term] failed to start %s: %v", m.shell, err)
		return "", err
	}
	s := newSession(id, cmd, ptmx, m.scrollback)
	m.sessions[id] = s
	ids := m.liveIDsLocked()
	m.mu.Unlock()

	go m.pump(s)
	log.Printf("[term] spawned session %s (%s)", id, m.shell)
	if m.onChange != nil {
		m.onChange(ids)
	}
	return id, nil
}

// pump copies session output into the scrollback until the process
// exits, then reaps the session and republishes the live set.
func (m *Manager) pump(s *Session) {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.feed(buf[:n])
			if m.onData != nil {
				m.onData(s.id)
			}
		}
		if err != nil {
			break
		}
	}
	s.ptmx.Close()
	if s.cmd != nil {
		s.cmd.Wait()
	}

	m.mu.Lock()
	delete(m.sessions, s.id)
	ids := m.liveIDsLocked()
	closed := m.closed
	m.mu.Unlock()

	log.Printf("[term] session %s exited", s.id)
	if m.onChange != nil && !closed {
		m.onChange(ids)
	}
}

// Write sends input to the identified session.
func (m *Manager) Write(id string, p []byte) error {
	s := m.lookup(id)
	if s == nil {
		return fmt.Errorf("no session %s", id)
	}
	_, err := s.ptmx.Write(p)
	return err
}

// Resize informs the session's pty of a new size.
func (m *Manager) Resize(id string, cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	s := m.lookup(id)
	if s == nil {
		return fmt.Errorf("no session %s", id)
	}
	return pty.Setsize(s.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// Kill terminates the identified session. The live set is republished
// by the exit path once the process is reaped.
func (m *Manager) Kill(id string) error {
	s := m.lookup(id)
	if s == nil {
		return fmt.Errorf("no session %s", id)
	}
	s.ptmx.Close()
	if s.cmd != nil && s.cmd.Process != nil {
		return s.cmd.Process.Kill()
	}
	return nil
}

// LiveIDs returns the ids of all running sessions in spawn order.
func (m *Manager) LiveIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveIDsLocked()
}

func (m *Manager) liveIDsLocked() []string {
	ids := make([]string, 0, len(m.sessions))
	for i := 1; i <= m.seq; i++ {
		id := strconv.Itoa(i)
		if _, ok := m.sessions[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Scrollback returns the last lines of the session's output, newest
// last, for the renderer.
func (m *Manager) Scrollback(id string, max int) []string {
	s := m.lookup(id)
	if s == nil {
		return nil
	}
	return s.tail(max)
}

// RemapAfterRestore spawns one fresh session per captured terminal id
// and returns the old-to-new id table for the layout engine.
func (m *Manager) RemapAfterRestore(oldIDs []string, cols, rows int) map[string]string {
	idMap := make(map[string]string, len(oldIDs))
	for _, old := range oldIDs {
		id, err := m.Spawn(cols, rows)
		if err != nil {
			log.Printf("[term] restore: could not respawn for %s: %v", old, err)
			continue
		}
		idMap[old] = id
	}
	return idMap
}

// Close kills every session and stops change notifications.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.ptmx.Close()
		if s.cmd != nil && s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
	}
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Tab is a convenience for building the layout tab of a session.
func Tab(id string) layout.Tab { return layout.TerminalTab(id) }
