// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session.go
// Summary: One live shell session and its scrollback tail.

package term

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

// defaultScrollback caps how much history a session keeps when no
// limit is configured. Full history search belongs to the terminal
// emulator, not here.
const defaultScrollback = 500

// Session is one running shell attached to a pty master.
type Session struct {
	id    string
	cmd   *exec.Cmd
	ptmx  *os.File
	limit int

	mu      sync.Mutex
	lines   []string
	partial strings.Builder
}

func newSession(id string, cmd *exec.Cmd, ptmx *os.File, limit int) *Session {
	if limit <= 0 {
		limit = defaultScrollback
	}
	return &Session{id: id, cmd: cmd, ptmx: ptmx, limit: limit}
}

// ID returns the session's terminal id.
func (s *Session) ID() string { return s.id }

// feed appends raw pty output to the scrollback, splitting on newlines
// and stripping carriage returns. Escape sequences are kept verbatim;
// the renderer draws plain text only.
func (s *Session) feed(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range p {
		switch b {
		case '\n':
			s.lines = append(s.lines, s.partial.String())
			s.partial.Reset()
			if len(s.lines) > s.limit {
				s.lines = s.lines[len(s.lines)-s.limit:]
			}
		case '\r':
		default:
			s.partial.WriteByte(b)
		}
	}
}

// tail returns up to max complete lines plus the unterminated partial
// line, newest last.
func (s *Session) tail(max int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.lines
	if partial := s.partial.String(); partial != "" {
		out = append(append([]string(nil), out...), partial)
	}
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return append([]string(nil), out...)
}
