// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package layout

import "testing"

func TestTabIDDerivation(t *testing.T) {
	a := TerminalTab("abc123")
	if a.ID != "term-abc123" || !a.IsTerminal() || a.IsEditor() {
		t.Errorf("terminal tab wrong: %+v", a)
	}
	if b := TerminalTab("abc123"); b.ID != a.ID {
		t.Errorf("tab ids must be deterministic for the same resource")
	}
	e := EditorTab("/tmp/x.go")
	if e.ID != "edit-/tmp/x.go" || !e.IsEditor() || e.IsTerminal() {
		t.Errorf("editor tab wrong: %+v", e)
	}
}

func TestRandomIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 256; i++ {
		id := RandomID()
		if len(id) != 16 {
			t.Fatalf("id %q has length %d, want 16 hex chars", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestPositionLeading(t *testing.T) {
	for pos, want := range map[Position]bool{
		PosLeft: true, PosTop: true, PosRight: false, PosBottom: false, PosCenter: false,
	} {
		if pos.leading() != want {
			t.Errorf("%v leading = %v, want %v", pos, pos.leading(), want)
		}
	}
}

func TestLeafCloneIsIndependent(t *testing.T) {
	l := &Leaf{ID: "x", Tabs: []Tab{TerminalTab("a")}, ActiveTabID: "term-a"}
	c := l.clone()
	c.Tabs = append(c.Tabs, TerminalTab("b"))
	c.ActiveTabID = "term-b"
	if len(l.Tabs) != 1 || l.ActiveTabID != "term-a" {
		t.Fatalf("clone shares state with the original: %+v", l)
	}
}
