// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package layout

import "testing"

func TestSelectorsFollowFocus(t *testing.T) {
	w := New(seqGen("n"))
	leafID := w.Root().(*Leaf).ID

	if _, ok := w.ActiveTab(); ok {
		t.Errorf("empty workspace has no active tab")
	}
	if _, ok := w.ActiveTerminalID(); ok {
		t.Errorf("empty workspace has no active terminal")
	}

	w.AddTabToPane(leafID, TerminalTab("t1"))
	if id, ok := w.ActiveTerminalID(); !ok || id != "t1" {
		t.Errorf("active terminal = %q/%v, want t1", id, ok)
	}
	if _, ok := w.ActiveFilePath(); ok {
		t.Errorf("terminal tab must not report a file path")
	}

	w.AddTabToPane(leafID, EditorTab("/main.go"))
	if path, ok := w.ActiveFilePath(); !ok || path != "/main.go" {
		t.Errorf("active file = %q/%v, want /main.go", path, ok)
	}
	if _, ok := w.ActiveTerminalID(); ok {
		t.Errorf("editor tab must not report a terminal id")
	}

	tabs := w.ActivePaneTabs()
	if len(tabs) != 2 {
		t.Errorf("active pane tabs = %d, want 2", len(tabs))
	}

	w.SplitPane(leafID, Horizontal, TerminalTab("t2"), PosRight)
	if id, ok := w.ActiveTerminalID(); !ok || id != "t2" {
		t.Errorf("focus should follow the split, got %q/%v", id, ok)
	}
}
