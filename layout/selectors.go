// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/selectors.go
// Summary: Read-only derivations consumed by the renderer and the
// terminal/editor collaborators.

package layout

// ActivePane returns the focused leaf. The workspace invariant keeps
// the active pane id resolvable, so a nil result only occurs on a
// corrupted tree.
func (w *Workspace) ActivePane() *Leaf {
	w.mu.Lock()
	defer w.mu.Unlock()
	return FindLeaf(w.root, w.activePaneID)
}

// ActivePaneTabs returns the focused leaf's tab list.
func (w *Workspace) ActivePaneTabs() []Tab {
	if leaf := w.ActivePane(); leaf != nil {
		return leaf.Tabs
	}
	return nil
}

// ActiveTab returns the active tab of the focused leaf, if any.
func (w *Workspace) ActiveTab() (Tab, bool) {
	if leaf := w.ActivePane(); leaf != nil {
		return leaf.ActiveTab()
	}
	return Tab{}, false
}

// ActiveTerminalID returns the terminal id behind the active tab. This
// is how the terminal lifecycle manager learns which session should be
// visible and receiving input.
func (w *Workspace) ActiveTerminalID() (string, bool) {
	t, ok := w.ActiveTab()
	if !ok || !t.IsTerminal() {
		return "", false
	}
	return t.TerminalID, true
}

// ActiveFilePath returns the file path behind the active tab, the seam
// by which the editor collaborator learns which buffer to show.
func (w *Workspace) ActiveFilePath() (string, bool) {
	t, ok := w.ActiveTab()
	if !ok || !t.IsEditor() {
		return "", false
	}
	return t.FilePath, true
}
