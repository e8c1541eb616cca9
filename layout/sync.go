// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/sync.go
// Summary: Bulk reconciliation against externally-owned id sets.
// Usage: Called by the terminal lifecycle manager, the editor registry
// and session restore to bring the tree in line with what actually
// exists outside the engine. Each pass finishes with Normalize.

package layout

import "log"

// SyncTerminalTabs reconciles the tree against the authoritative set of
// live terminal ids. Tabs for dead terminals are dropped from every
// leaf (the leaf's active tab falls back to its last remaining tab when
// the dropped one was active), and terminals missing from the whole
// tree are added as tabs to the active pane.
func (w *Workspace) SyncTerminalTabs(terminalIDs []string) {
	w.mu.Lock()
	alive := make(map[string]bool, len(terminalIDs))
	for _, id := range terminalIDs {
		alive[id] = true
	}

	root := w.root
	present := make(map[string]bool)
	for _, leaf := range LeafPanes(root) {
		keep := leaf.Tabs[:0:0]
		for _, t := range leaf.Tabs {
			if t.IsTerminal() && !alive[t.TerminalID] {
				continue
			}
			if t.IsTerminal() {
				present[t.TerminalID] = true
			}
			keep = append(keep, t)
		}
		if len(keep) == len(leaf.Tabs) {
			continue
		}
		log.Printf("[layout] pane %s: dropped %d dead terminal tab(s)", leaf.ID, len(leaf.Tabs)-len(keep))
		root = UpdateLeaf(root, leaf.ID, func(l *Leaf) *Leaf {
			l.Tabs = keep
			if l.tabIndex(l.ActiveTabID) < 0 {
				l.ActiveTabID = ""
				if len(l.Tabs) > 0 {
					l.ActiveTabID = l.Tabs[len(l.Tabs)-1].ID
				}
			}
			return l
		})
	}

	activeID := w.activePaneID
	if FindLeaf(root, activeID) == nil {
		if fl := firstLeaf(root); fl != nil {
			activeID = fl.ID
		}
	}
	for _, id := range terminalIDs {
		if present[id] {
			continue
		}
		tab := TerminalTab(id)
		root = UpdateLeaf(root, activeID, func(l *Leaf) *Leaf {
			l.Tabs = append(l.Tabs, tab)
			l.ActiveTabID = tab.ID
			return l
		})
	}

	ls := w.finishSyncLocked(root, activeID)
	w.mu.Unlock()
	notifyAll(ls)
}

// SyncEditorTabs reconciles editor tabs against the list of open file
// paths, consolidating them all into the active pane in list order.
// restoredActiveTabID requests which tab ends up focused; when it is
// absent the most recently added editor tab wins, and when no editor
// tabs exist at all the pane's focus is left to its remaining tabs.
func (w *Workspace) SyncEditorTabs(filePaths []string, restoredActiveTabID string) {
	w.mu.Lock()
	root := stripEditorTabs(w.root)

	activeID := w.activePaneID
	if FindLeaf(root, activeID) == nil {
		if fl := firstLeaf(root); fl != nil {
			activeID = fl.ID
		}
	}

	seen := make(map[string]bool, len(filePaths))
	var tabs []Tab
	for _, path := range filePaths {
		t := EditorTab(path)
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		tabs = append(tabs, t)
	}
	if len(tabs) > 0 {
		focus := tabs[len(tabs)-1].ID
		if seen[restoredActiveTabID] {
			focus = restoredActiveTabID
		}
		root = UpdateLeaf(root, activeID, func(l *Leaf) *Leaf {
			l.Tabs = append(l.Tabs, tabs...)
			l.ActiveTabID = focus
			return l
		})
	}

	ls := w.finishSyncLocked(root, activeID)
	w.mu.Unlock()
	notifyAll(ls)
}

// ClearEditorTabs drops every editor tab from the tree.
func (w *Workspace) ClearEditorTabs() {
	w.mu.Lock()
	root := stripEditorTabs(w.root)
	ls := w.finishSyncLocked(root, w.activePaneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// RemapTerminalTabs rewrites terminal tab identities after the
// underlying process ids changed, typically across a snapshot restore.
// A remapped tab colliding with an id already present anywhere in the
// tree is dropped rather than duplicated. Active tab and active pane
// are re-resolved against the result.
func (w *Workspace) RemapTerminalTabs(idMap map[string]string) {
	if len(idMap) == 0 {
		return
	}
	w.mu.Lock()
	root := w.root

	// Ids of tabs whose identity does not change keep priority over
	// remapped tabs landing on the same id.
	taken := make(map[string]bool)
	for _, leaf := range LeafPanes(root) {
		for _, t := range leaf.Tabs {
			if t.IsTerminal() {
				if _, remapped := idMap[t.TerminalID]; remapped {
					continue
				}
			}
			taken[t.ID] = true
		}
	}

	for _, leaf := range LeafPanes(root) {
		mapped := make([]Tab, 0, len(leaf.Tabs))
		activeID := leaf.ActiveTabID
		changed := false
		for _, t := range leaf.Tabs {
			nt := t
			remapped := false
			if t.IsTerminal() {
				if newID, ok := idMap[t.TerminalID]; ok {
					nt = TerminalTab(newID)
					if activeID == t.ID {
						activeID = nt.ID
					}
					changed = true
					remapped = true
				}
			}
			if remapped {
				if taken[nt.ID] {
					continue
				}
				taken[nt.ID] = true
			}
			mapped = append(mapped, nt)
		}
		if !changed {
			continue
		}
		root = UpdateLeaf(root, leaf.ID, func(l *Leaf) *Leaf {
			l.Tabs = mapped
			l.ActiveTabID = activeID
			if l.tabIndex(l.ActiveTabID) < 0 {
				l.ActiveTabID = ""
				if len(l.Tabs) > 0 {
					l.ActiveTabID = l.Tabs[len(l.Tabs)-1].ID
				}
			}
			return l
		})
	}
	log.Printf("[layout] remapped %d terminal id(s)", len(idMap))

	ls := w.finishSyncLocked(root, w.activePaneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// finishSyncLocked runs the shared tail of every reconciliation pass:
// normalize, repair per-leaf focus and re-validate the active pane.
func (w *Workspace) finishSyncLocked(root Node, activeID string) []Listener {
	root = repairActiveTabs(Normalize(root, w.newID))
	if FindLeaf(root, activeID) == nil {
		if fl := firstLeaf(root); fl != nil {
			activeID = fl.ID
		}
	}
	return w.commitLocked(root, activeID)
}

// repairActiveTabs re-points any leaf whose ActiveTabID does not
// resolve to one of its tabs. Operations maintain this property
// themselves; externally built trees installed via Restore may not.
func repairActiveTabs(root Node) Node {
	for _, leaf := range LeafPanes(root) {
		if leaf.ActiveTabID == "" || leaf.tabIndex(leaf.ActiveTabID) >= 0 {
			continue
		}
		root = UpdateLeaf(root, leaf.ID, func(l *Leaf) *Leaf {
			l.ActiveTabID = ""
			if len(l.Tabs) > 0 {
				l.ActiveTabID = l.Tabs[len(l.Tabs)-1].ID
			}
			return l
		})
	}
	return root
}

// stripEditorTabs removes every editor tab, letting each leaf's focus
// fall back to its last remaining tab.
func stripEditorTabs(root Node) Node {
	for _, leaf := range LeafPanes(root) {
		keep := leaf.Tabs[:0:0]
		for _, t := range leaf.Tabs {
			if !t.IsEditor() {
				keep = append(keep, t)
			}
		}
		if len(keep) == len(leaf.Tabs) {
			continue
		}
		root = UpdateLeaf(root, leaf.ID, func(l *Leaf) *Leaf {
			l.Tabs = keep
			if l.tabIndex(l.ActiveTabID) < 0 {
				l.ActiveTabID = ""
				if len(l.Tabs) > 0 {
					l.ActiveTabID = l.Tabs[len(l.Tabs)-1].ID
				}
			}
			return l
		})
	}
	return root
}
