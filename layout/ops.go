// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/ops.go
// Summary: The workspace state container and its guarded operations.
// Usage: The sole mutation surface over the pane tree. Every operation
// is a single read-compute-install cycle; stale or unresolvable ids are
// silent no-ops because callers are asynchronous UI handlers where a
// reference going stale mid-gesture is expected, not an error.

package layout

import (
	"log"
	"math"
	"sync"
)

// Listener is notified after every effective mutation of the workspace.
type Listener interface {
	LayoutChanged()
}

// Workspace owns the pane tree and the active-pane focus state. The
// tree is immutable; operations install replacement trees built with
// structural sharing, so an unchanged subtree keeps its identity across
// operations.
type Workspace struct {
	mu           sync.Mutex
	newID        IDGenerator
	root         Node
	activePaneID string
	listeners    []Listener
}

// New creates a workspace holding a single empty leaf. A nil generator
// falls back to RandomID.
func New(gen IDGenerator) *Workspace {
	if gen == nil {
		gen = RandomID
	}
	leaf := NewLeaf(gen)
	return &Workspace{newID: gen, root: leaf, activePaneID: leaf.ID}
}

// Subscribe registers a listener for layout change notifications.
func (w *Workspace) Subscribe(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Unsubscribe removes a previously registered listener.
func (w *Workspace) Unsubscribe(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.listeners {
		if existing == l {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// Root returns the current tree root.
func (w *Workspace) Root() Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.root
}

// ActivePaneID returns the id of the focused leaf.
func (w *Workspace) ActivePaneID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activePaneID
}

// commitLocked installs the new state and snapshots the listener list.
// Callers notify after releasing the lock so listeners may re-enter.
func (w *Workspace) commitLocked(root Node, activePaneID string) []Listener {
	w.root = root
	w.activePaneID = activePaneID
	return append([]Listener(nil), w.listeners...)
}

func notifyAll(listeners []Listener) {
	for _, l := range listeners {
		l.LayoutChanged()
	}
}

// SplitPane splits the identified leaf in two, placing newTab alone in
// the new leaf. The new leaf goes before the target for a leading edge
// (left/top) and after it otherwise, with an even 50/50 size split. The
// new leaf becomes the active pane.
func (w *Workspace) SplitPane(paneID string, dir Direction, newTab Tab, pos Position) {
	w.mu.Lock()
	target := FindLeaf(w.root, paneID)
	if target == nil {
		w.mu.Unlock()
		return
	}
	newLeaf := &Leaf{ID: w.newID(), Tabs: []Tab{newTab}, ActiveTabID: newTab.ID}
	children := []Node{target, newLeaf}
	if pos.leading() {
		children = []Node{newLeaf, target}
	}
	split := &Split{ID: w.newID(), Dir: dir, Children: children, Sizes: []float64{50, 50}}
	log.Printf("[layout] split pane %s %s, new leaf %s", paneID, dir, newLeaf.ID)
	ls := w.commitLocked(ReplaceNode(w.root, paneID, split), newLeaf.ID)
	w.mu.Unlock()
	notifyAll(ls)
}

// AddTabToPane appends the tab to the identified leaf and focuses it.
// A tab with the same id is focused instead of inserted twice.
func (w *Workspace) AddTabToPane(paneID string, tab Tab) {
	w.mu.Lock()
	if FindLeaf(w.root, paneID) == nil {
		w.mu.Unlock()
		return
	}
	root := UpdateLeaf(w.root, paneID, func(l *Leaf) *Leaf {
		if !l.HasTab(tab.ID) {
			l.Tabs = append(l.Tabs, tab)
		}
		l.ActiveTabID = tab.ID
		return l
	})
	ls := w.commitLocked(root, paneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// MoveTabToPane moves a tab from one leaf into another and focuses it
// there. A source left empty is removed when other leaves remain.
func (w *Workspace) MoveTabToPane(tabID, sourcePaneID, targetPaneID string) {
	w.mu.Lock()
	ls, ok := w.moveTabLocked(tabID, sourcePaneID, targetPaneID)
	w.mu.Unlock()
	if ok {
		notifyAll(ls)
	}
}

func (w *Workspace) moveTabLocked(tabID, sourcePaneID, targetPaneID string) ([]Listener, bool) {
	if sourcePaneID == targetPaneID {
		return nil, false
	}
	source := FindLeaf(w.root, sourcePaneID)
	if source == nil || !source.HasTab(tabID) {
		return nil, false
	}
	if FindLeaf(w.root, targetPaneID) == nil {
		return nil, false
	}
	tab := source.Tabs[source.tabIndex(tabID)]

	root := ReplaceNode(w.root, sourcePaneID, removeTab(source, tabID))
	root = UpdateLeaf(root, targetPaneID, func(l *Leaf) *Leaf {
		if !l.HasTab(tabID) {
			l.Tabs = append(l.Tabs, tab)
		}
		l.ActiveTabID = tabID
		return l
	})
	root = w.dropIfEmptied(root, sourcePaneID)
	return w.commitLocked(root, targetPaneID), true
}

// MoveTabToNewSplit moves a tab next to the target leaf by splitting
// it along the dropped edge. A center drop degrades to MoveTabToPane.
// The source removal happens first and may collapse the target away
// (two sibling panes, source emptied); the target is re-resolved by id
// afterwards, and when it is gone the tree becomes a single fresh leaf
// holding only the moved tab.
func (w *Workspace) MoveTabToNewSplit(tabID, sourcePaneID, targetPaneID string, pos Position) {
	if pos == PosCenter {
		w.MoveTabToPane(tabID, sourcePaneID, targetPaneID)
		return
	}
	w.mu.Lock()
	source := FindLeaf(w.root, sourcePaneID)
	if source == nil || !source.HasTab(tabID) {
		w.mu.Unlock()
		return
	}
	if FindLeaf(w.root, targetPaneID) == nil {
		w.mu.Unlock()
		return
	}
	tab := source.Tabs[source.tabIndex(tabID)]

	root := ReplaceNode(w.root, sourcePaneID, removeTab(source, tabID))
	root = w.dropIfEmptied(root, sourcePaneID)

	newLeaf := &Leaf{ID: w.newID(), Tabs: []Tab{tab}, ActiveTabID: tab.ID}
	target := FindLeaf(root, targetPaneID)
	if target == nil {
		ls := w.commitLocked(newLeaf, newLeaf.ID)
		w.mu.Unlock()
		notifyAll(ls)
		return
	}
	dir := Horizontal
	if pos == PosTop || pos == PosBottom {
		dir = Vertical
	}
	children := []Node{target, newLeaf}
	if pos.leading() {
		children = []Node{newLeaf, target}
	}
	split := &Split{ID: w.newID(), Dir: dir, Children: children, Sizes: []float64{50, 50}}
	ls := w.commitLocked(ReplaceNode(root, targetPaneID, split), newLeaf.ID)
	w.mu.Unlock()
	notifyAll(ls)
}

// CloseTab removes a tab from a leaf. A leaf left empty is removed when
// other leaves remain, moving focus to the first leaf under the former
// sibling subtree; the sole remaining leaf is kept empty instead.
func (w *Workspace) CloseTab(paneID, tabID string) {
	w.mu.Lock()
	leaf := FindLeaf(w.root, paneID)
	if leaf == nil || !leaf.HasTab(tabID) {
		w.mu.Unlock()
		return
	}
	updated := removeTab(leaf, tabID)
	root := ReplaceNode(w.root, paneID, updated)
	active := w.activePaneID
	if len(updated.Tabs) == 0 && len(LeafPanes(root)) > 1 {
		if next := survivorLeaf(root, paneID); next != nil {
			active = next.ID
		}
		root = RemoveNode(root, paneID)
		if FindLeaf(root, active) == nil {
			if fl := firstLeaf(root); fl != nil {
				active = fl.ID
			}
		}
		log.Printf("[layout] closed last tab of pane %s, pane removed", paneID)
	}
	ls := w.commitLocked(root, active)
	w.mu.Unlock()
	notifyAll(ls)
}

// SetActiveTab focuses a tab within a leaf and makes that leaf the
// active pane. No structural change.
func (w *Workspace) SetActiveTab(paneID, tabID string) {
	w.mu.Lock()
	leaf := FindLeaf(w.root, paneID)
	if leaf == nil || !leaf.HasTab(tabID) {
		w.mu.Unlock()
		return
	}
	root := UpdateLeaf(w.root, paneID, func(l *Leaf) *Leaf {
		l.ActiveTabID = tabID
		return l
	})
	ls := w.commitLocked(root, paneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// SetActivePane moves focus to the identified leaf.
func (w *Workspace) SetActivePane(paneID string) {
	w.mu.Lock()
	if FindLeaf(w.root, paneID) == nil {
		w.mu.Unlock()
		return
	}
	ls := w.commitLocked(w.root, paneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// UpdatePaneSizes replaces a split's proportional sizes. Calls where
// every size is within 0.01 of the current value are dropped to keep
// drag-resize jitter from churning the tree identity.
func (w *Workspace) UpdatePaneSizes(splitID string, sizes []float64) {
	w.mu.Lock()
	split, ok := FindNode(w.root, splitID).(*Split)
	if !ok || len(sizes) != len(split.Sizes) {
		w.mu.Unlock()
		return
	}
	same := true
	for i := range sizes {
		if math.Abs(sizes[i]-split.Sizes[i]) > 0.01 {
			same = false
			break
		}
	}
	if same {
		w.mu.Unlock()
		return
	}
	updated := split.clone()
	updated.Sizes = append(updated.Sizes[:0], sizes...)
	ls := w.commitLocked(ReplaceNode(w.root, splitID, updated), w.activePaneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// CollapsePane removes a leaf outright, keeping its tabs' resources to
// their own lifecycles. The last remaining leaf is never removed. Focus
// moves to the first leaf under the surviving sibling subtree when one
// resolves, otherwise the previous active pane is kept.
func (w *Workspace) CollapsePane(paneID string) {
	w.mu.Lock()
	if FindLeaf(w.root, paneID) == nil || len(LeafPanes(w.root)) <= 1 {
		w.mu.Unlock()
		return
	}
	active := w.activePaneID
	if next := survivorLeaf(w.root, paneID); next != nil {
		active = next.ID
	}
	root := RemoveNode(w.root, paneID)
	if FindLeaf(root, active) == nil {
		if fl := firstLeaf(root); fl != nil {
			active = fl.ID
		}
	}
	ls := w.commitLocked(root, active)
	w.mu.Unlock()
	notifyAll(ls)
}

// ReorderTabs rearranges a leaf's tabs to the given id order. Ids not
// present in the leaf are ignored; tabs omitted from the order keep
// their original relative order after the reordered ones.
func (w *Workspace) ReorderTabs(paneID string, orderedIDs []string) {
	w.mu.Lock()
	leaf := FindLeaf(w.root, paneID)
	if leaf == nil {
		w.mu.Unlock()
		return
	}
	reordered := leaf.clone()
	reordered.Tabs = reordered.Tabs[:0]
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			continue
		}
		if i := leaf.tabIndex(id); i >= 0 {
			reordered.Tabs = append(reordered.Tabs, leaf.Tabs[i])
			seen[id] = true
		}
	}
	for _, t := range leaf.Tabs {
		if !seen[t.ID] {
			reordered.Tabs = append(reordered.Tabs, t)
		}
	}
	ls := w.commitLocked(ReplaceNode(w.root, paneID, reordered), w.activePaneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// Reset hard-resets the workspace to a single fresh empty leaf.
func (w *Workspace) Reset() {
	w.mu.Lock()
	leaf := NewLeaf(w.newID)
	log.Printf("[layout] reset to empty leaf %s", leaf.ID)
	ls := w.commitLocked(leaf, leaf.ID)
	w.mu.Unlock()
	notifyAll(ls)
}

// Restore installs an externally built tree, normalizing it and
// re-validating the active pane. A nil tree behaves like Reset.
func (w *Workspace) Restore(root Node, activePaneID string) {
	w.mu.Lock()
	ls := w.finishSyncLocked(root, activePaneID)
	w.mu.Unlock()
	notifyAll(ls)
}

// removeTab returns a copy of the leaf without the tab. When the
// removed tab was active, the replacement active tab is the one at the
// same list index, clamped to the shorter list, to preserve visual
// continuity in the tab bar.
func removeTab(l *Leaf, tabID string) *Leaf {
	i := l.tabIndex(tabID)
	if i < 0 {
		return l
	}
	c := l.clone()
	c.Tabs = append(c.Tabs[:i], c.Tabs[i+1:]...)
	if c.ActiveTabID == tabID {
		if len(c.Tabs) == 0 {
			c.ActiveTabID = ""
		} else {
			j := i
			if j >= len(c.Tabs) {
				j = len(c.Tabs) - 1
			}
			c.ActiveTabID = c.Tabs[j].ID
		}
	}
	return c
}

// dropIfEmptied removes the leaf when it has no tabs left and the tree
// holds at least one other leaf.
func (w *Workspace) dropIfEmptied(root Node, paneID string) Node {
	leaf := FindLeaf(root, paneID)
	if leaf == nil || len(leaf.Tabs) > 0 || len(LeafPanes(root)) <= 1 {
		return root
	}
	return RemoveNode(root, paneID)
}

// survivorLeaf picks the focus target left behind by removing paneID:
// the first leaf under the next sibling in the parent split, falling
// back to the previous sibling when the removed pane was last.
func survivorLeaf(root Node, paneID string) *Leaf {
	parent := FindParentSplit(root, paneID)
	if parent == nil {
		return nil
	}
	idx := -1
	for i, child := range parent.Children {
		if child.NodeID() == paneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	j := idx + 1
	if j >= len(parent.Children) {
		j = idx - 1
	}
	if j < 0 {
		return nil
	}
	return firstLeaf(parent.Children[j])
}
