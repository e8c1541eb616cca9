// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: snapshot/capture.go
// Summary: Serializable captures of the workspace layout tree.
//
// Captures flatten the live tree into plain structs that survive a
// JSON round trip, so a workspace can be persisted and rebuilt across
// restarts.

package snapshot

import (
	"strings"

	"github.com/avhagen/loom/layout"
)

// TabCapture records one tab.
type TabCapture struct {
	ID       string `json:"id"`
	Terminal string `json:"terminal,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

// NodeCapture records one layout node. Leaves carry tabs, splits carry
// direction, sizes and children.
type NodeCapture struct {
	ID          string         `json:"id"`
	Tabs        []TabCapture   `json:"tabs,omitempty"`
	ActiveTabID string         `json:"activeTabId,omitempty"`
	Direction   string         `json:"direction,omitempty"`
	Sizes       []float64      `json:"sizes,omitempty"`
	Children    []*NodeCapture `json:"children,omitempty"`
}

// WorkspaceCapture is the full persisted state of one workspace.
type WorkspaceCapture struct {
	Root         *NodeCapture `json:"root"`
	ActivePaneID string       `json:"activePaneId"`
}

// Capture flattens the current workspace state.
func Capture(ws *layout.Workspace) WorkspaceCapture {
	return WorkspaceCapture{
		Root:         captureNode(ws.Root()),
		ActivePaneID: ws.ActivePaneID(),
	}
}

func captureNode(n layout.Node) *NodeCapture {
	switch node := n.(type) {
	case *layout.Leaf:
		cap := &NodeCapture{ID: node.ID, ActiveTabID: node.ActiveTabID}
		for _, t := range node.Tabs {
			cap.Tabs = append(cap.Tabs, TabCapture{
				ID:       t.ID,
				Terminal: t.TerminalID,
				FilePath: t.FilePath,
			})
		}
		return cap
	case *layout.Split:
		cap := &NodeCapture{
			ID:        node.ID,
			Direction: node.Dir.String(),
			Sizes:     append([]float64(nil), node.Sizes...),
		}
		for _, child := range node.Children {
			cap.Children = append(cap.Children, captureNode(child))
		}
		return cap
	}
	return nil
}

// Rebuild turns a capture back into a live tree. Malformed splits
// collapse to their first valid child; a fully malformed capture
// yields nil and the caller starts fresh. A tab id appearing in more
// than one leaf is kept only at its first (pre-order) occurrence.
func Rebuild(cap *NodeCapture) layout.Node {
	return rebuildNode(cap, make(map[string]bool))
}

func rebuildNode(cap *NodeCapture, seen map[string]bool) layout.Node {
	if cap == nil {
		return nil
	}
	if len(cap.Children) == 0 {
		leaf := &layout.Leaf{ID: cap.ID, ActiveTabID: cap.ActiveTabID}
		for _, t := range cap.Tabs {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			leaf.Tabs = append(leaf.Tabs, layout.Tab{
				ID:         t.ID,
				TerminalID: t.Terminal,
				FilePath:   t.FilePath,
			})
		}
		return leaf
	}

	split := &layout.Split{
		ID:    cap.ID,
		Sizes: append([]float64(nil), cap.Sizes...),
	}
	if cap.Direction == layout.Vertical.String() {
		split.Dir = layout.Vertical
	}
	for _, childCap := range cap.Children {
		if child := rebuildNode(childCap, seen); child != nil {
			split.Children = append(split.Children, child)
		}
	}
	switch len(split.Children) {
	case 0:
		return nil
	case 1:
		return split.Children[0]
	}
	if len(split.Sizes) != len(split.Children) {
		split.Sizes = make([]float64, len(split.Children))
		for i := range split.Sizes {
			split.Sizes[i] = 100 / float64(len(split.Children))
		}
	}
	return split
}

// TerminalIDs lists the terminal ids referenced by a capture in tree
// order. Restore uses this to respawn sessions and remap tabs.
func (c WorkspaceCapture) TerminalIDs() []string {
	var ids []string
	var walk func(*NodeCapture)
	walk = func(n *NodeCapture) {
		if n == nil {
			return
		}
		for _, t := range n.Tabs {
			if t.Terminal != "" || strings.HasPrefix(t.ID, "term-") {
				id := t.Terminal
				if id == "" {
					id = strings.TrimPrefix(t.ID, "term-")
				}
				ids = append(ids, id)
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(c.Root)
	return ids
}
