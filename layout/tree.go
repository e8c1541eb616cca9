// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/tree.go
// Summary: Node types for the pane layout tree.
// Usage: Shared by the query, mutation and operation layers of the engine.

package layout

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Direction is the axis along which a Split subdivides its region.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Position is the drop edge of a drag-and-drop or split intent. Center
// merges into an existing pane; any edge creates a new split.
type Position int

const (
	PosCenter Position = iota
	PosLeft
	PosRight
	PosTop
	PosBottom
)

// leading reports whether the new pane goes before the existing one in
// the split's child order.
func (p Position) leading() bool {
	return p == PosLeft || p == PosTop
}

// Tab is a handle to one open resource: a terminal session or a file.
// Exactly one of TerminalID and FilePath is set. The tab id is derived
// from the resource identity, so re-deriving the id for the same
// resource always yields the same tab.
type Tab struct {
	ID         string
	TerminalID string
	FilePath   string
}

// TerminalTab builds the tab handle for a terminal session.
func TerminalTab(terminalID string) Tab {
	return Tab{ID: "term-" + terminalID, TerminalID: terminalID}
}

// EditorTab builds the tab handle for an open file.
func EditorTab(filePath string) Tab {
	return Tab{ID: "edit-" + filePath, FilePath: filePath}
}

// IsTerminal reports whether the tab references a terminal session.
func (t Tab) IsTerminal() bool { return t.TerminalID != "" }

// IsEditor reports whether the tab references an open file.
func (t Tab) IsEditor() bool { return t.FilePath != "" }

// Node is a position in the pane layout tree, either a *Leaf or a
// *Split. The tree is finite, acyclic and never nil: an all-empty
// layout is a single empty Leaf.
type Node interface {
	NodeID() string
	node()
}

// Leaf is one visible rectangular region hosting an ordered list of
// tabs with at most one active. An empty tab list means ActiveTabID is
// empty as well.
type Leaf struct {
	ID          string
	Tabs        []Tab
	ActiveTabID string
}

func (l *Leaf) NodeID() string { return l.ID }
func (l *Leaf) node()          {}

// tabIndex returns the position of the tab with the given id, or -1.
func (l *Leaf) tabIndex(tabID string) int {
	for i, t := range l.Tabs {
		if t.ID == tabID {
			return i
		}
	}
	return -1
}

// HasTab reports whether the leaf holds a tab with the given id.
func (l *Leaf) HasTab(tabID string) bool { return l.tabIndex(tabID) >= 0 }

// ActiveTab returns the leaf's active tab, if any.
func (l *Leaf) ActiveTab() (Tab, bool) {
	if i := l.tabIndex(l.ActiveTabID); i >= 0 {
		return l.Tabs[i], true
	}
	return Tab{}, false
}

// clone returns a shallow copy of the leaf with its own tab slice.
func (l *Leaf) clone() *Leaf {
	c := *l
	c.Tabs = append([]Tab(nil), l.Tabs...)
	return &c
}

// Split subdivides a region into two or more children along one axis.
// Sizes holds one proportional weight per child; the engine keeps them
// as percentages summing to 100.
type Split struct {
	ID       string
	Dir      Direction
	Children []Node
	Sizes    []float64
}

func (s *Split) NodeID() string { return s.ID }
func (s *Split) node()          {}

// clone returns a shallow copy of the split with its own child and size
// slices. The children themselves are shared.
func (s *Split) clone() *Split {
	c := *s
	c.Children = append([]Node(nil), s.Children...)
	c.Sizes = append([]float64(nil), s.Sizes...)
	return &c
}

// IDGenerator produces ids for newly created nodes. Injected so tests
// can supply deterministic ids.
type IDGenerator func() string

// RandomID is the default id generator.
func RandomID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		sum := sha1.Sum([]byte(fmt.Sprintf("%p", &b)))
		copy(b[:], sum[:8])
	}
	return hex.EncodeToString(b[:])
}

// NewLeaf creates an empty leaf with an id from the generator.
func NewLeaf(gen IDGenerator) *Leaf {
	if gen == nil {
		gen = RandomID
	}
	return &Leaf{ID: gen()}
}
