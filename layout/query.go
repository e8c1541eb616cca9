// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/query.go
// Summary: Pure read-only traversals over the pane layout tree.

package layout

// FindNode returns the first node (leaf or split) with the given id in
// pre-order, or nil.
func FindNode(root Node, id string) Node {
	if root == nil {
		return nil
	}
	if root.NodeID() == id {
		return root
	}
	if s, ok := root.(*Split); ok {
		for _, child := range s.Children {
			if found := FindNode(child, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindLeaf returns the leaf with the given id, or nil if the id is
// unknown or names a split.
func FindLeaf(root Node, id string) *Leaf {
	leaf, _ := FindNode(root, id).(*Leaf)
	return leaf
}

// FindParentSplit returns the split whose immediate children contain
// the node with childID, or nil if childID is the root or unknown.
func FindParentSplit(root Node, childID string) *Split {
	s, ok := root.(*Split)
	if !ok {
		return nil
	}
	for _, child := range s.Children {
		if child.NodeID() == childID {
			return s
		}
		if found := FindParentSplit(child, childID); found != nil {
			return found
		}
	}
	return nil
}

// LeafPanes returns all leaves in left-to-right depth-first order.
func LeafPanes(root Node) []*Leaf {
	var leaves []*Leaf
	walkLeaves(root, func(l *Leaf) { leaves = append(leaves, l) })
	return leaves
}

// FindTabOwner returns the leaf whose tab list contains tabID, or nil.
func FindTabOwner(root Node, tabID string) *Leaf {
	var owner *Leaf
	walkLeaves(root, func(l *Leaf) {
		if owner == nil && l.HasTab(tabID) {
			owner = l
		}
	})
	return owner
}

// firstLeaf returns the first leaf under node in pre-order, or nil.
func firstLeaf(node Node) *Leaf {
	switch v := node.(type) {
	case *Leaf:
		return v
	case *Split:
		for _, child := range v.Children {
			if l := firstLeaf(child); l != nil {
				return l
			}
		}
	}
	return nil
}

func walkLeaves(node Node, fn func(*Leaf)) {
	switch v := node.(type) {
	case *Leaf:
		fn(v)
	case *Split:
		for _, child := range v.Children {
			walkLeaves(child, fn)
		}
	}
}
