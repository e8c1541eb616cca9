// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/mutate.go
// Summary: Structural-sharing editing primitives for the pane tree.
// Usage: Building blocks for the workspace operations; every function
// returns a new tree and leaves the input untouched. Only the path from
// the edited node to the root is reallocated.

package layout

import "math"

// ReplaceNode returns a new tree with the node at targetID swapped for
// replacement. If targetID is absent the original root is returned.
func ReplaceNode(root Node, targetID string, replacement Node) Node {
	if root == nil {
		return nil
	}
	if root.NodeID() == targetID {
		return replacement
	}
	s, ok := root.(*Split)
	if !ok {
		return root
	}
	for i, child := range s.Children {
		newChild := ReplaceNode(child, targetID, replacement)
		if newChild == child {
			continue
		}
		c := s.clone()
		c.Children[i] = newChild
		return c
	}
	return root
}

// RemoveNode returns a new tree with the node at targetID removed, or
// nil if targetID is the root; the caller substitutes a fallback,
// conventionally a fresh empty leaf. A split left with a single child
// collapses to that child. A split left with two or more children keeps
// its former size total: the surviving sizes are scaled so their sum
// matches the sum of all sizes before the removal.
func RemoveNode(root Node, targetID string) Node {
	if root == nil {
		return nil
	}
	if root.NodeID() == targetID {
		return nil
	}
	newRoot, _ := removeFrom(root, targetID)
	return newRoot
}

func removeFrom(node Node, targetID string) (Node, bool) {
	s, ok := node.(*Split)
	if !ok {
		return node, false
	}
	for i, child := range s.Children {
		if child.NodeID() == targetID {
			return dropChild(s, i), true
		}
		newChild, removed := removeFrom(child, targetID)
		if !removed {
			continue
		}
		c := s.clone()
		c.Children[i] = newChild
		return c, true
	}
	return node, false
}

// dropChild removes the child at index i, collapsing the split when a
// single child survives.
func dropChild(s *Split, i int) Node {
	if len(s.Children) == 2 {
		return s.Children[1-i]
	}
	total := 0.0
	for _, sz := range s.Sizes {
		total += sz
	}
	c := s.clone()
	c.Children = append(c.Children[:i], c.Children[i+1:]...)
	c.Sizes = append(c.Sizes[:i], c.Sizes[i+1:]...)

	survivorSum := 0.0
	for _, sz := range c.Sizes {
		survivorSum += sz
	}
	if survivorSum > 0 {
		for j := range c.Sizes {
			c.Sizes[j] = c.Sizes[j] / survivorSum * total
		}
	} else {
		equal := total / float64(len(c.Sizes))
		for j := range c.Sizes {
			c.Sizes[j] = equal
		}
	}
	return c
}

// UpdateLeaf applies a pure transform to the identified leaf. The
// transform receives a private copy and returns the replacement. If the
// id does not resolve to a leaf the original tree is returned.
func UpdateLeaf(root Node, leafID string, fn func(*Leaf) *Leaf) Node {
	target := FindLeaf(root, leafID)
	if target == nil {
		return root
	}
	updated := fn(target.clone())
	if updated == nil {
		return root
	}
	return ReplaceNode(root, leafID, updated)
}

// Normalize runs the bottom-up collapse pass used after bulk
// reconciliation: splits left with one child are replaced by that
// child, splits left with none vanish, and every surviving split's
// sizes are rescaled to sum to exactly 100. Stored sizes that are not
// finite or not positive count as weight 1 so a bad value cannot zero
// out a sibling. If the whole tree collapses the result is a fresh
// empty leaf from gen; the tree is never nil.
func Normalize(root Node, gen IDGenerator) Node {
	n := normalize(root)
	if n == nil {
		return NewLeaf(gen)
	}
	return n
}

func normalize(node Node) Node {
	s, ok := node.(*Split)
	if !ok {
		return node
	}
	changed := false
	var children []Node
	var sizes []float64
	for i, child := range s.Children {
		nc := normalize(child)
		if nc == nil {
			changed = true
			continue
		}
		if nc != child {
			changed = true
		}
		children = append(children, nc)
		if i < len(s.Sizes) {
			sizes = append(sizes, s.Sizes[i])
		} else {
			changed = true
			sizes = append(sizes, 1)
		}
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}

	total := 0.0
	for i, sz := range sizes {
		if math.IsNaN(sz) || math.IsInf(sz, 0) || sz <= 0 {
			sizes[i] = 1
			changed = true
		}
		total += sizes[i]
	}
	for i := range sizes {
		scaled := sizes[i] / total * 100
		if math.Abs(scaled-sizes[i]) > 1e-9 {
			changed = true
		}
		sizes[i] = scaled
	}
	if !changed {
		return s
	}

	c := s.clone()
	c.Children = children
	c.Sizes = sizes
	return c
}
