// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ui/geometry.go
// Summary: Maps the layout tree onto screen rectangles.

package ui

import (
	"github.com/avhagen/loom/layout"
)

// Rect is a pane's position and size in screen cells.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the cell at (x, y) falls inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// ComputeRects assigns a rectangle to every leaf in the tree. Split
// sizes are percentages; the last child of each split absorbs the
// rounding remainder so siblings always tile their parent exactly.
func ComputeRects(root layout.Node, bounds Rect) map[string]Rect {
	rects := make(map[string]Rect)
	assignRects(root, bounds, rects)
	return rects
}

func assignRects(n layout.Node, bounds Rect, rects map[string]Rect) {
	switch node := n.(type) {
	case *layout.Leaf:
		rects[node.ID] = bounds
	case *layout.Split:
		if len(node.Sizes) != len(node.Children) {
			return
		}
		total := 0.0
		for _, s := range node.Sizes {
			total += s
		}
		if total <= 0 {
			return
		}
		if node.Dir == layout.Horizontal {
			x := bounds.X
			for i, child := range node.Children {
				w := int(float64(bounds.Width) * node.Sizes[i] / total)
				if i == len(node.Children)-1 {
					w = bounds.Width - (x - bounds.X)
				}
				assignRects(child, Rect{X: x, Y: bounds.Y, Width: w, Height: bounds.Height}, rects)
				x += w
			}
		} else {
			y := bounds.Y
			for i, child := range node.Children {
				h := int(float64(bounds.Height) * node.Sizes[i] / total)
				if i == len(node.Children)-1 {
					h = bounds.Height - (y - bounds.Y)
				}
				assignRects(child, Rect{X: bounds.X, Y: y, Width: bounds.Width, Height: h}, rects)
				y += h
			}
		}
	}
}

// PaneAt returns the id of the leaf whose rect contains (x, y).
func PaneAt(rects map[string]Rect, x, y int) (string, bool) {
	for id, r := range rects {
		if r.Contains(x, y) {
			return id, true
		}
	}
	return "", false
}
