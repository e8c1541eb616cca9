// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: layout/mutate_test.go
// Summary: Exercises the structural-sharing editing primitives.

package layout

import (
	"math"
	"testing"
)

// fixture builds:
//
//	split "top" (horizontal)
//	├── leaf "a"
//	└── split "sub" (vertical)
//	    ├── leaf "b"
//	    └── leaf "c"
func fixture() *Split {
	return &Split{
		ID:  "top",
		Dir: Horizontal,
		Children: []Node{
			&Leaf{ID: "a", Tabs: []Tab{TerminalTab("a1")}, ActiveTabID: "term-a1"},
			&Split{
				ID:  "sub",
				Dir: Vertical,
				Children: []Node{
					&Leaf{ID: "b", Tabs: []Tab{TerminalTab("b1")}, ActiveTabID: "term-b1"},
					&Leaf{ID: "c"},
				},
				Sizes: []float64{60, 40},
			},
		},
		Sizes: []float64{25, 75},
	}
}

func TestReplaceNodeSharesUntouchedSubtrees(t *testing.T) {
	root := fixture()
	repl := &Leaf{ID: "c2"}
	newRoot := ReplaceNode(root, "c", repl).(*Split)

	if newRoot == root {
		t.Fatalf("root on the path to the target must be reallocated")
	}
	if newRoot.Children[0] != root.Children[0] {
		t.Errorf("untouched sibling subtree was reallocated")
	}
	newSub := newRoot.Children[1].(*Split)
	oldSub := root.Children[1].(*Split)
	if newSub == oldSub {
		t.Errorf("split on the path must be reallocated")
	}
	if newSub.Children[0] != oldSub.Children[0] {
		t.Errorf("untouched leaf under the edited split was reallocated")
	}
	if newSub.Children[1] != Node(repl) {
		t.Errorf("replacement not installed")
	}
	// The original tree is untouched.
	if root.Children[1].(*Split).Children[1].NodeID() != "c" {
		t.Errorf("input tree was mutated")
	}
}

func TestReplaceNodeUnknownIDReturnsSameRoot(t *testing.T) {
	root := fixture()
	if got := ReplaceNode(root, "nope", &Leaf{ID: "x"}); got != Node(root) {
		t.Fatalf("unknown target must return the identical root")
	}
}

func TestRemoveNodeOfRootReturnsNil(t *testing.T) {
	root := fixture()
	if got := RemoveNode(root, "top"); got != nil {
		t.Fatalf("removing the root must return nil, got %#v", got)
	}
}

func TestRemoveNodeCollapsesTwoChildSplit(t *testing.T) {
	root := fixture()
	newRoot := RemoveNode(root, "b").(*Split)
	// "sub" had two children; removing one elides the wrapper.
	if newRoot.Children[1].NodeID() != "c" {
		t.Fatalf("expected leaf c promoted in place of split sub, got %q", newRoot.Children[1].NodeID())
	}
	if len(newRoot.Children) != 2 {
		t.Fatalf("top-level child count changed: %d", len(newRoot.Children))
	}
}

func TestRemoveNodePreservesSizeTotal(t *testing.T) {
	root := &Split{
		ID:  "s",
		Dir: Horizontal,
		Children: []Node{
			&Leaf{ID: "a"}, &Leaf{ID: "b"}, &Leaf{ID: "c"},
		},
		Sizes: []float64{20, 30, 50},
	}
	newRoot := RemoveNode(root, "b").(*Split)
	if len(newRoot.Sizes) != 2 {
		t.Fatalf("sizes = %v", newRoot.Sizes)
	}
	sum := newRoot.Sizes[0] + newRoot.Sizes[1]
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("size total not preserved: %v", sum)
	}
	// Relative proportion 20:50 among survivors is kept.
	ratio := newRoot.Sizes[0] / newRoot.Sizes[1]
	if math.Abs(ratio-20.0/50.0) > 1e-9 {
		t.Errorf("survivor proportions changed: %v", newRoot.Sizes)
	}
}

func TestRemoveNodeUnknownIDReturnsSameRoot(t *testing.T) {
	root := fixture()
	if got := RemoveNode(root, "ghost"); got != Node(root) {
		t.Fatalf("unknown target must return the identical root")
	}
}

func TestUpdateLeaf(t *testing.T) {
	root := fixture()
	newRoot := UpdateLeaf(root, "b", func(l *Leaf) *Leaf {
		l.Tabs = append(l.Tabs, TerminalTab("b2"))
		return l
	})
	if FindLeaf(newRoot, "b").tabIndex("term-b2") < 0 {
		t.Fatalf("update not applied")
	}
	if FindLeaf(root, "b").tabIndex("term-b2") >= 0 {
		t.Fatalf("input tree was mutated")
	}
	if got := UpdateLeaf(root, "sub", func(l *Leaf) *Leaf { return l }); got != Node(root) {
		t.Fatalf("updating a split id must be a no-op")
	}
}

func TestNormalizeCollapsesDegenerateSplits(t *testing.T) {
	root := &Split{
		ID:  "outer",
		Dir: Horizontal,
		Children: []Node{
			&Split{ID: "single", Dir: Vertical, Children: []Node{&Leaf{ID: "a"}}, Sizes: []float64{100}},
			&Leaf{ID: "b"},
		},
		Sizes: []float64{50, 50},
	}
	got := Normalize(root, seqGen("f")).(*Split)
	if got.Children[0].NodeID() != "a" {
		t.Fatalf("single-child split not collapsed: %q", got.Children[0].NodeID())
	}
}

func TestNormalizeRescalesAndRepairsSizes(t *testing.T) {
	root := &Split{
		ID:  "s",
		Dir: Horizontal,
		Children: []Node{
			&Leaf{ID: "a"}, &Leaf{ID: "b"}, &Leaf{ID: "c"},
		},
		Sizes: []float64{math.NaN(), -3, 2},
	}
	got := Normalize(root, seqGen("f")).(*Split)
	sum := 0.0
	for _, sz := range got.Sizes {
		if math.IsNaN(sz) || sz <= 0 {
			t.Fatalf("bad size survived normalize: %v", got.Sizes)
		}
		sum += sz
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("sizes sum to %v, want 100", sum)
	}
	// NaN and -3 both count as weight 1, the finite 2 keeps double weight.
	if math.Abs(got.Sizes[2]-50) > 1e-9 {
		t.Fatalf("positive weight not preserved: %v", got.Sizes)
	}
}

func TestNormalizeEmptyTreeYieldsFreshLeaf(t *testing.T) {
	got := Normalize(nil, seqGen("f"))
	leaf, ok := got.(*Leaf)
	if !ok || leaf.ID != "f1" {
		t.Fatalf("expected fresh leaf f1, got %#v", got)
	}
}

func TestNormalizeKeepsIdentityWhenAlreadyNormal(t *testing.T) {
	root := &Split{
		ID:       "s",
		Dir:      Horizontal,
		Children: []Node{&Leaf{ID: "a"}, &Leaf{ID: "b"}},
		Sizes:    []float64{50, 50},
	}
	if got := Normalize(root, seqGen("f")); got != Node(root) {
		t.Fatalf("normalize of a normal tree must return the identical root")
	}
}
