package ui

import (
	"testing"

	"github.com/avhagen/loom/layout"
)

func TestComputeRectsTilesExactly(t *testing.T) {
	root := &layout.Split{
		ID:        "s",
		Dir:       layout.Horizontal,
		Sizes:     []float64{33.3, 33.3, 33.4},
		Children: []layout.Node{
			&layout.Leaf{ID: "a"},
			&layout.Leaf{ID: "b"},
			&layout.Leaf{ID: "c"},
		},
	}
	rects := ComputeRects(root, Rect{Width: 100, Height: 40})

	sum := 0
	prevEnd := 0
	for _, id := range []string{"a", "b", "c"} {
		r := rects[id]
		if r.X != prevEnd {
			t.Fatalf("pane %s starts at %d, want %d", id, r.X, prevEnd)
		}
		if r.Height != 40 || r.Y != 0 {
			t.Fatalf("pane %s rect = %+v", id, r)
		}
		sum += r.Width
		prevEnd = r.X + r.Width
	}
	if sum != 100 {
		t.Fatalf("widths sum to %d, want 100", sum)
	}
}

func TestComputeRectsNestedSplits(t *testing.T) {
	root := &layout.Split{
		ID:        "outer",
		Dir:       layout.Horizontal,
		Sizes:     []float64{50, 50},
		Children: []layout.Node{
			&layout.Leaf{ID: "left"},
			&layout.Split{
				ID:        "inner",
				Dir:       layout.Vertical,
				Sizes:     []float64{25, 75},
				Children: []layout.Node{
					&layout.Leaf{ID: "top"},
					&layout.Leaf{ID: "bottom"},
				},
			},
		},
	}
	rects := ComputeRects(root, Rect{Width: 80, Height: 40})

	if r := rects["left"]; r != (Rect{X: 0, Y: 0, Width: 40, Height: 40}) {
		t.Fatalf("left = %+v", r)
	}
	if r := rects["top"]; r != (Rect{X: 40, Y: 0, Width: 40, Height: 10}) {
		t.Fatalf("top = %+v", r)
	}
	if r := rects["bottom"]; r != (Rect{X: 40, Y: 10, Width: 40, Height: 30}) {
		t.Fatalf("bottom = %+v", r)
	}
}

func TestComputeRectsSizesNeedNotSumTo100(t *testing.T) {
	// Rects are proportional to the size total, whatever it is.
	root := &layout.Split{
		ID:        "s",
		Dir:       layout.Vertical,
		Sizes:     []float64{1, 3},
		Children: []layout.Node{
			&layout.Leaf{ID: "a"},
			&layout.Leaf{ID: "b"},
		},
	}
	rects := ComputeRects(root, Rect{Width: 10, Height: 40})
	if rects["a"].Height != 10 || rects["b"].Height != 30 {
		t.Fatalf("heights = %d/%d, want 10/30", rects["a"].Height, rects["b"].Height)
	}
}

func TestPaneAt(t *testing.T) {
	rects := map[string]Rect{
		"a": {X: 0, Y: 0, Width: 50, Height: 40},
		"b": {X: 50, Y: 0, Width: 50, Height: 40},
	}
	if id, ok := PaneAt(rects, 10, 10); !ok || id != "a" {
		t.Fatalf("PaneAt(10,10) = %q, %v", id, ok)
	}
	if id, ok := PaneAt(rects, 50, 0); !ok || id != "b" {
		t.Fatalf("PaneAt(50,0) = %q, %v", id, ok)
	}
	if _, ok := PaneAt(rects, 200, 10); ok {
		t.Fatal("PaneAt outside bounds should miss")
	}
}
