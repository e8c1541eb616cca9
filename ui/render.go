// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ui/render.go
// Summary: Draws the pane tree onto a tcell screen.
//
// Each leaf gets a border, a tab bar on its top row and its active
// tab's content inside. Untouched subtrees keep node identity across
// operations, which lets the renderer skip panes whose node pointer
// did not change since the last frame.

package ui

import (
	"github.com/avhagen/loom/layout"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// ContentProvider supplies the visible lines for a tab.
type ContentProvider interface {
	TabTitle(tab layout.Tab) string
	TabContent(tab layout.Tab, width, height int) []string
}

// Renderer draws workspaces onto a tcell screen.
type Renderer struct {
	screen   tcell.Screen
	content  ContentProvider
	style    tcell.Style
	focus    tcell.Style
	tabStyle tcell.Style
	active   tcell.Style

	prevNodes  map[string]layout.Node
	lastRects  map[string]Rect
	lastTabs   map[string][]tabHit
	lastActive string
}

type tabHit struct {
	tabID string
	x0    int
	x1    int
}

// NewRenderer builds a renderer over an initialized screen.
func NewRenderer(screen tcell.Screen, content ContentProvider, fg, bg tcell.Color) *Renderer {
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	return &Renderer{
		screen:    screen,
		content:   content,
		style:     base,
		focus:     base.Foreground(tcell.ColorAqua),
		tabStyle:  base.Dim(true),
		active:    base.Reverse(true),
		prevNodes: make(map[string]layout.Node),
		lastRects: make(map[string]Rect),
		lastTabs:  make(map[string][]tabHit),
	}
}

// Draw renders the workspace. Panes whose subtree kept identity since
// the previous frame and whose rect is unchanged are left as drawn.
func (r *Renderer) Draw(ws *layout.Workspace) {
	root := ws.Root()
	activePane := ws.ActivePaneID()
	w, h := r.screen.Size()
	rects := ComputeRects(root, Rect{Width: w, Height: h})

	nodes := make(map[string]layout.Node)
	tabs := make(map[string][]tabHit)
	for _, leaf := range layout.LeafPanes(root) {
		rect, ok := rects[leaf.ID]
		if !ok || rect.Width < 3 || rect.Height < 3 {
			continue
		}
		nodes[leaf.ID] = leaf
		if r.prevNodes[leaf.ID] == layout.Node(leaf) && r.lastRects[leaf.ID] == rect &&
			(leaf.ID == activePane) == r.wasActive(leaf.ID) {
			tabs[leaf.ID] = r.lastTabs[leaf.ID]
			continue
		}
		tabs[leaf.ID] = r.drawPane(leaf, rect, leaf.ID == activePane)
	}
	r.prevNodes = nodes
	r.lastRects = rects
	r.lastTabs = tabs
	r.lastActive = activePane
	r.screen.Show()
}

func (r *Renderer) wasActive(paneID string) bool {
	return r.lastActive == paneID
}

// HitTab maps a click to the pane and tab under it. ok is false when
// the click landed outside any tab bar.
func (r *Renderer) HitTab(x, y int) (paneID, tabID string, ok bool) {
	for id, rect := range r.lastRects {
		if y != rect.Y+1 || !rect.Contains(x, y) {
			continue
		}
		for _, hit := range r.lastTabs[id] {
			if x >= hit.x0 && x < hit.x1 {
				return id, hit.tabID, true
			}
		}
		return id, "", true
	}
	return "", "", false
}

// HitPane maps a click to the pane under it.
func (r *Renderer) HitPane(x, y int) (string, bool) {
	return PaneAt(r.lastRects, x, y)
}

func (r *Renderer) drawPane(leaf *layout.Leaf, rect Rect, focused bool) []tabHit {
	border := r.style
	if focused {
		border = r.focus
	}
	r.drawBorder(rect, border)

	inner := Rect{X: rect.X + 1, Y: rect.Y + 1, Width: rect.Width - 2, Height: rect.Height - 2}
	hits := r.drawTabBar(leaf, inner)

	body := Rect{X: inner.X, Y: inner.Y + 1, Width: inner.Width, Height: inner.Height - 1}
	r.fill(body, r.style)
	if tab, ok := leaf.ActiveTab(); ok && body.Height > 0 {
		lines := r.content.TabContent(tab, body.Width, body.Height)
		for i, line := range lines {
			if i >= body.Height {
				break
			}
			r.drawText(body.X, body.Y+i, body.Width, line, r.style)
		}
	}
	return hits
}

// drawTabBar renders the tab titles on the pane's first inner row and
// returns their horizontal extents for click hit-testing.
func (r *Renderer) drawTabBar(leaf *layout.Leaf, inner Rect) []tabHit {
	r.fill(Rect{X: inner.X, Y: inner.Y, Width: inner.Width, Height: 1}, r.tabStyle)

	var hits []tabHit
	x := inner.X
	limit := inner.X + inner.Width
	for _, tab := range leaf.Tabs {
		title := " " + r.content.TabTitle(tab) + " "
		width := runewidth.StringWidth(title)
		if x+width > limit {
			title = runewidth.Truncate(title, limit-x, "…")
			width = runewidth.StringWidth(title)
		}
		style := r.tabStyle
		if tab.ID == leaf.ActiveTabID {
			style = r.active
		}
		r.drawText(x, inner.Y, width, title, style)
		hits = append(hits, tabHit{tabID: tab.ID, x0: x, x1: x + width})
		x += width
		if x >= limit {
			break
		}
	}
	return hits
}

func (r *Renderer) drawBorder(rect Rect, style tcell.Style) {
	x1, y1 := rect.X+rect.Width-1, rect.Y+rect.Height-1
	for x := rect.X + 1; x < x1; x++ {
		r.screen.SetContent(x, rect.Y, tcell.RuneHLine, nil, style)
		r.screen.SetContent(x, y1, tcell.RuneHLine, nil, style)
	}
	for y := rect.Y + 1; y < y1; y++ {
		r.screen.SetContent(rect.X, y, tcell.RuneVLine, nil, style)
		r.screen.SetContent(x1, y, tcell.RuneVLine, nil, style)
	}
	r.screen.SetContent(rect.X, rect.Y, tcell.RuneULCorner, nil, style)
	r.screen.SetContent(x1, rect.Y, tcell.RuneURCorner, nil, style)
	r.screen.SetContent(rect.X, y1, tcell.RuneLLCorner, nil, style)
	r.screen.SetContent(x1, y1, tcell.RuneLRCorner, nil, style)
}

func (r *Renderer) fill(rect Rect, style tcell.Style) {
	for y := rect.Y; y < rect.Y+rect.Height; y++ {
		for x := rect.X; x < rect.X+rect.Width; x++ {
			r.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawText writes a string clipped to width, advancing by rune width
// so wide glyphs occupy both cells.
func (r *Renderer) drawText(x, y, width int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if col+w > x+width {
			break
		}
		r.screen.SetContent(col, y, ch, nil, style)
		col += w
	}
}
