// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/loom/app.go
// Summary: Wires the workspace engine, terminal manager, file registry
// and renderer together and runs the interactive event loop.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/avhagen/loom/config"
	"github.com/avhagen/loom/editor"
	"github.com/avhagen/loom/layout"
	"github.com/avhagen/loom/snapshot"
	"github.com/avhagen/loom/term"
	"github.com/avhagen/loom/ui"
	"github.com/gdamore/tcell/v2"
)

type app struct {
	cfg      config.Config
	screen   tcell.Screen
	ws       *layout.Workspace
	terms    *term.Manager
	files    *editor.Registry
	store    *snapshot.Store
	renderer *ui.Renderer

	// ready gates terminal reconciliation until restore has finished,
	// so respawned sessions are remapped into their saved panes instead
	// of being synced into the active one.
	ready  atomic.Bool
	redraw chan struct{}
	quit   chan struct{}
}

func newApp(cfg config.Config, snapshotPath string, fromScratch bool) (*app, error) {
	a := &app{
		cfg:    cfg,
		ws:     layout.New(nil),
		redraw: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}

	fg, bg := tcell.ColorWhite, tcell.ColorBlack
	if config.QueryTerminalColors(cfg) {
		// Must run before tcell takes over the tty.
		fg, bg = ui.DefaultColors()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	a.screen = screen
	a.renderer = ui.NewRenderer(screen, a, fg, bg)

	a.terms = term.NewManager(config.Shell(cfg), config.ScrollbackLines(cfg), nil,
		func(live []string) {
			if a.ready.Load() {
				a.ws.SyncTerminalTabs(live)
			}
		},
		func(string) { a.requestRedraw() },
	)

	a.files, err = editor.NewRegistry(func(paths []string, activeTabID string) {
		a.ws.SyncEditorTabs(paths, activeTabID)
	})
	if err != nil {
		screen.Fini()
		return nil, err
	}

	if config.SnapshotEnabled(cfg) {
		store, err := snapshot.Open(snapshotPath)
		if err != nil {
			log.Printf("[loom] snapshot store unavailable: %v", err)
		} else {
			a.store = store
		}
	}

	a.ws.Subscribe(a)

	if a.store != nil && !fromScratch {
		a.restore()
	}
	a.ready.Store(true)

	if len(a.ws.ActivePaneTabs()) == 0 {
		a.spawnTerminal()
	}
	return a, nil
}

// LayoutChanged implements layout.Listener.
func (a *app) LayoutChanged() { a.requestRedraw() }

func (a *app) requestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// restore rebuilds the last saved workspace and respawns one terminal
// per saved session, remapping tab ids to the new sessions.
func (a *app) restore() {
	cap, ok, err := a.store.Latest()
	if err != nil {
		log.Printf("[loom] snapshot load: %v", err)
		return
	}
	if !ok {
		return
	}
	a.ws.Restore(snapshot.Rebuild(cap.Root), cap.ActivePaneID)

	cols, rows := a.paneBodySize(a.ws.ActivePaneID())
	idMap := a.terms.RemapAfterRestore(cap.TerminalIDs(), cols, rows)
	a.ws.RemapTerminalTabs(idMap)
	log.Printf("[loom] restored workspace with %d terminals", len(idMap))
}

func (a *app) shutdown() {
	if a.store != nil {
		if err := a.store.Save(snapshot.Capture(a.ws)); err != nil {
			log.Printf("[loom] snapshot save: %v", err)
		}
		a.store.Close()
	}
	a.terms.Close()
	a.files.Shutdown()
	if a.screen != nil {
		a.screen.Fini()
	}
}

func (a *app) eventLoop() error {
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.quit:
				return
			}
		}
	}()

	a.resizeTerminals()
	a.renderer.Draw(a.ws)

	for {
		select {
		case <-a.redraw:
			a.resizeTerminals()
			a.renderer.Draw(a.ws)

		case ev := <-events:
			switch tev := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
				a.resizeTerminals()
				a.renderer.Draw(a.ws)
			case *tcell.EventMouse:
				a.handleMouse(tev)
			case *tcell.EventKey:
				if quit := a.handleKey(tev); quit {
					close(a.quit)
					return nil
				}
			}
		}
	}
}

func (a *app) handleKey(ev *tcell.EventKey) (quit bool) {
	if ev.Key() == tcell.KeyCtrlQ {
		return true
	}

	if ev.Modifiers()&tcell.ModAlt != 0 {
		a.handleAltKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlT:
		a.spawnTerminal()
		return false
	case tcell.KeyCtrlW:
		a.closeActiveTab()
		return false
	}

	a.forwardToTerminal(ev)
	return false
}

func (a *app) handleAltKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case '\\':
			a.splitActive(layout.PosRight)
		case '-':
			a.splitActive(layout.PosBottom)
		case '[':
			a.cycleTab(-1)
		case ']':
			a.cycleTab(1)
		}
		return
	}
	switch ev.Key() {
	case tcell.KeyLeft:
		a.moveFocus(-1, 0)
	case tcell.KeyRight:
		a.moveFocus(1, 0)
	case tcell.KeyUp:
		a.moveFocus(0, -1)
	case tcell.KeyDown:
		a.moveFocus(0, 1)
	}
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	if paneID, tabID, ok := a.renderer.HitTab(x, y); ok {
		if tabID != "" {
			a.ws.SetActiveTab(paneID, tabID)
		} else {
			a.ws.SetActivePane(paneID)
		}
		return
	}
	if paneID, ok := a.renderer.HitPane(x, y); ok {
		a.ws.SetActivePane(paneID)
	}
}

func (a *app) spawnTerminal() {
	cols, rows := a.paneBodySize(a.ws.ActivePaneID())
	if _, err := a.terms.Spawn(cols, rows); err != nil {
		log.Printf("[loom] spawn terminal: %v", err)
	}
}

// splitActive spawns a terminal into the active pane, then moves its
// tab out into a fresh split on the chosen edge.
func (a *app) splitActive(pos layout.Position) {
	paneID := a.ws.ActivePaneID()
	cols, rows := a.paneBodySize(paneID)
	id, err := a.terms.Spawn(cols, rows)
	if err != nil {
		log.Printf("[loom] spawn terminal: %v", err)
		return
	}
	a.ws.MoveTabToNewSplit(layout.TerminalTab(id).ID, a.ws.ActivePaneID(), paneID, pos)
}

func (a *app) closeActiveTab() {
	tab, ok := a.ws.ActiveTab()
	if !ok {
		return
	}
	switch {
	case tab.IsTerminal():
		// The exit reap drops the tab through reconciliation.
		if err := a.terms.Kill(tab.TerminalID); err != nil {
			log.Printf("[loom] kill terminal %s: %v", tab.TerminalID, err)
		}
	case tab.IsEditor():
		a.files.Close(tab.FilePath)
	}
}

func (a *app) cycleTab(delta int) {
	pane := a.ws.ActivePane()
	if pane == nil || len(pane.Tabs) < 2 {
		return
	}
	idx := 0
	for i, t := range pane.Tabs {
		if t.ID == pane.ActiveTabID {
			idx = i
			break
		}
	}
	next := (idx + delta + len(pane.Tabs)) % len(pane.Tabs)
	a.ws.SetActiveTab(pane.ID, pane.Tabs[next].ID)
}

// moveFocus shifts the active pane to the nearest neighbor in the
// given direction, measured between rect centers.
func (a *app) moveFocus(dx, dy int) {
	rects := a.currentRects()
	cur, ok := rects[a.ws.ActivePaneID()]
	if !ok {
		return
	}
	cx, cy := cur.X+cur.Width/2, cur.Y+cur.Height/2

	bestID := ""
	bestDist := 1 << 30
	for id, r := range rects {
		if id == a.ws.ActivePaneID() {
			continue
		}
		rx, ry := r.X+r.Width/2, r.Y+r.Height/2
		if dx > 0 && rx <= cx || dx < 0 && rx >= cx ||
			dy > 0 && ry <= cy || dy < 0 && ry >= cy {
			continue
		}
		dist := (rx-cx)*(rx-cx) + (ry-cy)*(ry-cy)
		if dist < bestDist {
			bestDist = dist
			bestID = id
		}
	}
	if bestID != "" {
		a.ws.SetActivePane(bestID)
	}
}

func (a *app) forwardToTerminal(ev *tcell.EventKey) {
	id, ok := a.ws.ActiveTerminalID()
	if !ok {
		return
	}
	if p := keyBytes(ev); len(p) > 0 {
		if err := a.terms.Write(id, p); err != nil {
			log.Printf("[loom] write to %s: %v", id, err)
		}
	}
}

func (a *app) currentRects() map[string]ui.Rect {
	w, h := a.screen.Size()
	return ui.ComputeRects(a.ws.Root(), ui.Rect{Width: w, Height: h})
}

// paneBodySize returns the inner content size of a pane, borders and
// tab bar excluded.
func (a *app) paneBodySize(paneID string) (cols, rows int) {
	rects := a.currentRects()
	r, ok := rects[paneID]
	if !ok || r.Width < 3 || r.Height < 4 {
		w, h := a.screen.Size()
		return max(w-2, 1), max(h-3, 1)
	}
	return r.Width - 2, r.Height - 3
}

// resizeTerminals pushes each pane's body size down to the sessions it
// hosts.
func (a *app) resizeTerminals() {
	rects := a.currentRects()
	for _, leaf := range layout.LeafPanes(a.ws.Root()) {
		r, ok := rects[leaf.ID]
		if !ok || r.Width < 3 || r.Height < 4 {
			continue
		}
		for _, t := range leaf.Tabs {
			if t.IsTerminal() {
				a.terms.Resize(t.TerminalID, r.Width-2, r.Height-3)
			}
		}
	}
}

// TabTitle implements ui.ContentProvider.
func (a *app) TabTitle(tab layout.Tab) string {
	if tab.IsTerminal() {
		return "term " + tab.TerminalID
	}
	return filepath.Base(tab.FilePath)
}

// TabContent implements ui.ContentProvider.
func (a *app) TabContent(tab layout.Tab, width, height int) []string {
	if tab.IsTerminal() {
		return a.terms.Scrollback(tab.TerminalID, height)
	}

	data, err := os.ReadFile(tab.FilePath)
	if err != nil {
		return []string{fmt.Sprintf("cannot read %s: %v", tab.FilePath, err)}
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	header := fmt.Sprintf("%s [%s]", tab.FilePath, editor.DetectLanguage(tab.FilePath))
	out := append([]string{header, ""}, lines...)
	if len(out) > height {
		out = out[:height]
	}
	return out
}

// keyBytes translates a key event into the byte sequence a shell
// expects on its pty.
func keyBytes(ev *tcell.EventKey) []byte {
	switch ev.Key() {
	case tcell.KeyRune:
		return []byte(string(ev.Rune()))
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyEsc:
		return []byte{0x1b}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyHome:
		return []byte("\x1b[H")
	case tcell.KeyEnd:
		return []byte("\x1b[F")
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		return []byte{byte(ev.Key())}
	}
	return nil
}
