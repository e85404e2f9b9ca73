// Package tui is the interactive search surface. It runs its own
// search session client-side, using the daemon's HTTP API as corpus,
// so every keystroke goes through the same debounce and
// last-issued-wins pipeline the daemon session uses.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/ghndrx/hearth-mobile-sub001/internal/bus"
	"github.com/ghndrx/hearth-mobile-sub001/internal/client"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
	"github.com/ghndrx/hearth-mobile-sub001/internal/tui/views"
	"github.com/rivo/tview"
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	client    *client.Client
	bus       *bus.Bus
	session   *search.Session
	statusBar *views.StatusBar
	searchV   *views.SearchView
	filters   search.Filters
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, profileName string, debounce time.Duration) *App {
	ctx, cancel := context.WithCancel(context.Background())
	b := bus.New()
	session := search.NewSession(search.NewEngine(c, nil), b, nil, debounce)

	a := &App{
		app:       tview.NewApplication(),
		client:    c,
		bus:       b,
		session:   session,
		statusBar: views.NewStatusBar(),
		searchV:   views.NewSearchView(),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupCallbacks() {
	a.searchV.SetOnQuery(func(query string) {
		a.session.Issue(a.ctx, query, a.filters)
	})
}

func (a *App) setupLayout() {
	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.searchV, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab {
			if a.app.GetFocus() == a.searchV.Input() {
				a.app.SetFocus(a.searchV.Results())
			} else {
				a.app.SetFocus(a.searchV.Input())
			}
			return nil
		}
		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.searchV.Input())
			return nil
		}

		// Let the query field handle all remaining keys normally.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'q':
				a.app.Stop()
				return nil
			case 'f':
				a.filters.HasFile = !a.filters.HasFile
				a.reissue()
				return nil
			case 'c':
				// Constrain to the selected result's channel, or clear
				// the channel filter when one is already set.
				if a.filters.ChannelID != "" {
					a.filters.ChannelID = ""
				} else if r, ok := a.searchV.SelectedResult(); ok {
					a.filters.ChannelID = r.Message.ChannelID
				}
				a.reissue()
				return nil
			case 'a':
				if a.filters.AuthorID != "" {
					a.filters.AuthorID = ""
				} else if r, ok := a.searchV.SelectedResult(); ok {
					a.filters.AuthorID = r.Message.AuthorID
				}
				a.reissue()
				return nil
			case 'r':
				a.session.Refresh(a.ctx)
				return nil
			}
		}

		return event
	})
}

func (a *App) reissue() {
	a.session.Issue(a.ctx, a.searchV.Input().GetText(), a.filters)
}

// Run starts the TUI application.
func (a *App) Run() error {
	events, unsub := a.bus.Subscribe("search.", 64)
	go func() {
		defer unsub()
		for {
			select {
			case <-events:
				snap := a.session.Snapshot()
				a.app.QueueUpdateDraw(func() {
					a.render(snap)
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()

	// Poll the daemon so messages ingested while the TUI is open show
	// up without retyping the query.
	go a.startRefreshLoop()

	// Initial match-all so the table is populated before the first
	// keystroke.
	a.session.Issue(a.ctx, "", a.filters)

	return a.app.Run()
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if a.session.Status() != search.StatusIdle {
				a.session.Refresh(a.ctx)
			}
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) render(snap search.Snapshot) {
	switch snap.Status {
	case search.StatusError:
		msg := "search failed"
		if snap.Err != nil {
			msg = snap.Err.Error()
		}
		a.statusBar.SetFlash(msg)
	default:
		a.statusBar.SetFlash("")
		a.searchV.Update(snap.Results)
	}
	a.statusBar.SetStatus(string(snap.Status), len(snap.Results))
	a.statusBar.SetFilters(a.filterSummary())
}

func (a *App) filterSummary() string {
	var parts []string
	if a.filters.ChannelID != "" {
		parts = append(parts, "channel:"+a.filters.ChannelID)
	}
	if a.filters.AuthorID != "" {
		parts = append(parts, "author:"+a.filters.AuthorID)
	}
	if a.filters.HasFile {
		parts = append(parts, "has:file")
	}
	return strings.Join(parts, " ")
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
