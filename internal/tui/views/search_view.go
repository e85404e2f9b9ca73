package views

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
	"github.com/rivo/tview"
)

// SearchView is the main search surface: a query input over a live
// results table.
type SearchView struct {
	*tview.Flex
	input   *tview.InputField
	results *tview.Table
	onQuery func(query string)
	data    []search.Result
}

// NewSearchView creates a new search view.
func NewSearchView() *SearchView {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true).SetTitle(" Results ")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(results, 0, 1, false)

	sv := &SearchView{
		Flex:    flex,
		input:   input,
		results: results,
	}

	return sv
}

// SetOnQuery sets the callback invoked on every keystroke in the query
// field.
func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.onQuery = fn
	sv.input.SetChangedFunc(func(text string) {
		if sv.onQuery != nil {
			sv.onQuery(text)
		}
	})
}

// Update refreshes the results table.
func (sv *SearchView) Update(results []search.Result) {
	sv.data = results
	sv.results.Clear()

	headers := []string{" CHANNEL", " AUTHOR", " MESSAGE", " TIME"}
	for col, h := range headers {
		sv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAttributes(tcell.AttrBold))
	}

	for i, r := range results {
		row := i + 1
		channel := r.ChannelName
		if r.ServerName != "" {
			channel = r.ServerName + "/" + r.ChannelName
		}
		content := sanitizeForTerminal(r.Message.Content)
		if r.Message.HasAttachments() {
			content = "[file] " + content
		}
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(channel)).SetMaxWidth(25))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(r.AuthorName)).SetMaxWidth(20))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(content)).SetExpansion(1))
		sv.results.SetCell(row, 3, tview.NewTableCell(" "+formatTimestamp(r.Message.CreatedAt)).SetMaxWidth(12))
	}
}

// SelectedResult returns the currently selected result, if any.
func (sv *SearchView) SelectedResult() (search.Result, bool) {
	row, _ := sv.results.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(sv.data) {
		return sv.data[idx], true
	}
	return search.Result{}, false
}

// Input returns the query input field.
func (sv *SearchView) Input() *tview.InputField {
	return sv.input
}

// Results returns the results table.
func (sv *SearchView) Results() *tview.Table {
	return sv.results
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
