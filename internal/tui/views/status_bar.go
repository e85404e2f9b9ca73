package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays persistent profile and search session status.
type StatusBar struct {
	*tview.TextView
	profile string
	status  string
	count   int
	filters string
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetStatus updates the search status and result count display.
func (sb *StatusBar) SetStatus(status string, count int) {
	sb.status = status
	sb.count = count
	sb.render()
}

// SetFilters updates the active filter summary.
func (sb *StatusBar) SetFilters(summary string) {
	sb.filters = summary
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s (%d)", sb.profile, sb.status, sb.count)
	if sb.filters != "" {
		line += fmt.Sprintf(" | [green]%s[-]", sb.filters)
	}
	line += " | " + clock
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}
