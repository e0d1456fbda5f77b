package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/telechat/telechat/internal/tui/ui"
)

// StatusBar displays the profile name, key hints, clock and flash.
type StatusBar struct {
	*tview.TextView
	profile string
	hints   string
	flash   *ui.FlashMessage
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)

	sb := &StatusBar{TextView: tv}
	sb.ApplyTheme(theme)
	return sb
}

// ApplyTheme restyles the bar for the current theme.
func (sb *StatusBar) ApplyTheme(theme *ui.Theme) {
	sb.SetBackgroundColor(theme.TableCursorBg)
	sb.SetTextColor(theme.TableCursorFg)
	sb.render()
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetHints updates the key hints for the current view.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = strings.Join(hints, " ")
	sb.render()
}

// SetFlash sets the transient message.
func (sb *StatusBar) SetFlash(msg *ui.FlashMessage) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	clock := time.Now().Format("15:04")
	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", sb.profile, sb.hints, clock)
	if sb.flash != nil {
		color := "yellow"
		if sb.flash.Level == ui.FlashErr {
			color = "red"
		}
		line += fmt.Sprintf(" | [%s]%s[-]", color, tview.Escape(sb.flash.Text))
	}

	_, _ = fmt.Fprint(sb, line)
}
