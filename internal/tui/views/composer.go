package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/telechat/telechat/internal/tui/ui"
)

// Composer is the text input for sending messages. When a reply target
// is set, the label shows who is being quoted.
type Composer struct {
	*tview.InputField
	onSend func(text string)
}

// NewComposer creates a new message composer.
func NewComposer(theme *ui.Theme) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}
	c.ApplyTheme(theme)

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			text := c.GetText()
			if text != "" {
				c.onSend(text)
				c.SetText("")
			}
		}
	})

	return c
}

// ApplyTheme restyles the input for the current theme.
func (c *Composer) ApplyTheme(theme *ui.Theme) {
	c.SetFieldBackgroundColor(theme.BgColor)
	c.SetFieldTextColor(theme.FgColor)
	c.SetLabelColor(theme.BorderFocusColor)
}

// SetOnSend sets the callback when a message is sent.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// SetReplyTarget shows or clears the quoted-reply label.
func (c *Composer) SetReplyTarget(preview string) {
	if preview == "" {
		c.SetLabel(" > ")
		return
	}
	c.SetLabel(" ↩ " + truncate(sanitizeForTerminal(preview), 20) + " > ")
}
