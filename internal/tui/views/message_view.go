package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/telechat/telechat/internal/chat"
	"github.com/telechat/telechat/internal/tui/ui"
)

// MessageView displays messages for a single chat.
type MessageView struct {
	*tview.TextView
	chatName string
}

// NewMessageView creates a new message view.
func NewMessageView(theme *ui.Theme) *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	mv := &MessageView{TextView: tv}
	mv.ApplyTheme(theme)
	return mv
}

// ApplyTheme restyles the view for the current theme.
func (mv *MessageView) ApplyTheme(theme *ui.Theme) {
	mv.SetBackgroundColor(theme.BgColor)
	mv.SetBorderColor(theme.BorderColor)
	mv.SetTitleColor(theme.TitleColor)
	mv.SetTextColor(theme.FgColor)
}

// SetChatName updates the title with the chat name.
func (mv *MessageView) SetChatName(name string) {
	mv.chatName = name
	mv.SetTitle(fmt.Sprintf(" %s ", sanitizeForTerminal(name)))
}

// Update refreshes the message view. typing appends a transient
// "typing..." line under the last message.
func (mv *MessageView) Update(msgs []chat.Message, typing bool) {
	mv.Clear()

	for _, m := range msgs {
		sender := mv.chatName
		ticks := ""
		if m.Sender == chat.SenderUser {
			sender = "You"
			ticks = " " + statusTicks(m.Status)
		}

		if m.ReplyTo != nil {
			quoted := truncate(sanitizeForTerminal(m.ReplyTo.Content), 60)
			_, _ = fmt.Fprintf(mv, "  [::d]┃ %s[-:-:-]\n", tview.Escape(quoted))
		}

		ts := formatTimestamp(m.Timestamp)
		_, _ = fmt.Fprintf(mv, "[::b]%s[-:-:-] [::d]%s[-:-:-]%s\n%s\n\n",
			tview.Escape(sender), ts, ticks, tview.Escape(sanitizeForTerminal(m.Content)))
	}

	if typing {
		_, _ = fmt.Fprintf(mv, "[green::d]%s is typing...[-:-:-]\n", tview.Escape(mv.chatName))
	}

	mv.ScrollToEnd()
}
