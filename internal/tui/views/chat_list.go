package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/telechat/telechat/internal/chat"
	"github.com/telechat/telechat/internal/tui/ui"
)

// ChatList is the main chat list view (K9s-inspired table).
type ChatList struct {
	*tview.Table
	chats []chat.Chat
}

// NewChatList creates a new chat list table.
func NewChatList(theme *ui.Theme) *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Chats ")

	cl := &ChatList{Table: table}
	cl.ApplyTheme(theme)
	return cl
}

// ApplyTheme restyles the table for the current theme.
func (cl *ChatList) ApplyTheme(theme *ui.Theme) {
	cl.SetBackgroundColor(theme.BgColor)
	cl.SetBorderColor(theme.BorderColor)
	cl.SetTitleColor(theme.TitleColor)
	cl.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
}

// Update refreshes the chat list with new data.
func (cl *ChatList) Update(chats []chat.Chat, typing func(chatID string) bool) {
	cl.chats = chats
	cl.Clear()

	// Header row.
	cl.SetCell(0, 0, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 2, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, c := range chats {
		row := i + 1
		name := sanitizeForTerminal(c.Avatar + " " + c.Name)
		if c.Type == chat.TypeAI {
			name += " [AI]"
		}
		if c.IsOnline {
			name += " •"
		}
		if c.UnreadCount > 0 {
			name = fmt.Sprintf("* %s (%d)", name, c.UnreadCount)
		}

		preview := ""
		ts := ""
		if typing != nil && typing(c.ID) {
			preview = "typing..."
		} else if c.LastMessage != nil {
			preview = truncate(sanitizeForTerminal(c.LastMessage.Content), 40)
			ts = formatTimestamp(c.LastMessage.Timestamp)
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+name).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(preview)).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(row, 2, tview.NewTableCell(" "+ts).SetMaxWidth(12))
	}
}

// SelectedChat returns the id of the currently selected chat.
func (cl *ChatList) SelectedChat() string {
	row, _ := cl.GetSelection()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx].ID
	}
	return ""
}
