// Package tui is the terminal client shell: chat list, message thread,
// composer and search, all rendered from store snapshots.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/telechat/telechat/internal/bus"
	"github.com/telechat/telechat/internal/chat"
	"github.com/telechat/telechat/internal/tui/keys"
	"github.com/telechat/telechat/internal/tui/ui"
	"github.com/telechat/telechat/internal/tui/views"
)

// Sender is the send-path surface the composer drives.
type Sender interface {
	Submit(chatID, text, replyToID string)
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	store    *chat.Store
	sender   Sender
	events   <-chan bus.Event
	unsub    func()
	registry *keys.Registry
	flash    *ui.FlashModel

	theme     *ui.Theme
	statusBar *views.StatusBar
	chatList  *views.ChatList
	filter    *tview.InputField
	msgView   *views.MessageView
	composer  *views.Composer
	searchV   *views.SearchView

	replyToID string
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(store *chat.Store, sender Sender, b *bus.Bus, profileName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.ThemeFor(store.DarkMode())

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		store:     store,
		sender:    sender,
		registry:  keys.NewRegistry(),
		flash:     ui.NewFlashModel(),
		theme:     theme,
		statusBar: views.NewStatusBar(theme),
		chatList:  views.NewChatList(theme),
		msgView:   views.NewMessageView(theme),
		composer:  views.NewComposer(theme),
		searchV:   views.NewSearchView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.filter = tview.NewInputField().
		SetLabel(" Filter: ").
		SetFieldWidth(0)

	a.events, a.unsub = b.Subscribe("", 64)

	a.statusBar.SetProfile(profileName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal("dark", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:dark", Visible: true,
		Handler: func() { a.store.ToggleDarkMode() },
	})
	a.registry.AddView(keys.ViewChats, "new", &keys.Action{
		Rune: 'n', Key: tcell.KeyRune,
		Description: "n:new chat", Visible: true,
		Handler: func() { a.newAIChat() },
	})
	a.registry.AddView(keys.ViewChats, "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "/:filter", Visible: true,
		Handler: func() { a.app.SetFocus(a.filter) },
	})
	a.registry.AddView(keys.ViewChat, "search", &keys.Action{
		Rune: 's', Key: tcell.KeyRune,
		Description: "s:search", Visible: true,
		Handler: func() { a.showSearch() },
	})
	a.registry.AddView(keys.ViewChat, "reply", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "r:reply", Visible: true,
		Handler: func() { a.startReply() },
	})
}

func (a *App) setupCallbacks() {
	a.chatList.SetSelectedFunc(func(row, col int) {
		if id := a.chatList.SelectedChat(); id != "" {
			a.openChat(id)
		}
	})

	a.filter.SetChangedFunc(func(text string) {
		a.store.SetSearchQuery(text)
	})
	a.filter.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter || key == tcell.KeyEscape {
			if key == tcell.KeyEscape {
				a.filter.SetText("")
				a.store.SetSearchQuery("")
			}
			a.app.SetFocus(a.chatList)
		}
	})

	a.composer.SetOnSend(func(text string) {
		chatID := a.store.ActiveChat()
		if chatID == "" {
			return
		}
		a.sender.Submit(chatID, text, a.replyToID)
		a.replyToID = ""
		a.composer.SetReplyTarget("")
	})

	a.searchV.SetOnQuery(func(query string) {
		a.store.SetMessageSearchQuery(query)
		a.searchV.Update(a.store.FilteredMessages(a.store.ActiveChat()))
		a.app.SetFocus(a.searchV.Results())
	})
}

func (a *App) setupLayout() {
	chatsFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.filter, 1, 0, false).
		AddItem(a.chatList, 0, 1, true)

	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage(string(keys.ViewChats), chatsFlex, true, true)
	a.pages.AddPage(string(keys.ViewChat), chatFlex, true, false)
	a.pages.AddPage(string(keys.ViewSearch), a.searchV, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		view := a.currentView()

		if event.Key() == tcell.KeyEscape {
			switch view {
			case keys.ViewChat:
				if a.replyToID != "" {
					a.cancelReply()
					return nil
				}
				a.showChats()
				return nil
			case keys.ViewSearch:
				a.searchV.Reset()
				a.store.SetMessageSearchQuery("")
				a.showChat()
				return nil
			}
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		// 'i' focuses the composer (only when not already in an input field).
		if view == keys.ViewChat && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			a.app.SetFocus(a.composer.InputField)
			return nil
		}

		if a.registry.HandleEvent(view, event) {
			return nil
		}

		return event
	})
}

func (a *App) openChat(id string) {
	a.store.SetActiveChat(id)
	a.store.MarkChatRead(id)
	if c, ok := a.store.ChatByID(id); ok {
		a.msgView.SetChatName(c.Name)
	}
	a.showChat()
}

func (a *App) showChats() {
	a.store.SetActiveChat("")
	a.refreshChats()
	a.switchTo(keys.ViewChats)
	a.app.SetFocus(a.chatList)
}

func (a *App) showChat() {
	a.refreshThread()
	a.switchTo(keys.ViewChat)
	a.app.SetFocus(a.msgView)
}

func (a *App) showSearch() {
	a.switchTo(keys.ViewSearch)
	a.app.SetFocus(a.searchV.Input())
}

func (a *App) switchTo(view keys.View) {
	a.pages.SwitchToPage(string(view))
	a.statusBar.SetHints(a.registry.Hints(view))
}

func (a *App) currentView() keys.View {
	page, _ := a.pages.GetFrontPage()
	return keys.View(page)
}

func (a *App) newAIChat() {
	c := chat.NewAIChat("")
	a.store.SetChats(append(a.store.Chats(), c))
	a.openChat(c.ID)
}

// startReply targets the newest counterpart message in the active chat.
func (a *App) startReply() {
	chatID := a.store.ActiveChat()
	msgs := a.store.MessagesFor(chatID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender != chat.SenderUser {
			a.replyToID = msgs[i].ID
			a.store.MarkReplying(chatID, msgs[i].ID)
			a.composer.SetReplyTarget(msgs[i].Content)
			a.app.SetFocus(a.composer.InputField)
			return
		}
	}
	a.flash.Info("nothing to reply to")
}

func (a *App) cancelReply() {
	a.replyToID = ""
	a.store.ClearReplying(a.store.ActiveChat())
	a.composer.SetReplyTarget("")
}

func (a *App) refreshChats() {
	a.chatList.Update(a.store.FilteredChats(), a.store.TypingIn)
}

func (a *App) refreshThread() {
	chatID := a.store.ActiveChat()
	if chatID == "" {
		return
	}
	a.msgView.Update(a.store.MessagesFor(chatID), a.store.TypingIn(chatID))
}

func (a *App) refresh() {
	switch a.currentView() {
	case keys.ViewChats:
		a.refreshChats()
	case keys.ViewChat:
		a.refreshThread()
	}
	a.statusBar.SetFlash(a.flash.Get())
}

// applyTheme restyles every view after a dark-mode toggle.
func (a *App) applyTheme() {
	a.theme = ui.ThemeFor(a.store.DarkMode())
	a.chatList.ApplyTheme(a.theme)
	a.msgView.ApplyTheme(a.theme)
	a.composer.ApplyTheme(a.theme)
	a.searchV.ApplyTheme(a.theme)
	a.statusBar.ApplyTheme(a.theme)
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	a.refreshChats()
	a.statusBar.SetHints(a.registry.Hints(keys.ViewChats))
	go a.eventLoop()
	go a.tickLoop()
	return a.app.Run()
}

// eventLoop redraws on every store event.
func (a *App) eventLoop() {
	for {
		select {
		case ev, ok := <-a.events:
			if !ok {
				return
			}
			dark := ev.Kind == bus.KindDisplayMode
			a.app.QueueUpdateDraw(func() {
				if dark {
					a.applyTheme()
				}
				a.refresh()
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// tickLoop keeps the clock and flash expiry moving.
func (a *App) tickLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetFlash(a.flash.Get())
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.unsub()
	a.app.Stop()
}
