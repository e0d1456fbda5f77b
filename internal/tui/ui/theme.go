package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableHeaderBg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	TitleColor       tcell.Color
	UnreadColor      tcell.Color
	TypingColor      tcell.Color
	QuoteColor       tcell.Color
	FlashInfoColor   tcell.Color
	FlashErrColor    tcell.Color
}

// DarkTheme returns a k9s-inspired dark theme.
func DarkTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,
		TableHeaderFg:    tcell.ColorWhite,
		TableHeaderBg:    tcell.ColorBlack,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorAqua,
		TitleColor:       tcell.ColorFuchsia,
		UnreadColor:      tcell.ColorOrange,
		TypingColor:      tcell.ColorGreen,
		QuoteColor:       tcell.ColorGray,
		FlashInfoColor:   tcell.ColorNavajoWhite,
		FlashErrColor:    tcell.ColorOrangeRed,
	}
}

// LightTheme returns the light variant used when dark mode is off.
func LightTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorWhite,
		FgColor:          tcell.ColorBlack,
		BorderColor:      tcell.ColorDarkBlue,
		BorderFocusColor: tcell.ColorBlue,
		TableHeaderFg:    tcell.ColorBlack,
		TableHeaderBg:    tcell.ColorWhite,
		TableCursorFg:    tcell.ColorWhite,
		TableCursorBg:    tcell.ColorDarkBlue,
		TitleColor:       tcell.ColorDarkMagenta,
		UnreadColor:      tcell.ColorDarkRed,
		TypingColor:      tcell.ColorDarkGreen,
		QuoteColor:       tcell.ColorDarkGray,
		FlashInfoColor:   tcell.ColorDarkGoldenrod,
		FlashErrColor:    tcell.ColorRed,
	}
}

// ThemeFor maps the persisted dark-mode flag to a theme.
func ThemeFor(dark bool) *Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}
