package dialog

// ScreenID identifies where a session is in the conversation.
type ScreenID int

const (
	ScreenMenu ScreenID = iota
	ScreenScopeChoice
	ScreenUniversityTextEntry
	ScreenIntervalChoice
	ScreenNewsListing
	ScreenTrendsListing
	ScreenChartsListing
)

// Button is one labeled action offered on a screen.
type Button struct {
	Label string
	Data  string
}

// Screen is what the controller hands back to the transport: text,
// rows of buttons, and rendering hints. The transport owns how it is
// delivered (new message vs edit of the tapped one).
type Screen struct {
	Text               string
	Keyboard           [][]Button
	Markdown           bool
	DisableLinkPreview bool
}

// column builds a one-button-per-row keyboard, the layout every menu
// screen uses.
func column(buttons ...Button) [][]Button {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return rows
}

// chunk splits buttons into rows of at most perRow.
func chunk(buttons []Button, perRow int) [][]Button {
	var rows [][]Button
	for len(buttons) > perRow {
		rows = append(rows, buttons[:perRow])
		buttons = buttons[perRow:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}
