package tui

// Key binding constants used in handleKey.
const (
	KeyQuit       = "q"
	KeyQuitUpper  = "Q"
	KeyCtrlC      = "ctrl+c"
	KeyToggle     = " "
	KeySave       = "s"
	KeyCopy       = "c"
	KeyClear      = "x"
	KeyDelete     = "d"
	KeyHelp       = "?"
	KeyScrollUp   = "up"
	KeyScrollDown = "down"
)
