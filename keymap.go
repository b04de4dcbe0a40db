package main

// Key bindings, as reported by tea.KeyMsg.String().
const (
	KeyQuit        = "ctrl+c"
	KeyToggleSound = "ctrl+t"
	KeyFinish      = "ctrl+s"
	KeyArchive     = "ctrl+a"
	KeyNextGloss   = "tab"
	KeySaveGloss   = "ctrl+w"

	KeyBack   = "esc"
	KeyUp     = "up"
	KeyDown   = "down"
	KeyK      = "k"
	KeyJ      = "j"
	KeyLeft   = "left"
	KeyRight  = "right"
	KeyRemove = "d"
	KeyCopy   = "y"
	KeySwitch = "tab"
)
