package viewer

import "strconv"

// Key is a key code. Values follow GLFW so window toolkits built on it can
// pass their codes through unchanged.
type Key int

// Action is the key transition reported with a key event.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

const (
	KeySpace       Key = 32
	KeyEscape      Key = 256
	KeyEnter       Key = 257
	KeyTab         Key = 258
	KeyBackspace   Key = 259
	KeyInsert      Key = 260
	KeyDelete      Key = 261
	KeyRight       Key = 262
	KeyLeft        Key = 263
	KeyDown        Key = 264
	KeyUp          Key = 265
	KeyPageUp      Key = 266
	KeyPageDown    Key = 267
	KeyHome        Key = 268
	KeyEnd         Key = 269
	KeyCapsLock    Key = 280
	KeyScrollLock  Key = 281
	KeyNumLock     Key = 282
	KeyPrintScreen Key = 283
	KeyPause       Key = 284
	KeyF1          Key = 290
	KeyF25         Key = 314
)

var keyNames = map[Key]string{
	KeySpace:       "Space",
	KeyEscape:      "Esc",
	KeyEnter:       "Enter",
	KeyTab:         "Tab",
	KeyBackspace:   "Backspace",
	KeyInsert:      "Insert",
	KeyDelete:      "Delete",
	KeyRight:       "Right arrow",
	KeyLeft:        "Left arrow",
	KeyDown:        "Down arrow",
	KeyUp:          "Up arrow",
	KeyPageUp:      "Page up",
	KeyPageDown:    "Page down",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyCapsLock:    "Caps lock",
	KeyScrollLock:  "Scroll lock",
	KeyNumLock:     "Num lock",
	KeyPrintScreen: "PrtScn",
	KeyPause:       "Pause",
}

// KeyName returns a short human-readable key name, or "Unknown".
func KeyName(k Key) string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	switch {
	case k >= 39 && k <= 96:
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF25:
		return "F" + strconv.Itoa(int(k-KeyF1)+1)
	}
	return "Unknown"
}
