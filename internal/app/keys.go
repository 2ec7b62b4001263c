package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/objpick/internal/selection"
)

// action is what a key press does. Selection commands are forwarded to the
// controller; the rest are handled by the app.
type action int

const (
	actionNone action = iota
	actionCommand
	actionSwitchBackend
	actionToggleAcceleration
	actionToggleWireframe
	actionDumpIDs
	actionQuit
)

var commandKeys = map[sdl.Scancode]selection.Command{
	sdl.SCANCODE_P: selection.PickCenter,
	sdl.SCANCODE_T: selection.ModeTranslate,
	sdl.SCANCODE_R: selection.ModeRotate,
	sdl.SCANCODE_S: selection.ModeScale,
	sdl.SCANCODE_C: selection.ClearSelection,
}

var appKeys = map[sdl.Scancode]action{
	sdl.SCANCODE_A:      actionToggleAcceleration,
	sdl.SCANCODE_B:      actionSwitchBackend,
	sdl.SCANCODE_F:      actionToggleWireframe,
	sdl.SCANCODE_I:      actionDumpIDs,
	sdl.SCANCODE_ESCAPE: actionQuit,
}

// keyAction maps a scancode to its action. cmd is set for actionCommand.
func keyAction(key sdl.Scancode) (a action, cmd selection.Command) {
	if c, ok := commandKeys[key]; ok {
		return actionCommand, c
	}
	if a, ok := appKeys[key]; ok {
		return a, 0
	}
	return actionNone, 0
}
