package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/woodcut/treehouse/internal/core/event"
)

type Command int

const (
	CommandNone Command = iota
	CommandMove
	CommandQuit
)

var runeMoves = map[rune]event.Direction{
	'a': event.MoveLeft,
	'd': event.MoveRight,
	'w': event.MoveUp,
	's': event.MoveDown,
}

// KeyCommand maps a key press to a scene command. The direction is only
// meaningful for CommandMove.
func KeyCommand(ev *tcell.EventKey) (Command, event.Direction) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CommandQuit, 0
	case tcell.KeyLeft:
		return CommandMove, event.MoveLeft
	case tcell.KeyRight:
		return CommandMove, event.MoveRight
	case tcell.KeyUp:
		return CommandMove, event.MoveUp
	case tcell.KeyDown:
		return CommandMove, event.MoveDown
	case tcell.KeyRune:
		r := ev.Rune()
		if r == 'q' || r == 'Q' {
			return CommandQuit, 0
		}
		if dir, ok := runeMoves[r]; ok {
			return CommandMove, dir
		}
	}
	return CommandNone, 0
}
