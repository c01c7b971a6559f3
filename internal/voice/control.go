package voice

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned by Control for unrecognized commands.
var ErrUnknownCommand = errors.New("unknown command")

// Control applies an out-of-band command ("stop", "mute", "unmute",
// "sleep", "exit" or "status") and returns the resulting status. Sleep and
// exit take effect at the loop's next turn; callers that need an
// immediate exit also cancel the loop's context.
func (l *Loop) Control(cmd string) (Status, error) {
	switch cmd {
	case "stop":
		l.interrupt()
	case "mute":
		l.session.SetMuted(true)
	case "unmute":
		l.session.SetMuted(false)
	case "sleep":
		l.interrupt()
		l.session.RequestSleep()
	case "exit":
		l.interrupt()
		l.session.RequestExit()
	case "status":
	default:
		return l.session.Status(), fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return l.session.Status(), nil
}
