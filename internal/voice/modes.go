package voice

import (
	"context"
	"time"

	"jarvis/pkg/util"
)

// scrollAmount is the wheel distance for "scroll up" and "scroll down".
const scrollAmount = 700

type action struct {
	match func(cmd string) bool
	do    func(ctx context.Context, l *Loop, cmd string)
}

// mode is a sub-loop that keeps listening until one of its exit phrases.
type mode struct {
	state     State
	intro     string
	exit      []string
	exitReply string
	actions   []action
}

func (l *Loop) runMode(ctx context.Context, m mode) next {
	l.session.setState(m.state)
	l.speak(ctx, m.intro, false)

	for {
		if l.session.ExitRequested() {
			return quit
		}
		if l.session.takeSleep() {
			l.speak(ctx, replySleep, false)
			return sleep
		}

		cmd, closed := l.listen(ctx, CommandTimeout)
		if closed {
			return quit
		}
		if cmd == "" {
			continue
		}

		if util.ContainsAny(cmd, m.exit...) {
			l.speak(ctx, m.exitReply, false)
			return stay
		}
		for _, a := range m.actions {
			if a.match(cmd) {
				a.do(ctx, l, cmd)
				break
			}
		}
	}
}

func hotkey(keys ...string) func(context.Context, *Loop, string) {
	return func(ctx context.Context, l *Loop, _ string) {
		_ = l.auto.Hotkey(ctx, keys...)
	}
}

func hotkeySaying(reply string, keys ...string) func(context.Context, *Loop, string) {
	return func(ctx context.Context, l *Loop, _ string) {
		_ = l.auto.Hotkey(ctx, keys...)
		l.speak(ctx, reply, false)
	}
}

func scroll(amount int, reply string) func(context.Context, *Loop, string) {
	return func(ctx context.Context, l *Loop, _ string) {
		_ = l.auto.Scroll(ctx, amount)
		l.speak(ctx, reply, false)
	}
}

var googleMode = mode{
	state:     StateGoogle,
	intro:     "Google mode activated. You can search multiple times. Say 'exit google' to leave.",
	exit:      []string{"exit google", "stop google"},
	exitReply: "Exiting Google mode.",
	actions: []action{
		{phrases("search"), func(ctx context.Context, l *Loop, cmd string) {
			q := util.StripAll(cmd, "search for", "search")
			if q == "" {
				l.speak(ctx, "What would you like to search for?", false)
				return
			}
			l.googleSearch(ctx, q)
		}},
		{phrases("scroll down"), scroll(-scrollAmount, "Scrolling down")},
		{phrases("scroll up"), scroll(scrollAmount, "Scrolling up")},
		{phrases("back"), hotkeySaying("Going back", "alt", "left")},
		{phrases("forward"), hotkeySaying("Going forward", "alt", "right")},
		{phrases("refresh", "reload"), hotkeySaying("Refreshing page", "f5")},
		{phrases("new tab"), hotkeySaying("Opening new tab", "ctrl", "t")},
		{phrases("close tab"), hotkeySaying("Closing tab", "ctrl", "w")},
	},
}

var youtubeMode = mode{
	state:     StateYouTube,
	intro:     "YouTube control mode activated. Say 'exit youtube' to leave.",
	exit:      []string{"exit youtube", "stop youtube"},
	exitReply: "Exiting YouTube mode.",
	actions: []action{
		{phrases("pause", "resume", "play"), hotkey("k")},
		{phrases("next video", "skip"), hotkey("shift", "n")},
		{phrases("previous video"), hotkey("shift", "p")},
		{phrases("scroll down"), scroll(-scrollAmount, "Scrolling down")},
		{phrases("scroll up"), scroll(scrollAmount, "Scrolling up")},
		{phrases("full screen"), hotkey("f")},
	},
}

var whatsappMode = mode{
	state:     StateWhatsApp,
	intro:     "WhatsApp mode activated. Say 'exit whatsapp' to leave.",
	exit:      []string{"exit whatsapp", "stop whatsapp"},
	exitReply: "Leaving WhatsApp mode.",
	actions: []action{
		{phrases("search"), func(ctx context.Context, l *Loop, cmd string) {
			name := util.StripAll(cmd, "search")
			l.speak(ctx, "Searching for "+name, false)
			_ = l.auto.Hotkey(ctx, "ctrl", "f")
			l.wait(ctx, 300*time.Millisecond)
			_ = l.auto.Type(ctx, name)
			l.wait(ctx, 500*time.Millisecond)
			_ = l.auto.Press(ctx, "enter")
		}},
		{phrases("message", "send"), func(ctx context.Context, l *Loop, cmd string) {
			msg := util.StripAll(cmd, "message", "send")
			l.speak(ctx, "Sending message.", false)
			_ = l.auto.Type(ctx, msg)
			_ = l.auto.Press(ctx, "enter")
		}},
	},
}
