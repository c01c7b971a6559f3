package voice

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jarvis/internal/automation"
	"jarvis/pkg/util"
)

// Rule is one entry of the command dispatch table.
type Rule struct {
	Name   string
	Match  func(cmd string) bool
	Handle func(ctx context.Context, l *Loop, cmd string) next
}

func phrases(p ...string) func(string) bool {
	return func(cmd string) bool { return util.ContainsAny(cmd, p...) }
}

// Rules is evaluated top to bottom and the first match handles the
// command. "unmute" precedes "mute" because every unmute phrase contains
// a mute phrase. The last rule matches everything.
var Rules = []Rule{
	{"exit", HasExitWord, handleExit},
	{"stop-reading", phrases("stop reading", "stop talking"), handleStopReading},
	{"unmute", phrases("unmute gemini", "unmute ai"), handleUnmute},
	{"mute", phrases("mute gemini", "mute ai"), handleMute},
	{"recent-searches", phrases("recent searches", "search history"), handleRecentSearches},
	{"search", phrases("google search", "search for"), handleSearch},
	{"open", phrases("open"), handleOpen},
	{"sleep", phrases("sleep"), handleSleep},
	{"ai", func(string) bool { return true }, handleAI},
}

// RuleFor returns the rule that handles cmd.
func RuleFor(cmd string) Rule {
	for _, r := range Rules {
		if r.Match(cmd) {
			return r
		}
	}
	return Rules[len(Rules)-1]
}

func handleExit(ctx context.Context, l *Loop, _ string) next {
	l.interrupt()
	l.speak(ctx, replyGoodbye, false)
	return quit
}

func handleStopReading(_ context.Context, l *Loop, _ string) next {
	l.interrupt()
	l.logger.Info("Stopped reading")
	return stay
}

func handleUnmute(ctx context.Context, l *Loop, _ string) next {
	l.session.SetMuted(false)
	l.speak(ctx, "Gemini responses unmuted.", false)
	return stay
}

func handleMute(ctx context.Context, l *Loop, _ string) next {
	l.session.SetMuted(true)
	l.speak(ctx, "Gemini responses muted.", false)
	return stay
}

func handleRecentSearches(ctx context.Context, l *Loop, _ string) next {
	recent := l.session.RecentSearches(5)
	if len(recent) == 0 {
		l.speak(ctx, "No recent searches.", false)
		return stay
	}
	l.speak(ctx, "Here are your recent searches.", false)
	for i, q := range recent {
		l.speak(ctx, fmt.Sprintf("%d. %s", i+1, q), false)
	}
	return stay
}

func handleSearch(ctx context.Context, l *Loop, cmd string) next {
	if q := util.StripAll(cmd, "google search", "search for"); q != "" {
		l.googleSearch(ctx, q)
	}
	return stay
}

func handleOpen(ctx context.Context, l *Loop, cmd string) next {
	return l.open(ctx, cmd)
}

func handleSleep(ctx context.Context, l *Loop, _ string) next {
	l.speak(ctx, replySleep, false)
	return sleep
}

func handleAI(ctx context.Context, l *Loop, cmd string) (n next) {
	n = stay
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("AI response error", "err", r)
			l.speak(ctx, replyAIError, false)
		}
	}()

	if l.agents == nil {
		l.speak(ctx, replyAIError, false)
		return
	}

	res := l.agents.Run(ctx, cmd)
	if res.Executor != nil {
		l.speak(ctx, *res.Executor, false)
	}
	l.speak(ctx, res.AI, true)
	return
}

// SearchURL is the Google results page for q.
func SearchURL(q string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

func (l *Loop) googleSearch(ctx context.Context, q string) {
	if err := l.auto.OpenURL(ctx, SearchURL(q)); err != nil {
		l.logger.Warn("Search error", "err", err)
		l.speak(ctx, replySearchFail, false)
		return
	}
	l.session.AddSearch(q)
	l.speak(ctx, "Searching for "+q, false)
}

// open launches the first of WhatsApp, an application, a website or a
// folder named in cmd. Google, YouTube and WhatsApp continue into their
// control modes.
func (l *Loop) open(ctx context.Context, cmd string) next {
	if strings.Contains(cmd, "whatsapp") {
		if err := l.auto.OpenWhatsApp(ctx); err != nil {
			if errors.Is(err, automation.ErrUnsupported) {
				l.speak(ctx, "WhatsApp opening is only supported on Windows.", false)
			} else {
				l.logger.Warn("WhatsApp open error", "err", err)
				l.speak(ctx, "Unable to open WhatsApp.", false)
			}
			return stay
		}
		l.wait(ctx, 5*time.Second)
		return l.runMode(ctx, whatsappMode)
	}

	for _, app := range AppNames {
		if !strings.Contains(cmd, app) {
			continue
		}
		if err := l.auto.OpenApp(ctx, app); err != nil {
			l.logger.Warn("App open error", "app", app, "err", err)
			l.speak(ctx, "Sorry, I couldn't open "+app, false)
			return stay
		}
		l.speak(ctx, "Opening "+app, false)
		return stay
	}

	for _, site := range Websites {
		if !strings.Contains(cmd, site.Name) {
			continue
		}
		if err := l.auto.OpenURL(ctx, site.URL); err != nil {
			l.logger.Warn("Website open error", "site", site.Name, "err", err)
			l.speak(ctx, "Sorry, I couldn't open "+site.Name, false)
			return stay
		}
		l.speak(ctx, "Opening "+site.Name, false)
		l.wait(ctx, 3*time.Second)

		switch site.Name {
		case "youtube":
			return l.runMode(ctx, youtubeMode)
		case "google":
			return l.runMode(ctx, googleMode)
		}
		return stay
	}

	for _, f := range Folders {
		if !strings.Contains(cmd, f.Name) {
			continue
		}
		path := filepath.Join(l.home, f.Rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := l.auto.OpenFolder(ctx, path); err != nil {
			l.logger.Warn("Folder open error", "folder", f.Name, "err", err)
			return stay
		}
		l.speak(ctx, "Opening "+f.Name+" folder.", false)
		return stay
	}

	l.logger.Debug("Nothing to open", "cmd", cmd)
	return stay
}
