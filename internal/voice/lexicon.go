package voice

import (
	"time"

	"jarvis/pkg/util"
)

var (
	WakeWords = []string{"hey jarvis", "ok jarvis", "wake up", "jarvis"}
	ExitWords = []string{"exit", "goodbye", "shut down"}
)

const (
	Greeting = "Hello sir, how can I assist you?"

	WakeTimeout    = 10 * time.Second
	CommandTimeout = 6 * time.Second
)

// Spoken lines that more than one handler uses.
const (
	replyGoodbye    = "Goodbye sir. Shutting down."
	replySleep      = "Going to sleep. Say a wake word to wake me up."
	replyAIError    = "Sorry, I encountered an error processing your request."
	replySearchFail = "Sorry, I couldn't perform the search."
)

// Site is an allowed website.
type Site struct {
	Name string
	URL  string
}

// Websites is checked in order; the first name found in a command wins.
var Websites = []Site{
	{"google", "https://www.google.com"},
	{"youtube", "https://www.youtube.com"},
	{"facebook", "https://www.facebook.com"},
	{"twitter", "https://www.twitter.com"},
	{"instagram", "https://www.instagram.com"},
	{"github", "https://www.github.com"},
	{"linkedin", "https://www.linkedin.com"},
	{"gmail", "https://mail.google.com"},
	{"amazon", "https://www.amazon.com"},
	{"netflix", "https://www.netflix.com"},
	{"stackoverflow", "https://stackoverflow.com"},
	{"chatgpt", "https://chat.openai.com"},
	{"reddit", "https://www.reddit.com"},
}

// AppNames lists the launchable applications in match order.
var AppNames = []string{"notepad", "calculator"}

// Folder is an allowed folder relative to the user's home directory.
type Folder struct {
	Name string
	Rel  string
}

var Folders = []Folder{
	{"documents", "Documents"},
	{"downloads", "Downloads"},
	{"desktop", "Desktop"},
	{"home", ""},
}

// HasWakeWord reports whether text contains a wake word.
func HasWakeWord(text string) bool { return util.ContainsAny(text, WakeWords...) }

// HasExitWord reports whether text contains an exit word.
func HasExitWord(text string) bool { return util.ContainsAny(text, ExitWords...) }
