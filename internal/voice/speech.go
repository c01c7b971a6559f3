package voice

import (
	"context"
	"strings"
)

// speak logs text and says it sentence by sentence, abandoning the rest
// once a stop is requested. AI replies are skipped while muted.
func (l *Loop) speak(ctx context.Context, text string, ai bool) {
	if strings.TrimSpace(text) == "" {
		return
	}

	l.logger.Info("Assistant: " + text)

	if l.speaker == nil {
		return
	}
	if ai && l.session.Muted() {
		l.logger.Info("(Gemini muted)")
		return
	}

	l.session.clearStop()

	for _, sentence := range Sentences(text) {
		if l.session.StopReading() {
			l.logger.Info("Speech interrupted")
			return
		}
		if err := l.speaker.Say(ctx, sentence); err != nil {
			l.logger.Warn("TTS error", "err", err)
			return
		}
	}
}

// Sentences splits text on ". " and terminates each piece with a period.
// Blank pieces are dropped.
func Sentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ". ") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, "!") {
			s += "."
		}
		out = append(out, s)
	}
	return out
}
