// Package tts speaks text through the espeak-ng library.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, const char *lang)
{
	if (!text)
	{ return -1; }

	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -2; }

	espeak_VOICE specs = { .languages = lang };
	espeak_SetVoiceByProperties(&specs);

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"
)

// DefaultVoice is the espeak language used when none is configured.
const DefaultVoice = "en"

// Espeak says one sentence at a time. espeak-ng is not reentrant, so
// calls are serialized.
type Espeak struct {
	Voice string

	mu sync.Mutex
}

// Say blocks until sentence has been played.
func (e *Espeak) Say(ctx context.Context, sentence string) error {
	if sentence == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	voice := e.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctext := C.CString(sentence)
	defer C.free(unsafe.Pointer(ctext))
	clang := C.CString(voice)
	defer C.free(unsafe.Pointer(clang))

	if rc := C.espeak_say(ctext, clang); rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}
