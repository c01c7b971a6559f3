package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"jarvis/internal/api"
	"jarvis/internal/app"
	"jarvis/internal/audio"
	"jarvis/internal/automation"
	"jarvis/internal/config"
	"jarvis/internal/ipc"
	"jarvis/internal/listen"
	"jarvis/internal/notify"
	"jarvis/internal/tts"
	"jarvis/internal/voice"
	"jarvis/pkg/stt"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configPath := cli.StringP("config", "c", "", "YAML config file")
	logLevel := cli.StringP("log", "l", "", "Log level (debug, info, warn, error)")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS5 proxy address for the model API")
	model := cli.String("model", "", "Generative model name")
	replay := cli.StringSlice("replay", nil, "Audio files to use instead of the microphone")
	stdin := cli.Bool("stdin", false, "Read commands as text lines from stdin")
	httpAddr := cli.String("http", "", "Also serve the HTTP API on this address")
	beepFile := cli.String("beep", "", "Wake cue sound file")
	socket := cli.String("socket", ipc.SocketPath, "Control socket path")
	cli.Parse()

	cfg, _, err := app.Bootstrap(app.Flags{
		EnvFile:    *envFile,
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
		Proxy:      *proxyAddr,
		Model:      *model,
	}, os.Stdout)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *beepFile != "" {
		cfg.Voice.BeepFile = *beepFile
	}

	log.Info("Booting up")

	caps := config.Detect(cfg, nil)
	log.Debug("Capabilities", "platform", caps.Platform, "datastore", caps.Datastore,
		"genai", caps.GenAI, "automation", caps.Automation, "speech", caps.Speech)

	a, err := app.New(cfg, caps, log.Default())
	if err != nil {
		log.Error("Failed to start services", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	listener, closeListener, err := newListener(cfg, *stdin, *replay)
	if err != nil {
		log.Error("Failed to init listener", "err", err)
		os.Exit(1)
	}
	defer closeListener()

	log.Debug("Loaded listener")

	var speaker voice.Speaker
	if caps.Speech {
		speaker = &tts.Espeak{Voice: cfg.Voice.EspeakVoice}
	} else {
		log.Warn("espeak-ng not found, replies are printed only")
	}

	var onWake func()
	if _, err := os.Stat(cfg.Voice.BeepFile); err == nil {
		beeper := &notify.Beeper{Path: cfg.Voice.BeepFile}
		onWake = func() {
			if err := beeper.Beep(); err != nil {
				log.Warn("Failed to play wake cue", "err", err)
			}
		}
	}

	loop := voice.NewLoop(voice.Options{
		Listener: listener,
		Speaker:  speaker,
		Agents:   a.Agents,
		Automator: automation.NewDesktop(automation.Options{
			Platform: caps.Platform,
			Enabled:  caps.Automation,
			KeyPause: 250 * time.Millisecond,
		}),
		Platform: caps.Platform,
		Logger:   log.Default(),
		OnWake:   onWake,
	})

	ctl, err := ipc.StartServer(*socket, controlHandler(loop, cancel))
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer ctl.Close()

	if *httpAddr != "" {
		srv := api.NewServer(api.Options{
			Address:    *httpAddr,
			Platform:   caps.Platform,
			Automation: caps.Automation,
			Asker:      a.Agents,
			Evaluator:  a.Eval,
			Bus:        a.Bus,
			Logger:     log.Default(),
		})
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("HTTP server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("Boot up - successful")

	if err := loop.Run(ctx); err != nil {
		log.Error("Voice loop failed", "err", err)
	}
	log.Info("Shut down")
}

// newListener picks the input source: stdin text, recorded files or the
// live microphone.
func newListener(cfg *config.Config, stdin bool, replay []string) (voice.Listener, func(), error) {
	if stdin {
		return listen.NewScript(os.Stdin), func() {}, nil
	}

	whisper, err := stt.NewTranscriber(cfg.Voice.WhisperModel)
	if err != nil {
		return nil, nil, err
	}
	opt := stt.Options{Language: cfg.Voice.Language}

	if len(replay) > 0 {
		return listen.NewReplay(replay, whisper, opt, log.Default()), func() { whisper.Close() }, nil
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		whisper.Close()
		return nil, nil, err
	}

	mic := &listen.Mic{
		Recorder:    rec,
		Transcriber: whisper,
		Options:     opt,
		Logger:      log.Default(),
	}
	if cfg.Voice.Duck {
		mic.Ducker = audio.NewDucker([]string{"jarvis"}, 10)
	}

	return mic, func() {
		rec.Close()
		whisper.Close()
	}, nil
}

// controlHandler serves jarvis-ctl. Exit also cancels the loop so a
// blocking listen returns promptly.
func controlHandler(loop *voice.Loop, cancel context.CancelFunc) ipc.Handler {
	return func(msg ipc.ControlMessage) ipc.Reply {
		status, err := loop.Control(msg.Cmd)
		if err != nil {
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ipc.Reply{Error: err.Error()}
		}
		if msg.Cmd == ipc.CmdExit {
			cancel()
		}

		raw, err := json.Marshal(status)
		if err != nil {
			return ipc.Reply{Error: err.Error()}
		}
		return ipc.Reply{OK: true, Status: raw}
	}
}
