// Package automation drives the desktop: it opens URLs, applications and
// folders and injects keystrokes, typing and scrolling into the focused
// window.
package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/browser"
)

// ErrUnsupported is returned for actions the current platform cannot do.
var ErrUnsupported = errors.New("not supported on this platform")

// ErrUnknownApp is returned by OpenApp for names outside Apps.
var ErrUnknownApp = errors.New("unknown application")

// Automator is everything the voice loop does to the desktop. Key and
// scroll actions are silently skipped when Enabled reports false.
type Automator interface {
	Enabled() bool
	OpenURL(ctx context.Context, url string) error
	OpenApp(ctx context.Context, name string) error
	OpenFolder(ctx context.Context, path string) error
	OpenWhatsApp(ctx context.Context) error
	Hotkey(ctx context.Context, keys ...string) error
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
	Scroll(ctx context.Context, amount int) error
}

// Apps maps each allowed application to its launch command per platform.
var Apps = map[string]map[string][]string{
	"notepad": {
		"windows": {`C:\Windows\System32\notepad.exe`},
		"darwin":  {"open", "-a", "TextEdit"},
		"linux":   {"gedit"},
	},
	"calculator": {
		"windows": {`C:\Windows\System32\calc.exe`},
		"darwin":  {"open", "-a", "Calculator"},
		"linux":   {"gnome-calculator"},
	},
}

// Runner starts an external command. Wait reports whether the caller
// needs the exit status or only a successful start.
type Runner func(ctx context.Context, wait bool, name string, args ...string) error

// ExecRunner runs commands with os/exec. Launched programs (wait false)
// are detached from ctx so they outlive the assistant, and are reaped in
// the background.
func ExecRunner(ctx context.Context, wait bool, name string, args ...string) error {
	if !wait {
		cmd := exec.Command(name, args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		go cmd.Wait()
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Options configures a Desktop.
type Options struct {
	Platform string // runtime.GOOS
	Enabled  bool   // key injection tool is installed
	Run      Runner // nil means ExecRunner
	OpenURL  func(string) error
	Logger   *slog.Logger
	// KeyPause follows each hotkey so the target window can react.
	KeyPause time.Duration
}

// Desktop is the Automator for the local machine.
type Desktop struct {
	platform string
	enabled  bool
	run      Runner
	openURL  func(string) error
	keyPause time.Duration
	logger   *slog.Logger
}

// NewDesktop creates a Desktop automator.
func NewDesktop(opt Options) *Desktop {
	if opt.Run == nil {
		opt.Run = ExecRunner
	}
	if opt.OpenURL == nil {
		opt.OpenURL = browser.OpenURL
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Desktop{
		platform: opt.Platform,
		enabled:  opt.Enabled,
		run:      opt.Run,
		openURL:  opt.OpenURL,
		keyPause: opt.KeyPause,
		logger:   opt.Logger,
	}
}

func (d *Desktop) Enabled() bool { return d.enabled }

func (d *Desktop) OpenURL(_ context.Context, url string) error {
	if err := d.openURL(url); err != nil {
		return fmt.Errorf("open url %s: %w", url, err)
	}
	return nil
}

func (d *Desktop) OpenApp(ctx context.Context, name string) error {
	perOS, ok := Apps[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownApp, name)
	}
	argv, ok := perOS[d.platform]
	if !ok {
		return fmt.Errorf("open %s: %w", name, ErrUnsupported)
	}
	return d.run(ctx, false, argv[0], argv[1:]...)
}

func (d *Desktop) OpenFolder(ctx context.Context, path string) error {
	var name string
	switch d.platform {
	case "windows":
		name = "explorer"
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	default:
		return fmt.Errorf("open folder: %w", ErrUnsupported)
	}
	return d.run(ctx, false, name, path)
}

// OpenWhatsApp launches the desktop client, preferring the per-user
// install and falling back to the Store package.
func (d *Desktop) OpenWhatsApp(ctx context.Context) error {
	if d.platform != "windows" {
		return fmt.Errorf("whatsapp: %w", ErrUnsupported)
	}

	exe := filepath.Join(os.Getenv("LOCALAPPDATA"), "WhatsApp", "WhatsApp.exe")
	if _, err := os.Stat(exe); err == nil {
		return d.run(ctx, false, exe)
	}
	return d.run(ctx, false, "explorer.exe", `shell:appsFolder\5319275A.WhatsAppDesktop_cv1g1gvanyjgm!App`)
}

func (d *Desktop) Hotkey(ctx context.Context, keys ...string) error {
	if !d.enabled || len(keys) == 0 {
		return nil
	}
	name, args, err := hotkeyArgs(d.platform, keys)
	if err != nil {
		return err
	}
	if err := d.run(ctx, true, name, args...); err != nil {
		d.logger.Warn("Hotkey error", "keys", keys, "err", err)
		return err
	}
	if d.keyPause > 0 {
		time.Sleep(d.keyPause)
	}
	return nil
}

func (d *Desktop) Type(ctx context.Context, text string) error {
	if !d.enabled || text == "" {
		return nil
	}
	name, args, err := typeArgs(d.platform, text)
	if err != nil {
		return err
	}
	if err := d.run(ctx, true, name, args...); err != nil {
		d.logger.Warn("Type error", "err", err)
		return err
	}
	return nil
}

func (d *Desktop) Press(ctx context.Context, key string) error {
	return d.Hotkey(ctx, key)
}

// Scroll moves the view; positive amounts scroll up.
func (d *Desktop) Scroll(ctx context.Context, amount int) error {
	if !d.enabled || amount == 0 {
		return nil
	}
	name, args, err := scrollArgs(d.platform, amount)
	if err != nil {
		return err
	}
	return d.run(ctx, true, name, args...)
}
