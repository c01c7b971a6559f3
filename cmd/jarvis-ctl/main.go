package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	cli "github.com/spf13/pflag"

	"jarvis/internal/events"
	"jarvis/internal/eventstream"
	"jarvis/internal/ipc"
)

const cmdWatch = "watch"

func main() {
	socket := cli.StringP("socket", "s", ipc.SocketPath, "Control socket path")
	url := cli.StringP("url", "u", "ws://localhost:8000/ws/events", "Event stream URL for watch")
	cli.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: jarvis-ctl [flags] <%s|%s>\n", strings.Join(ipc.Commands, "|"), cmdWatch)
		cli.PrintDefaults()
	}
	cli.Parse()

	cmd := ipc.CmdStatus
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	if cmd == cmdWatch {
		if err := watch(*url); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Println("event stream:", err)
			os.Exit(1)
		}
		return
	}

	if !slices.Contains(ipc.Commands, cmd) {
		cli.Usage()
		os.Exit(2)
	}

	reply, err := ipc.SendCommand(*socket, cmd)
	if err != nil {
		fmt.Println("jarvis not running:", err)
		os.Exit(1)
	}
	if !reply.OK {
		fmt.Println("error:", reply.Error)
		os.Exit(1)
	}
	if len(reply.Status) > 0 {
		fmt.Println(string(reply.Status))
	}
}

func watch(url string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := eventstream.Dial(ctx, url, 0)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Run(ctx, func(e events.Event) {
		ts := e.Timestamp.Local().Format("15:04:05")
		switch e.Kind {
		case events.KindMetric:
			fmt.Printf("%s [METRIC] %s\n", ts, e.Metric)
		default:
			fmt.Printf("%s [LOG] %s.%s: %s\n", ts, e.Agent, e.Action, e.Payload)
		}
	})
}
