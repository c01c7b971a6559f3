// Package eventstream tails the assistant's live event stream over
// websocket, reconnecting when the server goes away.
package eventstream

import (
	"context"
	"encoding/json"
	log "log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"jarvis/internal/events"
)

// DefaultReconnect is the pause between reconnection attempts.
const DefaultReconnect = 2 * time.Second

type Client struct {
	url    string
	reconn time.Duration
	dialer *ws.Dialer

	mu   sync.Mutex
	conn *ws.Conn
}

// Dial connects to url, e.g. ws://localhost:8000/ws/events. A reconnect
// of zero uses DefaultReconnect.
func Dial(ctx context.Context, url string, reconn time.Duration) (*Client, error) {
	log.Debug("init event stream", "url", url)

	if reconn <= 0 {
		reconn = DefaultReconnect
	}
	c := &Client{url: url, reconn: reconn, dialer: ws.DefaultDialer}

	conn, _, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	return c, nil
}

// Run calls fn for every event until ctx is cancelled. Dropped
// connections are retried; undecodable frames are skipped.
func (c *Client) Run(ctx context.Context, fn func(events.Event)) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, msg, err := c.current().ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("Trying to reconnect on", "url", c.url, "err", err)
			if err := c.reconnect(ctx); err != nil {
				return err
			}
			log.Info("Successfully reconnected")
			continue
		}

		var e events.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			log.Warn("Failed to parse event", "msg", string(msg), "err", err)
			continue
		}
		fn(e)
	}
}

// Close closes the current connection.
func (c *Client) Close() error {
	return c.current().Close()
}

func (c *Client) current() *ws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) reconnect(ctx context.Context) error {
	c.Close()
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			return nil
		}

		t := time.NewTimer(c.reconn)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
