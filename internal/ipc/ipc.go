// Package ipc is the unix-socket control channel of a running voice
// daemon. Each connection carries one JSON ControlMessage and receives one
// JSON Reply.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const SocketPath = "/tmp/jarvis.sock"

// Control commands.
const (
	CmdStop   = "stop"
	CmdMute   = "mute"
	CmdUnmute = "unmute"
	CmdSleep  = "sleep"
	CmdExit   = "exit"
	CmdStatus = "status"
)

// Commands lists every accepted command.
var Commands = []string{CmdStop, CmdMute, CmdUnmute, CmdSleep, CmdExit, CmdStatus}

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type Reply struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Status json.RawMessage `json:"status,omitempty"`
}

// Handler answers one control message.
type Handler func(ControlMessage) Reply

// Server accepts control connections until closed.
type Server struct {
	ln   net.Listener
	path string
	done chan struct{}
}

// StartServer listens on path, replacing a stale socket file.
func StartServer(path string, handler Handler) (*Server, error) {
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{ln: ln, path: path, done: make(chan struct{})}
	go s.serve(handler)
	return s, nil
}

func (s *Server) serve(handler Handler) {
	defer close(s.done)
	for {
		conn, err := s.ln.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			log.Warn("IPC accept failed", "err", err)
			continue
		}
		go handleConn(conn, handler)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	err := s.ln.Close()
	<-s.done
	_ = os.Remove(s.path)
	return err
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("IPC bad message", "err", err)
		return
	}

	if err := json.NewEncoder(conn).Encode(handler(msg)); err != nil {
		log.Debug("IPC reply failed", "err", err)
	}
}

// SendCommand delivers cmd to the daemon listening on path and returns its
// reply.
func SendCommand(path, cmd string) (Reply, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return Reply{}, fmt.Errorf("send: %w", err)
	}

	var r Reply
	if err := json.NewDecoder(conn).Decode(&r); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return r, nil
}
