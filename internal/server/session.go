package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// instruction is one host-to-page message pushed over the web socket: load
// a page, take focus, or close the screen.
type instruction struct {
	Instruction string `json:"instruction"`
	Page        string `json:"page,omitempty"`
	// VisibilityTimeout is the load visibility timeout in seconds, for the
	// page-side timer. Only set on load instructions.
	VisibilityTimeout int `json:"visibilityTimeout,omitempty"`
}

const sessionSendBuffer = 16

// Session is one attached web view, reached over its web socket. All writes
// go through a single writer goroutine, the designated redispatch point for
// page loads scheduled from command handlers.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	send   chan instruction
	done   chan struct{}
	once   sync.Once
}

func newSession(conn *websocket.Conn, logger *slog.Logger) *Session {
	session := &Session{
		conn:   conn,
		logger: logger,
		send:   make(chan instruction, sessionSendBuffer),
		done:   make(chan struct{}),
	}
	go session.write()
	go session.read()
	return session
}

// push queues an instruction for the writer goroutine. It fails when the
// session is gone or its queue is stuck.
func (session *Session) push(message instruction) error {
	select {
	case <-session.done:
		return errors.New("web socket session is closed")
	case session.send <- message:
		return nil
	default:
		return errors.New("web socket session isn't draining instructions")
	}
}

func (session *Session) write() {
	for {
		select {
		case <-session.done:
			return
		case message := <-session.send:
			if err := session.conn.WriteJSON(message); err != nil {
				session.logger.Debug("session write failed", "error", err)
				session.close()
				return
			}
		}
	}
}

// read drains the connection. The page sends commands over POST, not the
// socket, so inbound traffic only matters for detecting the close.
func (session *Session) read() {
	for {
		if _, _, err := session.conn.ReadMessage(); err != nil {
			session.close()
			return
		}
	}
}

func (session *Session) close() {
	session.once.Do(func() {
		close(session.done)
		session.conn.Close()
	})
}

// alive reports whether the session can still take instructions.
func (session *Session) alive() bool {
	select {
	case <-session.done:
		return false
	default:
		return true
	}
}
