package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/session"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outbound struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// client is one websocket connection and the session state it owns.
type client struct {
	id      string
	conn    *websocket.Conn
	planner *session.Planner

	// ctx is canceled when the connection goes away, aborting generation
	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	mu    sync.Mutex
	user  *models.User
	admin bool
}

func newClient(conn *websocket.Conn, planner *session.Planner) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{
		id:      newConnID(),
		conn:    conn,
		planner: planner,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *client) close() {
	c.cancel()
	c.conn.Close()
}

func (c *client) currentUser() (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

func (c *client) setUser(u *models.User) {
	c.mu.Lock()
	c.user = u
	c.admin = false
	c.mu.Unlock()

	id := ""
	if u != nil {
		id = u.ID
	}
	// A plan never carries over from one account to another.
	c.planner.Reset()
	c.planner.SetUser(id)
}

func (c *client) setAdmin() {
	c.mu.Lock()
	c.admin = true
	c.mu.Unlock()
}

func (c *client) isAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.admin
}

func (c *client) write(msg outbound) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		logger.Debug("error sending message", "client", c.id, "type", msg.Type, "error", err)
	}
}

func (c *client) sendMessage(messageType string, data any) {
	c.write(outbound{Type: messageType, Data: data})
}

func (c *client) sendError(code, message string) {
	c.write(outbound{Type: "error", Message: message, Code: code})
}
