package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/navstack"
)

// MessageType represents the type of feed message.
type MessageType string

const (
	MessageOutcome    MessageType = "outcome"
	MessageReplay     MessageType = "replay"
	MessageNavigation MessageType = "navigation"
)

// Message is sent to feed clients via WebSocket.
type Message struct {
	Type    MessageType  `json:"type"`
	Time    time.Time    `json:"time"`
	Outcome *OutcomeView `json:"outcome,omitempty"`
	Replay  *ReplayView  `json:"replay,omitempty"`
	Nav     *NavView     `json:"navigation,omitempty"`
}

// ReplayView describes a replayed pending link.
type ReplayView struct {
	Link   *LinkView `json:"link,omitempty"`
	Result NavView   `json:"result"`
}

// Feed broadcasts dispatch outcomes, replays and history changes to
// WebSocket clients. It is a deeplink.Middleware; RecordReplay is a
// deeplink.ReplayHook and ObserveNavigation a navstack observer.
type Feed struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	now      func() time.Time
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // dev tooling, any origin
			},
		},
		now: time.Now,
	}
}

// Handle implements deeplink.Middleware.
func (f *Feed) Handle(ctx context.Context, d deeplink.Delivery, next deeplink.Handler) deeplink.Outcome {
	out := next(ctx, d)
	view := NewOutcomeView(out)
	f.broadcast(Message{Type: MessageOutcome, Outcome: &view})
	return out
}

// RecordReplay broadcasts the result of a replayed pending link.
func (f *Feed) RecordReplay(link *deeplink.ParsedLink, res deeplink.NavResult) {
	f.broadcast(Message{Type: MessageReplay, Replay: &ReplayView{
		Link:   NewLinkView(link),
		Result: NewNavView(res),
	}})
}

// ObserveNavigation broadcasts a history change.
func (f *Feed) ObserveNavigation(c navstack.Change) {
	f.broadcast(Message{Type: MessageNavigation, Nav: &NavView{
		Method: string(c.Method),
		Path:   c.Path,
		Depth:  c.Depth,
	}})
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := f.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.drop(conn)
}

// broadcast sends a message to all connected clients.
func (f *Feed) broadcast(msg Message) {
	msg.Time = f.now().UTC()
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	f.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.RUnlock()

	// A websocket.Conn supports one concurrent writer.
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			f.drop(client)
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	_, ok := f.clients[conn]
	delete(f.clients, conn)
	f.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close closes all client connections.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.clients {
		client.Close()
		delete(f.clients, client)
	}
}
