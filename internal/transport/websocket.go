// SPDX-License-Identifier: MIT
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"wtosc/internal/log"
)

// ControlMessage is sent by clients to change a parameter or issue a
// command, e.g. {"param":"frequency","value":220} or {"command":"reset"}.
// A param message without a value is rejected.
type ControlMessage struct {
	Param   string   `json:"param,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Command string   `json:"command,omitempty"`
}

// ControlReply answers a ControlMessage on the same connection.
type ControlReply struct {
	Type    string  `json:"type"` // "ack" or "error"
	Param   string  `json:"param,omitempty"`
	Value   float64 `json:"value"`
	Command string  `json:"command,omitempty"`
	Error   string  `json:"error,omitempty"`
}

const writeTimeout = time.Second

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// WebSocketTransport broadcasts JSON telemetry to every connected client
// and applies inbound ControlMessages to a ParameterSetter.
type WebSocketTransport struct {
	addr     string
	setter   ParameterSetter
	upgrader websocket.Upgrader
	logger   log.Logger

	clients   map[*wsClient]struct{}
	clientsMu sync.Mutex

	broadcast chan any
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// NewWebSocketTransport returns a transport serving on addr. setter may be
// nil, in which case control messages are rejected.
func NewWebSocketTransport(addr string, setter ParameterSetter) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr:   addr,
		setter: setter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local control surface, any origin.
			},
		},
		logger:    log.With("websocket"),
		clients:   make(map[*wsClient]struct{}),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}

	go wst.handleBroadcasts()
	return wst
}

// Handler serves the WebSocket endpoint at /ws.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// Serve listens on the configured address until ctx is cancelled.
func (wst *WebSocketTransport) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              wst.addr,
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	wst.logger.Infof("listening on ws://%s/ws", wst.addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Dropped counts messages discarded because the broadcast queue was full.
func (wst *WebSocketTransport) Dropped() uint64 {
	return wst.dropped.Load()
}

// handleWebSocket upgrades HTTP connections to WebSocket and reads control
// messages until the client goes away.
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wst.logger.Warnf("upgrade error: %v", err)
		return
	}
	client := &wsClient{conn: conn}

	wst.clientsMu.Lock()
	wst.clients[client] = struct{}{}
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	wst.logger.Infof("client connected, total: %d", total)

	defer wst.removeClient(client)

	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				wst.logger.Debugf("read: %v", err)
			}
			return
		}
		if err := client.writeJSON(wst.apply(msg)); err != nil {
			wst.logger.Debugf("reply: %v", err)
			return
		}
	}
}

// apply executes one control message and builds the reply.
func (wst *WebSocketTransport) apply(msg ControlMessage) ControlReply {
	fail := func(err error) ControlReply {
		return ControlReply{Type: "error", Param: msg.Param, Command: msg.Command, Error: err.Error()}
	}
	if wst.setter == nil {
		return fail(errors.New("remote control disabled"))
	}

	if msg.Command != "" {
		ctrl, ok := wst.setter.(Controller)
		if !ok {
			return fail(errors.New("commands not supported"))
		}
		switch msg.Command {
		case "start":
			ctrl.Start()
		case "stop":
			ctrl.Stop()
		case "reset":
			ctrl.Reset()
		default:
			return fail(fmt.Errorf("unknown command %q", msg.Command))
		}
		wst.logger.Infof("remote command %s", msg.Command)
		return ControlReply{Type: "ack", Command: msg.Command}
	}

	if msg.Param == "" {
		return fail(errors.New("missing param or command"))
	}
	if msg.Value == nil {
		return fail(fmt.Errorf("missing value for %s", msg.Param))
	}
	if err := wst.setter.Set(msg.Param, *msg.Value); err != nil {
		return fail(err)
	}
	value, _ := wst.setter.Get(msg.Param)
	wst.logger.Debugf("remote set %s = %v", msg.Param, value)
	return ControlReply{Type: "ack", Param: msg.Param, Value: value}
}

func (wst *WebSocketTransport) removeClient(c *wsClient) {
	wst.clientsMu.Lock()
	delete(wst.clients, c)
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	c.conn.Close()
	wst.logger.Infof("client disconnected, total: %d", total)
}

// handleBroadcasts sends queued messages to all connected clients.
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			clients := make([]*wsClient, 0, len(wst.clients))
			for c := range wst.clients {
				clients = append(clients, c)
			}
			wst.clientsMu.Unlock()

			for _, c := range clients {
				if err := c.writeJSON(data); err != nil {
					wst.logger.Warnf("error sending to client: %v", err)
					c.conn.Close() // the read loop removes it
				}
			}
		}
	}
}

// Send queues data for broadcast. When the queue is full the message is
// dropped rather than blocking the caller.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case <-wst.done:
		return ErrClosed
	default:
	}
	select {
	case wst.broadcast <- data:
	default:
		wst.dropped.Add(1)
	}
	return nil
}

// Close disconnects every client and stops broadcasting. The HTTP server
// is stopped by cancelling the context given to Serve.
func (wst *WebSocketTransport) Close() error {
	wst.closeOnce.Do(func() {
		close(wst.done)

		wst.clientsMu.Lock()
		for c := range wst.clients {
			c.conn.Close()
		}
		wst.clientsMu.Unlock()
	})
	return nil
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
