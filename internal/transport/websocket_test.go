// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeSetter struct {
	mu     sync.Mutex
	values map[string]float64
	cmds   []string
}

func newFakeSetter() *fakeSetter {
	return &fakeSetter{values: map[string]float64{"frequency": 440}}
}

func (f *fakeSetter) Set(name string, v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[name]; !ok {
		return errors.New("unknown parameter")
	}
	f.values[name] = v
	return nil
}

func (f *fakeSetter) Get(name string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[name]
	if !ok {
		return 0, errors.New("unknown parameter")
	}
	return v, nil
}

func (f *fakeSetter) Start() { f.record("start") }
func (f *fakeSetter) Stop()  { f.record("stop") }
func (f *fakeSetter) Reset() { f.record("reset") }

func (f *fakeSetter) record(cmd string) {
	f.mu.Lock()
	f.cmds = append(f.cmds, cmd)
	f.mu.Unlock()
}

func (f *fakeSetter) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cmds...)
}

func dial(t *testing.T, wst *WebSocketTransport) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(wst.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for wst.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func value(v float64) *float64 { return &v }

func exchange(t *testing.T, conn *websocket.Conn, msg ControlMessage) ControlReply {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply ControlReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func TestWebSocketSetParameter(t *testing.T) {
	setter := newFakeSetter()
	wst := NewWebSocketTransport("", setter)
	defer wst.Close()
	conn := dial(t, wst)

	reply := exchange(t, conn, ControlMessage{Param: "frequency", Value: value(220)})
	if reply.Type != "ack" || reply.Param != "frequency" || reply.Value != 220 {
		t.Errorf("reply = %+v, want ack frequency=220", reply)
	}
	if v, _ := setter.Get("frequency"); v != 220 {
		t.Errorf("frequency = %v, want 220", v)
	}

	reply = exchange(t, conn, ControlMessage{Param: "volume", Value: value(1)})
	if reply.Type != "error" || reply.Error == "" {
		t.Errorf("unknown param reply = %+v, want error", reply)
	}
}

func TestWebSocketMissingValue(t *testing.T) {
	setter := newFakeSetter()
	wst := NewWebSocketTransport("", setter)
	defer wst.Close()
	conn := dial(t, wst)

	for _, raw := range []string{`{"param":"frequency"}`, `{"param":"frequency","value":null}`, `{}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var reply ControlReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		if reply.Type != "error" || reply.Error == "" {
			t.Errorf("%s reply = %+v, want error", raw, reply)
		}
	}
	if v, _ := setter.Get("frequency"); v != 440 {
		t.Errorf("frequency = %v after messages without a value, want 440", v)
	}

	// An explicit zero is still a value.
	if reply := exchange(t, conn, ControlMessage{Param: "frequency", Value: value(0)}); reply.Type != "ack" {
		t.Errorf("zero value reply = %+v, want ack", reply)
	}
}

func TestWebSocketCommands(t *testing.T) {
	setter := newFakeSetter()
	wst := NewWebSocketTransport("", setter)
	defer wst.Close()
	conn := dial(t, wst)

	for _, cmd := range []string{"stop", "start", "reset"} {
		if reply := exchange(t, conn, ControlMessage{Command: cmd}); reply.Type != "ack" || reply.Command != cmd {
			t.Errorf("%s reply = %+v", cmd, reply)
		}
	}
	if reply := exchange(t, conn, ControlMessage{Command: "explode"}); reply.Type != "error" {
		t.Errorf("unknown command reply = %+v, want error", reply)
	}

	got := setter.commands()
	want := []string{"stop", "start", "reset"}
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("commands[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWebSocketNilSetter(t *testing.T) {
	wst := NewWebSocketTransport("", nil)
	defer wst.Close()
	conn := dial(t, wst)

	if reply := exchange(t, conn, ControlMessage{Param: "frequency", Value: value(1)}); reply.Type != "error" {
		t.Errorf("reply = %+v, want error", reply)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := NewWebSocketTransport("", nil)
	defer wst.Close()
	conn := dial(t, wst)

	if err := wst.Send(map[string]any{"type": "telemetry", "rms": 0.5}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var got map[string]any
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got["type"] != "telemetry" || got["rms"] != 0.5 {
		t.Errorf("broadcast = %v", got)
	}
}

func TestWebSocketSendAfterClose(t *testing.T) {
	wst := NewWebSocketTransport("", nil)
	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := wst.Send("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	wst := NewWebSocketTransport("", nil)
	defer wst.Close()

	done := make(chan struct{})
	go func() {
		for i := range 2000 {
			wst.Send(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked")
	}
}
