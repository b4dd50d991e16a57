// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"wtosc/internal/log"
)

func TestLoggingTransport(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.LevelDebug)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.LevelInfo)
	})

	lt := NewLoggingTransport()
	if err := lt.Send(map[string]int{"seq": 7}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := lt.Send(func() {}); err != nil {
		t.Fatalf("Send unencodable: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `{"seq":7}`) {
		t.Errorf("output missing encoded message:\n%s", out)
	}
	if !strings.Contains(out, "json:") {
		t.Errorf("output missing encode error:\n%s", out)
	}
}
