// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func TestRenderToFile(t *testing.T) {
	engine := newTestEngine(t, 2)
	path := filepath.Join(t.TempDir(), "render.wav")

	n, err := engine.RenderToFile(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("RenderToFile error: %v", err)
	}
	if n != 4800 {
		t.Errorf("frames = %d, want 4800", n)
	}

	got := decodeWAV(t, path)
	if got.channels != 2 || got.sampleRate != testSampleRate {
		t.Errorf("format = %d ch, %d Hz", got.channels, got.sampleRate)
	}
	if len(got.samples) != 2*n {
		t.Fatalf("decoded %d samples, want %d", len(got.samples), 2*n)
	}

	want := reference(t, n)
	for i := 0; i < n; i += 97 {
		if d := math.Abs(float64(got.samples[2*i] - want[i])); d > 2.0/32767 {
			t.Fatalf("frame %d = %v, want %v", i, got.samples[2*i], want[i])
		}
	}
}

func TestRenderOfflineIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")

	if _, err := newTestEngine(t, 1).RenderToFile(a, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := newTestEngine(t, 1).RenderToFile(b, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	sa, sb := decodeWAV(t, a).samples, decodeWAV(t, b).samples
	if len(sa) != len(sb) {
		t.Fatalf("lengths differ: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, sa[i], sb[i])
		}
	}
}

func TestRenderOfflineErrors(t *testing.T) {
	engine := newTestEngine(t, 1)
	if _, err := engine.RenderToFile(filepath.Join(t.TempDir(), "x.wav"), -time.Second); err == nil {
		t.Error("expected error for negative duration")
	}
	if _, err := engine.RenderToFile(filepath.Join(t.TempDir(), "missing", "x.wav"), time.Second); err == nil {
		t.Error("expected error for missing directory")
	}
}
