package sse

import (
	"strings"
	"testing"
	"time"
)

func recvEvent(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestBrokerNoteEvents(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteEvent("created", "note-1")
	msg := recvEvent(t, ch)
	if !strings.Contains(msg, "event: note.created") || !strings.Contains(msg, `"id":"note-1"`) {
		t.Errorf("unexpected event: %q", msg)
	}

	b.PublishNoteEvent("deleted", "note-1")
	msg = recvEvent(t, ch)
	if !strings.Contains(msg, "event: note.deleted") {
		t.Errorf("unexpected event: %q", msg)
	}
}

func TestBrokerSessionEvents(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishSessionEvent("sess-1")
	msg := recvEvent(t, ch)
	if !strings.Contains(msg, "event: session.updated") || !strings.Contains(msg, `"sessionId":"sess-1"`) {
		t.Errorf("unexpected event: %q", msg)
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("client count = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("client count = %d, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
}

func TestBrokerCloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Close()
	b.Close()
	if _, ok := <-ch; ok {
		t.Error("channel still open after close")
	}
	b.PublishNoteEvent("updated", "note-x") // must not panic
}
