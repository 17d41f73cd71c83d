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
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return ""
}

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.Publish(Event{Type: "ping", Data: map[string]string{"k": "v"}})

	msg := recvEvent(t, ch)
	if !strings.Contains(msg, "event: ping") {
		t.Errorf("message = %q, want event: ping", msg)
	}
	if !strings.Contains(msg, `"k":"v"`) {
		t.Errorf("message = %q, want payload", msg)
	}
}

func TestBroker_PostEventThrottlesReport(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()

	b.PublishPostEvent("updated", "_posts/a.md")
	first := recvEvent(t, ch)
	if !strings.Contains(first, "post.updated") {
		t.Errorf("first = %q, want post.updated", first)
	}
	report := recvEvent(t, ch)
	if !strings.Contains(report, "report.updated") {
		t.Errorf("second = %q, want report.updated", report)
	}

	// Within the throttle window only the post event goes out.
	b.PublishPostEvent("deleted", "_posts/a.md")
	next := recvEvent(t, ch)
	if !strings.Contains(next, "post.deleted") {
		t.Errorf("third = %q, want post.deleted", next)
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra event %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestBroker_ClientCount(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after unsubscribe = %d, want 0", n)
	}
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	b := NewBroker(time.Hour)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("expected closed client channel after broker close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after close = %d, want 0", n)
	}
}
