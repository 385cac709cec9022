package logstream

import (
	"testing"
	"time"
)

func TestFanOut_ReplayThenTail(t *testing.T) {
	f := New(Config{BufferCapacity: 10, SubscriberQueueLen: 32, SoftDeadline: 200 * time.Millisecond})
	for i := 0; i < 5; i++ {
		f.Append("m1", "line")
	}

	sub := f.Subscribe("m1")
	defer sub.Close()

	var historical int
	sawComplete := false
	for i := 0; i < 5; i++ {
		e := <-sub.Events()
		if e.Kind != KindHistorical {
			t.Fatalf("expected historical, got %v", e.Kind)
		}
		historical++
	}
	if e := <-sub.Events(); e.Kind == KindHistoricalComplete {
		sawComplete = true
	}
	if historical != 5 || !sawComplete {
		t.Fatalf("historical=%d complete=%v", historical, sawComplete)
	}

	f.Append("m1", "live-1")
	e := <-sub.Events()
	if e.Kind != KindRealtime || e.Text != "live-1" {
		t.Fatalf("unexpected live event: %+v", e)
	}
}

func TestFanOut_RingBufferEviction(t *testing.T) {
	f := New(Config{BufferCapacity: 3, SubscriberQueueLen: 32})
	for i := 0; i < 5; i++ {
		f.Append("m1", string(rune('a' + i)))
	}
	sub := f.Subscribe("m1")
	defer sub.Close()

	var got []string
	for i := 0; i < 3; i++ {
		e := <-sub.Events()
		got = append(got, e.Text)
	}
	if got[0] != "c" || got[1] != "d" || got[2] != "e" {
		t.Fatalf("expected only the last 3 lines to survive, got %v", got)
	}
}

func TestFanOut_DropsSlowSubscriber(t *testing.T) {
	f := New(Config{BufferCapacity: 10, SubscriberQueueLen: 2, SoftDeadline: 20 * time.Millisecond})
	sub := f.Subscribe("m1")
	defer sub.Close()

	// Drain the historical_complete marker for an empty buffer.
	<-sub.Events()

	// Never drain further: overflow the queue and the soft deadline.
	for i := 0; i < 10; i++ {
		f.Append("m1", "x")
	}

	sawError := false
read:
	for i := 0; i < 4; i++ {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				break read
			}
			if e.Kind == KindError {
				sawError = true
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for drop notification")
		}
	}
	if !sawError {
		t.Fatalf("expected an error event announcing the drop")
	}
}

func TestFanOut_ClearHonorsHorizon(t *testing.T) {
	f := New(Config{BufferCapacity: 10, SubscriberQueueLen: 32})
	f.Append("m1", "old")
	f.Clear("m1", 0)

	stats := f.Stats()
	if stats["m1"].Lines != 0 {
		t.Fatalf("expected buffer wiped, got %d lines", stats["m1"].Lines)
	}
}
