package bus

import (
	"testing"
	"time"
)

func TestPublishWithZeroSubscribersSucceeds(t *testing.T) {
	topic := NewTopic[int](4)
	topic.Publish(1) // must not panic or block
}

func TestSubscribeReceivesOnlyFutureFrames(t *testing.T) {
	topic := NewTopic[int](4)
	topic.Publish(1)

	sub := topic.Subscribe()
	defer sub.Close()

	topic.Publish(2)

	select {
	case v := <-sub.C():
		if v != 2 {
			t.Fatalf("got %d, want 2", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}

	select {
	case v, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected extra value %d", v)
		}
	default:
	}
}

func TestPublishDropsOldestWhenSubscriberLags(t *testing.T) {
	topic := NewTopic[int](2)
	sub := topic.Subscribe()
	defer sub.Close()

	topic.Publish(1)
	topic.Publish(2)
	topic.Publish(3) // backlog full at publish time, drops 1

	if got := sub.Lagged(); got != 1 {
		t.Fatalf("Lagged() = %d, want 1", got)
	}

	first := <-sub.C()
	second := <-sub.C()
	if first != 2 || second != 3 {
		t.Fatalf("got (%d, %d), want (2, 3)", first, second)
	}
}

func TestLaggedResetsAfterRead(t *testing.T) {
	topic := NewTopic[int](1)
	sub := topic.Subscribe()
	defer sub.Close()

	topic.Publish(1)
	topic.Publish(2)
	_ = sub.Lagged()
	if got := sub.Lagged(); got != 0 {
		t.Fatalf("Lagged() after reset = %d, want 0", got)
	}
}

func TestCloseUnregistersSubscriber(t *testing.T) {
	topic := NewTopic[int](4)
	sub := topic.Subscribe()
	if got := topic.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", got)
	}

	sub.Close()
	if got := topic.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount() after Close = %d, want 0", got)
	}

	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel to drain to zero value, ok=false")
	}
}

func TestMultipleSubscribersEachReceiveIndependently(t *testing.T) {
	topic := NewTopic[int](4)
	a := topic.Subscribe()
	b := topic.Subscribe()
	defer a.Close()
	defer b.Close()

	topic.Publish(42)

	if v := <-a.C(); v != 42 {
		t.Fatalf("subscriber a got %d, want 42", v)
	}
	if v := <-b.C(); v != 42 {
		t.Fatalf("subscriber b got %d, want 42", v)
	}
}

func TestBusPublishRoutesToFrameTopicOnly(t *testing.T) {
	b := New()
	frames := b.Frames.Subscribe()
	status := b.Status.Subscribe()
	defer frames.Close()
	defer status.Close()

	b.Publish(nil)

	select {
	case <-frames.C():
	case <-time.After(time.Second):
		t.Fatal("expected a frame on the frame topic")
	}

	select {
	case <-status.C():
		t.Fatal("status topic should not have received anything")
	default:
	}
}
