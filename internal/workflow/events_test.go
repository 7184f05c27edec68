package workflow

import "testing"

func TestEventBusSinceAndTrim(t *testing.T) {
	bus := NewEventBus(3)
	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: EventTypeStatus})
	}
	all := bus.Since(0)
	if len(all) != 3 || all[0].Seq != 3 || all[2].Seq != 5 {
		t.Fatalf("unexpected retained events: %+v", all)
	}
	if got := bus.Since(4); len(got) != 1 || got[0].Seq != 5 {
		t.Fatalf("Since(4) = %+v", got)
	}
	if got := bus.Since(5); len(got) != 0 {
		t.Fatalf("Since(5) = %+v", got)
	}
}

func TestEventBusSubscribe(t *testing.T) {
	bus := NewEventBus(0)
	ch, unsubscribe := bus.Subscribe(1)

	bus.Publish(Event{Type: EventTypeProgress, Progress: 10})
	bus.Publish(Event{Type: EventTypeProgress, Progress: 20})

	ev := <-ch
	if ev.Progress != 10 || ev.Seq != 1 || ev.Timestamp.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
	select {
	case extra := <-ch:
		t.Fatalf("full subscriber should drop events, got %+v", extra)
	default:
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	bus.Publish(Event{Type: EventTypeStatus})
}
