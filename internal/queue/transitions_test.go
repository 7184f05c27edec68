package queue

import (
	"errors"
	"testing"
)

func TestNextStatusTable(t *testing.T) {
	events := []Event{EventDispatch, EventSucceed, EventFail, EventReset, EventRequeue}
	want := map[Status]map[Event]Status{
		StatusPending: {
			EventDispatch: StatusConverting,
			EventReset:    StatusPending,
		},
		StatusConverting: {
			EventSucceed: StatusConverted,
			EventFail:    StatusError,
			EventRequeue: StatusPending,
		},
		StatusConverted: {
			EventDispatch: StatusConverting,
			EventReset:    StatusPending,
		},
		StatusError: {
			EventDispatch: StatusConverting,
			EventReset:    StatusPending,
		},
	}

	for _, from := range allStatuses {
		for _, event := range events {
			got, err := nextStatus(from, event)
			expected, allowed := want[from][event]
			if CanTransition(from, event) != allowed {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, event, !allowed, allowed)
			}
			if !allowed {
				var te *TransitionError
				if !errors.As(err, &te) || !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("%s --%s--> expected TransitionError, got %q, %v", from, event, got, err)
				}
				continue
			}
			if err != nil || got != expected {
				t.Errorf("%s --%s--> got %q, %v; want %q", from, event, got, err, expected)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Converted "); !ok || status != StatusConverted {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("encoding"); ok {
		t.Fatal("unknown status accepted")
	}
}
