package queue

// Event names a status transition trigger.
type Event string

const (
	EventDispatch Event = "dispatch"
	EventSucceed  Event = "succeed"
	EventFail     Event = "fail"
	EventReset    Event = "reset"
	EventRequeue  Event = "requeue"
)

type transitionKey struct {
	from  Status
	event Event
}

var transitions = map[transitionKey]Status{
	{StatusPending, EventDispatch}:   StatusConverting,
	{StatusError, EventDispatch}:     StatusConverting,
	{StatusConverted, EventDispatch}: StatusConverting,
	{StatusConverting, EventSucceed}: StatusConverted,
	{StatusConverting, EventFail}:    StatusError,
	{StatusConverted, EventReset}:    StatusPending,
	{StatusError, EventReset}:        StatusPending,
	{StatusPending, EventReset}:      StatusPending,
	{StatusConverting, EventRequeue}: StatusPending,
}

// nextStatus is the only place that decides a job's next status.
func nextStatus(from Status, event Event) (Status, error) {
	to, ok := transitions[transitionKey{from: from, event: event}]
	if !ok {
		return "", &TransitionError{From: from, Event: event}
	}
	return to, nil
}

// CanTransition reports whether event is allowed from status.
func CanTransition(from Status, event Event) bool {
	_, err := nextStatus(from, event)
	return err == nil
}
