package session

// EventKind tags a progress event streamed to the client.
type EventKind string

const (
	EventAI      EventKind = "AI"
	EventUser    EventKind = "USER"
	EventPersona EventKind = "PERSONA"
	EventDone    EventKind = "DONE"
)

// Event is one line of session progress. Text carries the utterance
// for AI/USER events and the persona JSON for PERSONA events; it is
// empty for the DONE sentinel.
type Event struct {
	Kind EventKind
	Text string
}

// Line renders the event in the wire format consumed by clients:
// "AI: ...", "USER: ...", "PERSONA: <json>" or the bare "DONE"
// end-of-stream marker.
func (e Event) Line() string {
	if e.Kind == EventDone {
		return string(EventDone)
	}
	return string(e.Kind) + ": " + e.Text
}
