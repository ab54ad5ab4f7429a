package session

import (
	"reflect"
	"testing"
	"time"
)

func TestTranscriptText(t *testing.T) {
	tr := &Transcript{}
	tr.AppendUser("hi")
	tr.AppendAI("hello!")
	tr.AppendUser("that's all")

	want := "User: hi\nAI: hello!\nUser: that's all"
	if got := tr.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTranscriptWindow(t *testing.T) {
	tr := &Transcript{}
	for _, text := range []string{"one", "two", "three", "four"} {
		tr.AppendUser(text)
		tr.AppendAI("re: " + text)
	}

	window := tr.Window(2)
	if len(window) != 2 {
		t.Fatalf("len(window) = %d, want 2", len(window))
	}
	if window[0].UserText != "three" || window[1].UserText != "four" {
		t.Errorf("window = %v", window)
	}
}

func TestLastUserTexts(t *testing.T) {
	tr := &Transcript{}
	tr.AppendUser("alpha")
	tr.AppendAI("x")
	tr.AppendUser("beta")
	tr.AppendAI("y")
	tr.AppendUser("gamma")

	got := tr.LastUserTexts(2)
	if !reflect.DeepEqual(got, []string{"beta", "gamma"}) {
		t.Errorf("LastUserTexts = %v", got)
	}
}

func TestNewIDSortsChronologically(t *testing.T) {
	earlier := NewID(time.Date(2026, 8, 30, 9, 59, 59, 0, time.UTC))
	later := NewID(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))

	if earlier >= later {
		t.Errorf("IDs must sort chronologically: %q >= %q", earlier, later)
	}
}

func TestEventLine(t *testing.T) {
	cases := []struct {
		event Event
		want  string
	}{
		{Event{Kind: EventAI, Text: "hello"}, "AI: hello"},
		{Event{Kind: EventUser, Text: "hi"}, "USER: hi"},
		{Event{Kind: EventPersona, Text: "{}"}, "PERSONA: {}"},
		{Event{Kind: EventDone}, "DONE"},
	}

	for _, tc := range cases {
		if got := tc.event.Line(); got != tc.want {
			t.Errorf("Line() = %q, want %q", got, tc.want)
		}
	}
}
