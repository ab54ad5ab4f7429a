package utils

import (
	"net/http/httptest"
	"testing"
)

func TestSendSSELineSingleLine(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSELine(rec, rec, "AI: hello there")

	if got, want := rec.Body.String(), "data: AI: hello there\n\n"; got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
	if !rec.Flushed {
		t.Error("response was not flushed")
	}
}

func TestSendSSELineMultiLinePayload(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSELine(rec, rec, "AI: first line\nsecond line")

	want := "data: AI: first line\ndata: second line\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
}

func TestSendSSELineBlankAndCRLFLines(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSELine(rec, rec, "one\r\n\nthree")

	want := "data: one\ndata: \ndata: three\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
}
