package utils

import (
	"io"
	"log"
	"net/http"
	"strings"
)

// SetupSSEHeaders prepares the response for Server-Sent Events.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// SendSSELine writes one event payload as an SSE frame. A payload
// containing newlines becomes consecutive data fields of the same
// frame, so multi-line text survives the wire intact.
func SendSSELine(w http.ResponseWriter, flusher http.Flusher, line string) {
	var frame strings.Builder
	for _, segment := range strings.Split(line, "\n") {
		frame.WriteString("data: ")
		frame.WriteString(strings.TrimSuffix(segment, "\r"))
		frame.WriteString("\n")
	}
	frame.WriteString("\n")

	if _, err := io.WriteString(w, frame.String()); err != nil {
		log.Printf("failed to write sse frame: %v", err)
		return
	}
	flusher.Flush()
}
