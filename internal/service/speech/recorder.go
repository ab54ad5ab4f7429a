package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Recorder captures fixed-duration microphone clips by shelling out to
// the platform's capture tool. The command template may be overridden
// via configuration; {out}, {rate} and {seconds} are substituted.
type Recorder struct {
	command    string
	sampleRate int
}

// NewRecorder picks the capture command for the current platform when
// none is configured.
func NewRecorder(command string, sampleRate int) *Recorder {
	if command == "" {
		if runtime.GOOS == "darwin" {
			command = "sox -d -q -r {rate} -c 1 -b 16 {out} trim 0 {seconds}"
		} else {
			command = "arecord -q -f S16_LE -r {rate} -c 1 -d {seconds} {out}"
		}
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &Recorder{command: command, sampleRate: sampleRate}
}

// Record captures one WAV clip of the given duration and returns its
// bytes.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) ([]byte, error) {
	tmp, err := os.CreateTemp("", "capture-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	seconds := int(duration.Seconds())
	if seconds <= 0 {
		seconds = 1
	}

	args := buildCommand(r.command, map[string]string{
		"{out}":     tmp.Name(),
		"{rate}":    strconv.Itoa(r.sampleRate),
		"{seconds}": strconv.Itoa(seconds),
	})
	if len(args) == 0 {
		return nil, fmt.Errorf("empty record command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("record command %q failed: %w (%s)", args[0], err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}
	return data, nil
}

// buildCommand splits a command template on whitespace and substitutes
// the placeholders. Paths with spaces are not supported; capture files
// live in the temp dir, which is safe.
func buildCommand(template string, subs map[string]string) []string {
	fields := strings.Fields(template)
	for i, field := range fields {
		for placeholder, value := range subs {
			field = strings.ReplaceAll(field, placeholder, value)
		}
		fields[i] = field
	}
	return fields
}
