package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Player plays synthesized audio by shelling out to the platform's
// playback tool. The command template may be overridden via
// configuration; {in} is substituted with the audio file path.
type Player struct {
	command string
}

// NewPlayer picks the playback command for the current platform when
// none is configured.
func NewPlayer(command string) *Player {
	if command == "" {
		if runtime.GOOS == "darwin" {
			command = "afplay {in}"
		} else {
			command = "mpg123 -q {in}"
		}
	}
	return &Player{command: command}
}

// Play writes the clip to a temp file and blocks until the playback
// command exits.
func (p *Player) Play(ctx context.Context, audio []byte, format string) error {
	if len(audio) == 0 {
		return fmt.Errorf("no audio to play")
	}

	tmp, err := os.CreateTemp("", "playback-*"+extForFormat(format))
	if err != nil {
		return fmt.Errorf("failed to create playback file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write playback file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close playback file: %w", err)
	}

	args := buildCommand(p.command, map[string]string{
		"{in}": tmp.Name(),
	})
	if len(args) == 0 {
		return fmt.Errorf("empty play command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("play command %q failed: %w (%s)", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// extForFormat maps the gateway audio format to a file extension so the
// playback tool can sniff the container.
func extForFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "wav", "pcm":
		return ".wav"
	case "ogg", "ogg_opus":
		return ".ogg"
	default:
		return ".mp3"
	}
}
