package speech

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	speechmodel "github.com/onboardly/voice-twin/backend/internal/model/speech"
)

// Transcriber converts a recorded clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error)
}

// Synthesizer converts text to an audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error)
}

// AudioRecorder captures a fixed-duration clip from the microphone.
type AudioRecorder interface {
	Record(ctx context.Context, duration time.Duration) ([]byte, error)
}

// AudioPlayer blocks until the clip has been played back.
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte, format string) error
}

// Service ties local audio capture and playback to the speech gateway.
type Service struct {
	config      *speechmodel.Config
	recorder    AudioRecorder
	player      AudioPlayer
	transcriber Transcriber
	synthesizer Synthesizer
}

// NewService wires the default recorder, player and gateway clients for
// the given config.
func NewService(config *speechmodel.Config) *Service {
	return &Service{
		config:      config,
		recorder:    NewRecorder(config.RecordCommand, config.SampleRate),
		player:      NewPlayer(config.PlayCommand),
		transcriber: NewASRClient(config),
		synthesizer: NewTTSClient(config),
	}
}

// Listen records one clip of the given duration and transcribes it. An
// empty transcript means the user said nothing recognizable; that is
// not an error.
func (s *Service) Listen(ctx context.Context, sessionID string, duration time.Duration) (string, error) {
	audio, err := s.recorder.Record(ctx, duration)
	if err != nil {
		return "", fmt.Errorf("failed to record audio: %w", err)
	}
	if len(audio) == 0 {
		return "", nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.transcriber.Transcribe(ctx, &speechmodel.ASRRequest{
		SessionID: sessionID,
		AudioData: bytes.NewReader(audio),
		Format:    "wav",
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	log.Printf("[speech] session %s transcribed %d bytes -> %q", sessionID, len(audio), text)
	return text, nil
}

// Speak synthesizes the text and blocks until playback completes.
func (s *Service) Speak(ctx context.Context, sessionID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	synthCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.synthesizer.Synthesize(synthCtx, &speechmodel.TTSRequest{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if err := s.player.Play(ctx, resp.AudioData, resp.Format); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config != nil && s.config.Timeout > 0 {
		return context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
	}
	return context.WithCancel(ctx)
}
