package speech

import (
	"context"
	"testing"
	"time"

	speechmodel "github.com/onboardly/voice-twin/backend/internal/model/speech"
)

type fakeRecorder struct {
	audio []byte
	err   error
}

func (f *fakeRecorder) Record(ctx context.Context, duration time.Duration) ([]byte, error) {
	return f.audio, f.err
}

type fakePlayer struct {
	played int
}

func (f *fakePlayer) Play(ctx context.Context, audio []byte, format string) error {
	f.played++
	return nil
}

type fakeTranscriber struct {
	text string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	return &speechmodel.ASRResponse{SessionID: req.SessionID, Text: f.text}, nil
}

type fakeSynthesizer struct {
	calls int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	f.calls++
	return &speechmodel.TTSResponse{SessionID: req.SessionID, AudioData: []byte{0x01}, Format: "mp3"}, nil
}

func TestListenReturnsTrimmedTranscript(t *testing.T) {
	svc := &Service{
		config:      &speechmodel.Config{},
		recorder:    &fakeRecorder{audio: []byte{0x00, 0x01}},
		transcriber: &fakeTranscriber{text: "  hello there  "},
	}

	text, err := svc.Listen(context.Background(), "s1", time.Second)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if text != "hello there" {
		t.Errorf("text = %q, want %q", text, "hello there")
	}
}

func TestListenEmptyCaptureIsNotAnError(t *testing.T) {
	svc := &Service{
		config:      &speechmodel.Config{},
		recorder:    &fakeRecorder{audio: nil},
		transcriber: &fakeTranscriber{text: "should not be reached"},
	}

	text, err := svc.Listen(context.Background(), "s1", time.Second)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestSpeakSynthesizesThenPlays(t *testing.T) {
	synth := &fakeSynthesizer{}
	player := &fakePlayer{}
	svc := &Service{
		config:      &speechmodel.Config{},
		player:      player,
		synthesizer: synth,
	}

	if err := svc.Speak(context.Background(), "s1", "welcome"); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if synth.calls != 1 {
		t.Errorf("synthesize calls = %d, want 1", synth.calls)
	}
	if player.played != 1 {
		t.Errorf("play calls = %d, want 1", player.played)
	}
}

func TestSpeakSkipsBlankText(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc := &Service{
		config:      &speechmodel.Config{},
		player:      &fakePlayer{},
		synthesizer: synth,
	}

	if err := svc.Speak(context.Background(), "s1", "   "); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if synth.calls != 0 {
		t.Errorf("synthesize calls = %d, want 0", synth.calls)
	}
}
