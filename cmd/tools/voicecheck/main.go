package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/onboardly/voice-twin/backend/internal/config"
	speechmodel "github.com/onboardly/voice-twin/backend/internal/model/speech"
	"github.com/onboardly/voice-twin/backend/internal/service/speech"
)

// voicecheck exercises each piece of the voice stack in isolation so
// gateway credentials and local audio devices can be verified before
// running a full onboarding session.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	cfg, err := config.LoadSpeech()
	if err != nil {
		log.Fatalf("failed to load speech configuration: %v", err)
	}

	mode := flag.String("mode", "", "check mode: asr, tts, record or play")
	audioPath := flag.String("audio", "", "input audio file path (asr, play)")
	text := flag.String("text", "", "input text (tts)")
	outputPath := flag.String("out", "", "output audio file path (tts, record)")
	format := flag.String("format", "", "audio format override")
	language := flag.String("lang", "", "language code, defaults to configuration")
	voice := flag.String("voice", "", "TTS voice ID, defaults to configuration")
	seconds := flag.Int("seconds", 5, "capture length for record mode")
	session := flag.String("session", "", "custom session ID, autogenerated when empty")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	sessionID := *session
	if sessionID == "" {
		sessionID = fmt.Sprintf("manual-%d", time.Now().UnixNano())
	}

	speechCfg := &speechmodel.Config{
		AppID:         cfg.AppID,
		AccessToken:   cfg.AccessToken,
		BaseURL:       cfg.BaseURL,
		ASRModel:      cfg.ASRModel,
		ASRLanguage:   cfg.ASRLanguage,
		TTSVoice:      cfg.TTSVoice,
		TTSSpeed:      cfg.TTSSpeed,
		TTSVolume:     cfg.TTSVolume,
		TTSLanguage:   cfg.TTSLanguage,
		RecordCommand: cfg.RecordCommand,
		PlayCommand:   cfg.PlayCommand,
		SampleRate:    cfg.SampleRate,
		Timeout:       cfg.Timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "asr":
		requireGateway(cfg)
		runASR(ctx, speechCfg, sessionID, *audioPath, *format, *language)
	case "tts":
		requireGateway(cfg)
		runTTS(ctx, speechCfg, sessionID, *text, *voice, *format, *language, *outputPath)
	case "record":
		runRecord(ctx, speechCfg, *seconds, *outputPath)
	case "play":
		runPlay(ctx, speechCfg, *audioPath)
	default:
		flag.Usage()
		log.Fatal("specify a mode with -mode=asr|tts|record|play")
	}
}

func requireGateway(cfg config.SpeechConfig) {
	if !cfg.Enabled {
		log.Fatal("speech gateway not configured, set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN first")
	}
}

func runASR(ctx context.Context, speechCfg *speechmodel.Config, sessionID, audioPath, format, language string) {
	if audioPath == "" {
		log.Fatal("asr mode requires -audio")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		log.Fatalf("failed to open audio file: %v", err)
	}
	defer file.Close()

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
		if format == "" {
			format = "wav"
		}
	}

	req := &speechmodel.ASRRequest{
		SessionID: sessionID,
		AudioData: file,
		Format:    format,
		Language:  language,
	}

	log.Printf("running ASR check: session=%s format=%s", sessionID, format)

	resp, err := speech.NewASRClient(speechCfg).Transcribe(ctx, req)
	if err != nil {
		log.Fatalf("ASR request failed: %v", err)
	}
	log.Printf("ASR result: text=%q duration=%dms", resp.Text, resp.Duration)
}

func runTTS(ctx context.Context, speechCfg *speechmodel.Config, sessionID, text, voice, format, language, outputPath string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("tts mode requires -text")
	}

	req := &speechmodel.TTSRequest{
		SessionID: sessionID,
		Text:      text,
		Voice:     voice,
		Format:    format,
		Language:  language,
	}

	log.Printf("running TTS check: session=%s voice=%s", sessionID, voice)

	resp, err := speech.NewTTSClient(speechCfg).Synthesize(ctx, req)
	if err != nil {
		log.Fatalf("TTS request failed: %v", err)
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.%s", time.Now().Unix(), resp.Format)
	}
	if err := os.WriteFile(outputPath, resp.AudioData, 0o644); err != nil {
		log.Fatalf("failed to write audio file: %v", err)
	}
	log.Printf("TTS result: %d bytes written to %s", len(resp.AudioData), outputPath)
}

func runRecord(ctx context.Context, speechCfg *speechmodel.Config, seconds int, outputPath string) {
	recorder := speech.NewRecorder(speechCfg.RecordCommand, speechCfg.SampleRate)

	log.Printf("recording %d seconds from the microphone...", seconds)
	audio, err := recorder.Record(ctx, time.Duration(seconds)*time.Second)
	if err != nil {
		log.Fatalf("capture failed: %v", err)
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("capture-%d.wav", time.Now().Unix())
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.Fatalf("failed to write capture file: %v", err)
	}
	log.Printf("capture result: %d bytes written to %s", len(audio), outputPath)
}

func runPlay(ctx context.Context, speechCfg *speechmodel.Config, audioPath string) {
	if audioPath == "" {
		log.Fatal("play mode requires -audio")
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
	player := speech.NewPlayer(speechCfg.PlayCommand)

	log.Printf("playing %s...", audioPath)
	if err := player.Play(ctx, audio, format); err != nil {
		log.Fatalf("playback failed: %v", err)
	}
	log.Println("playback finished")
}
