package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service needs.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Speech  SpeechConfig
	Session SessionConfig
	Storage StorageConfig
	Prompts PromptsConfig
}

// Load reads configuration from environment variables. A missing
// completion credential is a fatal condition surfaced here, before any
// session can be constructed.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	sess, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		LLM:     llm,
		Speech:  speech,
		Session: sess,
		Storage: StorageConfig{
			TranscriptDir: getEnvOrDefault("OUTPUT_TRANSCRIPT_DIR", "output/transcripts"),
			PersonaDir:    getEnvOrDefault("OUTPUT_PERSONA_DIR", "output/personas"),
			DBPath:        getEnvOrDefault("DB_PATH", "output/sessions.db"),
		},
		Prompts: PromptsConfig{
			SystemPromptPath:   getEnvOrDefault("SYSTEM_PROMPT_PATH", "prompts/system_prompt.txt"),
			QuestionBankPath:   getEnvOrDefault("QUESTION_BANK_PATH", "prompts/question_bank.json"),
			HumorTemplatesPath: getEnvOrDefault("HUMOR_TEMPLATES_PATH", "prompts/humor_templates.txt"),
		},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Completion providers selectable via LLM_PROVIDER.
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// LLMConfig describes the hosted completion model.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// NewChatModel builds the Ark-backed chat model from this config.
func (c LLMConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadLLMConfig() (LLMConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI))

	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return LLMConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return LLMConfig{}, err
	}

	cfg := LLMConfig{
		Provider:    provider,
		Model:       strings.TrimSpace(os.Getenv("LLM_MODEL")),
		APIKey:      strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	switch provider {
	case ProviderArk:
		cfg.BaseURL = getEnvOrDefault("LLM_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
		cfg.Region = getEnvOrDefault("LLM_REGION", "cn-beijing")
	case ProviderOpenAI:
		// Groq speaks the OpenAI API; its endpoint is the default.
		cfg.BaseURL = getEnvOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1")
		if cfg.Model == "" {
			cfg.Model = "llama-3.3-70b-versatile"
		}
	default:
		return LLMConfig{}, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}

	if cfg.APIKey == "" {
		return LLMConfig{}, fmt.Errorf("LLM_API_KEY is required; add it to your .env and try again")
	}
	if cfg.Model == "" {
		return LLMConfig{}, fmt.Errorf("LLM_MODEL is required for provider %q", provider)
	}

	return cfg, nil
}

// LoadSpeech reads only the speech gateway and audio device settings.
// Tools that never talk to the completion model use this instead of
// Load, so missing completion credentials do not block them.
func LoadSpeech() (SpeechConfig, error) {
	return loadSpeechConfig()
}

// SpeechConfig describes the speech gateway and local audio devices.
type SpeechConfig struct {
	AppID       string
	AccessToken string
	BaseURL     string
	ASRModel    string
	ASRLanguage string
	TTSVoice    string
	TTSSpeed    float32
	TTSVolume   float32
	TTSLanguage string

	RecordCommand string
	PlayCommand   string
	SampleRate    int
	Timeout       int
	Enabled       bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0)
	if speed != nil {
		ttsSpeed = *speed
	}

	volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume := float32(1.0)
	if volume != nil {
		ttsVolume = *volume
	}

	sampleRate, err := parseOptionalIntEnv("SPEECH_SAMPLE_RATE")
	if err != nil {
		return SpeechConfig{}, err
	}
	rate := 16000
	if sampleRate != nil {
		rate = *sampleRate
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))

	return SpeechConfig{
		AppID:         appID,
		AccessToken:   accessToken,
		BaseURL:       getEnvOrDefault("SPEECH_BASE_URL", ""),
		ASRModel:      getEnvOrDefault("SPEECH_ASR_MODEL", "bigmodel"),
		ASRLanguage:   getEnvOrDefault("SPEECH_ASR_LANGUAGE", "en-US"),
		TTSVoice:      getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		TTSSpeed:      ttsSpeed,
		TTSVolume:     ttsVolume,
		TTSLanguage:   getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en-US"),
		RecordCommand: getEnvOrDefault("SPEECH_RECORD_COMMAND", ""),
		PlayCommand:   getEnvOrDefault("SPEECH_PLAY_COMMAND", ""),
		SampleRate:    rate,
		Timeout:       timeoutSeconds,
		Enabled:       appID != "" && accessToken != "",
	}, nil
}

// SessionConfig holds the orchestration knobs.
type SessionConfig struct {
	MaxDuration  time.Duration
	MinTurns     int
	ListenWindow time.Duration
	ReadyWindow  time.Duration
	OverrideProb float64
}

func loadSessionConfig() (SessionConfig, error) {
	maxMinutes, err := parseOptionalIntEnv("SESSION_MAX_MINUTES")
	if err != nil {
		return SessionConfig{}, err
	}
	maxDuration := 60 * time.Minute
	if maxMinutes != nil {
		maxDuration = time.Duration(*maxMinutes) * time.Minute
	}

	minTurns := 0
	if override, err := parseOptionalIntEnv("SESSION_MIN_TURNS"); err != nil {
		return SessionConfig{}, err
	} else if override != nil && *override > 0 {
		minTurns = *override
	}

	listenSeconds, err := parseOptionalIntEnv("SESSION_LISTEN_SECONDS")
	if err != nil {
		return SessionConfig{}, err
	}
	listenWindow := 15 * time.Second
	if listenSeconds != nil {
		listenWindow = time.Duration(*listenSeconds) * time.Second
	}

	readySeconds, err := parseOptionalIntEnv("SESSION_READY_SECONDS")
	if err != nil {
		return SessionConfig{}, err
	}
	readyWindow := 10 * time.Second
	if readySeconds != nil {
		readyWindow = time.Duration(*readySeconds) * time.Second
	}

	prob, err := parseOptionalFloatEnv("SESSION_OVERRIDE_PROBABILITY")
	if err != nil {
		return SessionConfig{}, err
	}
	overrideProb := 0.7
	if prob != nil {
		overrideProb = *prob
	}

	return SessionConfig{
		MaxDuration:  maxDuration,
		MinTurns:     minTurns,
		ListenWindow: listenWindow,
		ReadyWindow:  readyWindow,
		OverrideProb: overrideProb,
	}, nil
}

// StorageConfig locates the persisted artifacts.
type StorageConfig struct {
	TranscriptDir string
	PersonaDir    string
	DBPath        string
}

// PromptsConfig locates the prompt documents loaded at startup.
type PromptsConfig struct {
	SystemPromptPath   string
	QuestionBankPath   string
	HumorTemplatesPath string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
