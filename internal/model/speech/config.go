package speech

// Config carries the speech gateway credentials and audio defaults.
type Config struct {
	AppID       string `json:"appId"`
	AccessToken string `json:"accessToken"`
	BaseURL     string `json:"baseUrl"`

	// ASR settings
	ASRModel    string `json:"asrModel"`
	ASRLanguage string `json:"asrLanguage"`

	// TTS settings
	TTSVoice    string  `json:"ttsVoice"`
	TTSSpeed    float32 `json:"ttsSpeed"`
	TTSVolume   float32 `json:"ttsVolume"`
	TTSLanguage string  `json:"ttsLanguage"`

	// Local audio device commands
	RecordCommand string `json:"recordCommand"`
	PlayCommand   string `json:"playCommand"`
	SampleRate    int    `json:"sampleRate"`

	Timeout int `json:"timeout"` // seconds
}
