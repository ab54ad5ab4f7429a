package speech

import "io"

// ASRRequest asks the gateway to transcribe one recorded clip.
type ASRRequest struct {
	SessionID string    `json:"sessionId"`
	AudioData io.Reader `json:"-"`
	Format    string    `json:"format"`   // wav, mp3, pcm
	Language  string    `json:"language"` // en-US, zh-CN, ...
}

// TTSRequest asks the gateway to synthesize one utterance.
type TTSRequest struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`
	Volume    float32 `json:"volume"`
	Format    string  `json:"format"`
	Language  string  `json:"language"`
}
