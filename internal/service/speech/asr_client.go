package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	speechmodel "github.com/onboardly/voice-twin/backend/internal/model/speech"
)

const defaultASRURL = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

// ASRClient transcribes recorded clips over the gateway's binary
// WebSocket protocol.
type ASRClient struct {
	config *speechmodel.Config
	dialer *websocket.Dialer
}

// NewASRClient builds the client for the configured gateway.
func NewASRClient(config *speechmodel.Config) *ASRClient {
	return &ASRClient{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type asrClientRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user,omitempty"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName  string `json:"model_name"`
		EnableITN  bool   `json:"enable_itn,omitempty"`
		EnablePunc bool   `json:"enable_punc,omitempty"`
		ResultType string `json:"result_type,omitempty"`
	} `json:"request"`
}

type asrServerMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Text string `json:"text"`
	} `json:"result,omitempty"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info,omitempty"`
}

// Transcribe sends the clip and waits for the final recognition
// result. An empty transcript is a valid outcome.
func (c *ASRClient) Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	wsURL := defaultASRURL
	if base := strings.TrimSpace(c.config.BaseURL); base != "" {
		wsURL = base
	}

	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", "volc.bigasr.sauc.duration")
	header.Set("X-Api-Connect-Id", req.SessionID)

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ASR WebSocket: %w", err)
	}
	defer conn.Close()

	if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
		log.Printf("[asr] connected with logid: %s", logid)
	}

	payloadData, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ASR request: %w", err)
	}

	compressed, err := CompressPayload(payloadData, GzipCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}

	frame, err := EncodeMessage(CreateFullClientRequest(compressed, GzipCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("failed to send ASR request: %w", err)
	}

	if err := c.sendAudio(ctx, conn, req.AudioData); err != nil {
		return nil, fmt.Errorf("failed to send audio data: %w", err)
	}

	return c.receiveResult(ctx, conn, req.SessionID)
}

func (c *ASRClient) buildRequest(req *speechmodel.ASRRequest) *asrClientRequest {
	out := &asrClientRequest{}
	out.User.UID = req.SessionID

	out.Audio.Format = req.Format
	if out.Audio.Format == "" {
		out.Audio.Format = "wav"
	}
	out.Audio.Language = req.Language
	if out.Audio.Language == "" {
		out.Audio.Language = c.config.ASRLanguage
	}
	out.Audio.Codec = "raw"
	out.Audio.Rate = 16000
	out.Audio.Bits = 16
	out.Audio.Channel = 1

	out.Request.ModelName = c.config.ASRModel
	if out.Request.ModelName == "" {
		out.Request.ModelName = "bigmodel"
	}
	out.Request.EnableITN = true
	out.Request.EnablePunc = true
	out.Request.ResultType = "full"

	return out
}

// sendAudio streams the clip in ~200ms chunks. 16kHz, 16-bit mono
// gives 6400 bytes per chunk.
func (c *ASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, audio io.Reader) error {
	data, err := io.ReadAll(audio)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("no audio data to send")
	}

	const chunkSize = 6400
	sequence := int32(2) // the full client request occupies sequence 1

	for i := 0; i < len(data); i += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		isLast := end >= len(data)

		compressed, err := CompressPayload(data[i:end], GzipCompression)
		if err != nil {
			return fmt.Errorf("failed to compress audio chunk: %w", err)
		}

		frame, err := EncodeMessage(CreateAudioOnlyRequest(compressed, sequence, isLast, GzipCompression))
		if err != nil {
			return fmt.Errorf("failed to encode audio message: %w", err)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}

		sequence++
	}

	return nil
}

func (c *ASRClient) receiveResult(ctx context.Context, conn *websocket.Conn, sessionID string) (*speechmodel.ASRResponse, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	var last asrServerMessage

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read ASR response: %w", err)
		}

		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode ASR message: %w", err)
		}

		payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress ASR payload: %w", err)
		}

		if msg.IsErrorMessage() {
			return nil, fmt.Errorf("ASR error %d: %s", msg.ErrorCode, string(payload))
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &last); err != nil {
				log.Printf("[asr] failed to unmarshal response payload: %v", err)
			} else if last.Code != 0 {
				return nil, fmt.Errorf("ASR API error %d: %s", last.Code, last.Message)
			}
		}

		if msg.IsLastPacket() {
			return &speechmodel.ASRResponse{
				SessionID: sessionID,
				Text:      strings.TrimSpace(last.Result.Text),
				Duration:  last.AudioInfo.Duration,
				CreatedAt: time.Now(),
			}, nil
		}
	}
}
