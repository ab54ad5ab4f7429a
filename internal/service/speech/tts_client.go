package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	speechmodel "github.com/onboardly/voice-twin/backend/internal/model/speech"
)

const defaultTTSURL = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

// TTSClient synthesizes speech over the gateway's binary WebSocket
// protocol.
type TTSClient struct {
	config *speechmodel.Config
	dialer *websocket.Dialer
}

// NewTTSClient builds the client for the configured gateway.
func NewTTSClient(config *speechmodel.Config) *TTSClient {
	return &TTSClient{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type ttsClientRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string `json:"speaker"`
		Text        string `json:"text"`
		AudioParams struct {
			Format      string  `json:"format"`
			SampleRate  int     `json:"sample_rate"`
			SpeedRatio  float32 `json:"speed_ratio,omitempty"`
			VolumeRatio float32 `json:"volume_ratio,omitempty"`
		} `json:"audio_params"`
		Language string `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

// Synthesize converts text to audio and returns the whole clip.
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("TTS text is empty")
	}

	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	connectID := uuid.New().String()

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", "volc.service_type.10029")
	header.Set("X-Api-Connect-Id", connectID)

	conn, resp, err := c.dialer.DialContext(ctx, defaultTTSURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS WebSocket: %w", err)
	}
	defer conn.Close()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			log.Printf("[tts] connected with logid: %s", logid)
		}
	}

	gatewayReq := c.buildRequest(req)
	payloadData, err := json.Marshal(gatewayReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	frame, err := EncodeMessage(CreateFullClientRequest(payloadData, NoCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	return c.collectAudio(ctx, conn, req.SessionID, gatewayReq.ReqParams.AudioParams.Format, connectID)
}

func (c *TTSClient) buildRequest(req *speechmodel.TTSRequest) *ttsClientRequest {
	out := &ttsClientRequest{}

	uid := strings.TrimSpace(req.SessionID)
	if uid == "" {
		uid = uuid.New().String()
	}
	out.User.UID = uid

	out.ReqParams.Speaker = strings.TrimSpace(req.Voice)
	if out.ReqParams.Speaker == "" {
		out.ReqParams.Speaker = strings.TrimSpace(c.config.TTSVoice)
	}
	out.ReqParams.Text = req.Text

	format := strings.TrimSpace(req.Format)
	if format == "" {
		format = "mp3"
	}
	out.ReqParams.AudioParams.Format = format
	out.ReqParams.AudioParams.SampleRate = 24000

	speed := req.Speed
	if speed <= 0 {
		speed = c.config.TTSSpeed
	}
	if speed > 0 && speed != 1.0 {
		out.ReqParams.AudioParams.SpeedRatio = speed
	}

	volume := req.Volume
	if volume <= 0 {
		volume = c.config.TTSVolume
	}
	if volume > 0 && volume != 1.0 {
		out.ReqParams.AudioParams.VolumeRatio = volume
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = strings.TrimSpace(c.config.TTSLanguage)
	}
	out.ReqParams.Language = language

	return out
}

func (c *TTSClient) collectAudio(ctx context.Context, conn *websocket.Conn, sessionID, format, connectID string) (*speechmodel.TTSResponse, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	var (
		audioBuffer bytes.Buffer
		reqID       string
		duration    int64
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read TTS response: %w", err)
		}

		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode TTS message: %w", err)
		}

		switch msg.Header.MessageType {
		case ErrorMessage:
			payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
			if err != nil {
				return nil, fmt.Errorf("TTS error message decode failed: %w", err)
			}
			return nil, fmt.Errorf("TTS error: %s", string(payload))

		case AudioOnlyServerResponse:
			chunk, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress audio chunk: %w", err)
			}
			audioBuffer.Write(chunk)

		case FullServerResponse:
			payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress TTS response payload: %w", err)
			}

			var serverResp ttsServerMessage
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &serverResp); err != nil {
					log.Printf("[tts] failed to unmarshal response payload: %v", err)
				} else {
					if serverResp.Code != 0 && serverResp.Code != 3000 {
						return nil, fmt.Errorf("TTS API error %d: %s", serverResp.Code, serverResp.Message)
					}
					if serverResp.ReqID != "" {
						reqID = serverResp.ReqID
					}
					if serverResp.Addition.Duration != "" {
						if parsed, err := strconv.ParseInt(serverResp.Addition.Duration, 10, 64); err == nil {
							duration = parsed
						}
					}
					if serverResp.Data != "" {
						chunk, err := base64.StdEncoding.DecodeString(serverResp.Data)
						if err != nil {
							return nil, fmt.Errorf("failed to decode base64 audio chunk: %w", err)
						}
						audioBuffer.Write(chunk)
					}
				}
			}

			finishedByEvent := msg.Header.MessageFlags&WithEvent == WithEvent && msg.EventType == EventTypeSessionFinished
			if finishedByEvent || msg.IsLastPacket() || serverResp.Sequence < 0 {
				if audioBuffer.Len() == 0 {
					return nil, fmt.Errorf("TTS audio is empty")
				}
				if reqID == "" {
					reqID = connectID
				}
				return &speechmodel.TTSResponse{
					SessionID: sessionID,
					AudioData: audioBuffer.Bytes(),
					Duration:  duration,
					Format:    format,
					RequestID: reqID,
					CreatedAt: time.Now(),
				}, nil
			}

		default:
			log.Printf("[tts] unexpected message type: %d", msg.Header.MessageType)
		}
	}
}
