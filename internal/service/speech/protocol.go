package speech

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ProtocolVersion identifies the gateway's binary WebSocket framing.
const ProtocolVersion = 0b0001

// MessageType is the frame type nibble.
type MessageType uint8

const (
	FullClientRequest       MessageType = 0b0001
	AudioOnlyRequest        MessageType = 0b0010
	FullServerResponse      MessageType = 0b1001
	AudioOnlyServerResponse MessageType = 0b1011
	ErrorMessage            MessageType = 0b1111
)

// MessageFlags carry sequencing and event metadata bits.
type MessageFlags uint8

const (
	NoSequenceNumber       MessageFlags = 0b0000
	PositiveSequenceNumber MessageFlags = 0b0001
	LastPacketNoSequence   MessageFlags = 0b0010
	NegativeSequenceNumber MessageFlags = 0b0011
	WithEvent              MessageFlags = 0b0100
)

// EventType tags server-side lifecycle events.
type EventType int32

const (
	EventTypeNone            EventType = 0
	EventTypeSessionFinished EventType = 152
)

// SerializationMethod describes the payload encoding.
type SerializationMethod uint8

const (
	NoSerialization   SerializationMethod = 0b0000
	JSONSerialization SerializationMethod = 0b0001
)

// CompressionMethod describes the payload compression.
type CompressionMethod uint8

const (
	NoCompression   CompressionMethod = 0b0000
	GzipCompression CompressionMethod = 0b0001
)

// Header is the fixed 4-byte frame prefix.
type Header struct {
	ProtocolVersion     uint8
	HeaderSize          uint8
	MessageType         MessageType
	MessageFlags        MessageFlags
	SerializationMethod SerializationMethod
	CompressionMethod   CompressionMethod
	Reserved            uint8
}

// Message is one decoded frame.
type Message struct {
	Header      Header
	Sequence    int32
	EventType   EventType
	SessionID   string
	ErrorCode   uint32
	PayloadSize uint32
	Payload     []byte
}

// NewHeader fills a header with the standard version and size.
func NewHeader(msgType MessageType, flags MessageFlags, serialization SerializationMethod, compression CompressionMethod) Header {
	return Header{
		ProtocolVersion:     ProtocolVersion,
		HeaderSize:          0b0001, // one 4-byte unit
		MessageType:         msgType,
		MessageFlags:        flags,
		SerializationMethod: serialization,
		CompressionMethod:   compression,
	}
}

// Encode packs the header into its 4-byte wire form.
func (h *Header) Encode() []byte {
	buf := make([]byte, 4)
	buf[0] = (h.ProtocolVersion << 4) | h.HeaderSize
	buf[1] = (uint8(h.MessageType) << 4) | uint8(h.MessageFlags)
	buf[2] = (uint8(h.SerializationMethod) << 4) | uint8(h.CompressionMethod)
	buf[3] = h.Reserved
	return buf
}

// DecodeHeader unpacks a 4-byte header.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("header data too short: got %d, need 4", len(data))
	}

	header := &Header{
		ProtocolVersion:     (data[0] >> 4) & 0x0F,
		HeaderSize:          data[0] & 0x0F,
		MessageType:         MessageType((data[1] >> 4) & 0x0F),
		MessageFlags:        MessageFlags(data[1] & 0x0F),
		SerializationMethod: SerializationMethod((data[2] >> 4) & 0x0F),
		CompressionMethod:   CompressionMethod(data[2] & 0x0F),
		Reserved:            data[3],
	}

	if header.ProtocolVersion != ProtocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", header.ProtocolVersion)
	}

	return header, nil
}

// EncodeMessage serializes a full frame.
func EncodeMessage(msg *Message) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	buf.Write(msg.Header.Encode())

	switch msg.Header.MessageFlags & 0b0011 {
	case PositiveSequenceNumber, NegativeSequenceNumber:
		seqBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(seqBytes, uint32(msg.Sequence))
		buf.Write(seqBytes)
	}

	sizeBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(sizeBytes, msg.PayloadSize)
	buf.Write(sizeBytes)

	if len(msg.Payload) > 0 {
		buf.Write(msg.Payload)
	}

	return buf.Bytes(), nil
}

// DecodeMessage parses one frame from the reader.
func DecodeMessage(reader io.Reader) (*Message, error) {
	headerBytes := make([]byte, 4)
	if _, err := io.ReadFull(reader, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header, err := DecodeHeader(headerBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}

	msg := &Message{Header: *header}

	// Skip optional header extensions beyond the fixed 4 bytes.
	extraHeaderBytes := int(header.HeaderSize)*4 - 4
	if extraHeaderBytes > 0 {
		extra := make([]byte, extraHeaderBytes)
		if _, err := io.ReadFull(reader, extra); err != nil {
			return nil, fmt.Errorf("failed to read extended header: %w", err)
		}
	}

	switch header.MessageFlags & 0b0011 {
	case PositiveSequenceNumber, NegativeSequenceNumber:
		seqBytes := make([]byte, 4)
		if _, err := io.ReadFull(reader, seqBytes); err != nil {
			return nil, fmt.Errorf("failed to read sequence: %w", err)
		}
		msg.Sequence = int32(binary.BigEndian.Uint32(seqBytes))
	}

	if header.MessageFlags&WithEvent == WithEvent {
		var eventRaw int32
		if err := binary.Read(reader, binary.BigEndian, &eventRaw); err != nil {
			return nil, fmt.Errorf("failed to read event type: %w", err)
		}
		msg.EventType = EventType(eventRaw)

		var size uint32
		if err := binary.Read(reader, binary.BigEndian, &size); err != nil {
			return nil, fmt.Errorf("failed to read session id size: %w", err)
		}
		if size > 0 {
			sessionID := make([]byte, size)
			if _, err := io.ReadFull(reader, sessionID); err != nil {
				return nil, fmt.Errorf("failed to read session id: %w", err)
			}
			msg.SessionID = string(sessionID)
		}
	}

	if header.MessageType == ErrorMessage {
		codeBytes := make([]byte, 4)
		if _, err := io.ReadFull(reader, codeBytes); err != nil {
			return nil, fmt.Errorf("failed to read error code: %w", err)
		}
		msg.ErrorCode = binary.BigEndian.Uint32(codeBytes)
	}

	sizeBytes := make([]byte, 4)
	if _, err := io.ReadFull(reader, sizeBytes); err != nil {
		return nil, fmt.Errorf("failed to read payload size: %w", err)
	}
	msg.PayloadSize = binary.BigEndian.Uint32(sizeBytes)

	if msg.PayloadSize > 0 {
		msg.Payload = make([]byte, msg.PayloadSize)
		if _, err := io.ReadFull(reader, msg.Payload); err != nil {
			return nil, fmt.Errorf("failed to read payload (expected %d bytes): %w", msg.PayloadSize, err)
		}
	}

	return msg, nil
}

// CreateFullClientRequest wraps a request payload in a frame.
func CreateFullClientRequest(payload []byte, compression CompressionMethod) *Message {
	return &Message{
		Header:      NewHeader(FullClientRequest, NoSequenceNumber, JSONSerialization, compression),
		PayloadSize: uint32(len(payload)),
		Payload:     payload,
	}
}

// CreateAudioOnlyRequest wraps an audio chunk. Negative sequence marks
// the final chunk of a clip.
func CreateAudioOnlyRequest(audioData []byte, sequence int32, isLast bool, compression CompressionMethod) *Message {
	var flags MessageFlags
	if isLast {
		if sequence != 0 {
			flags = NegativeSequenceNumber
			sequence = -sequence
		} else {
			flags = LastPacketNoSequence
		}
	} else if sequence > 0 {
		flags = PositiveSequenceNumber
	}

	return &Message{
		Header:      NewHeader(AudioOnlyRequest, flags, NoSerialization, compression),
		Sequence:    sequence,
		PayloadSize: uint32(len(audioData)),
		Payload:     audioData,
	}
}

// IsLastPacket reports whether the frame carries the final-chunk flag.
func (m *Message) IsLastPacket() bool {
	switch m.Header.MessageFlags & 0b0011 {
	case LastPacketNoSequence, NegativeSequenceNumber:
		return true
	default:
		return false
	}
}

// IsErrorMessage reports whether the frame is a server error.
func (m *Message) IsErrorMessage() bool {
	return m.Header.MessageType == ErrorMessage
}
