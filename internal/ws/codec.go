package ws

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/slimepool/internal/session"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec selects how frames are written to a client.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

func ParseCodec(s string) (Codec, error) {
	switch Codec(s) {
	case "", CodecJSON:
		return CodecJSON, nil
	case CodecMsgpack:
		return CodecMsgpack, nil
	}
	return "", fmt.Errorf("unknown codec %q", s)
}

// OutMessage is everything the server sends.
type OutMessage struct {
	Type    string         `json:"type" msgpack:"type"`
	Frame   *session.Frame `json:"frame,omitempty" msgpack:"frame,omitempty"`
	Event   *session.Event `json:"event,omitempty" msgpack:"event,omitempty"`
	Message string         `json:"message,omitempty" msgpack:"message,omitempty"`
}

// InMessage is everything a client may send: aim, clear_aim, launch or
// get_state.
type InMessage struct {
	Type string  `json:"type" msgpack:"type"`
	Ball int     `json:"ball" msgpack:"ball"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
}

// Encode returns the websocket message type and payload for m.
func (c Codec) Encode(m OutMessage) (int, []byte, error) {
	if c == CodecMsgpack {
		data, err := msgpack.Marshal(&m)
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(m)
	return websocket.TextMessage, data, err
}

// DecodeIn reads a client message; binary frames are msgpack, text frames
// JSON.
func DecodeIn(messageType int, data []byte) (InMessage, error) {
	var m InMessage
	var err error
	if messageType == websocket.BinaryMessage {
		err = msgpack.Unmarshal(data, &m)
	} else {
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return InMessage{}, err
	}
	if m.Type == "" {
		return InMessage{}, fmt.Errorf("message type missing")
	}
	return m, nil
}
