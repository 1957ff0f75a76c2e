package websocket

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// Viewer protocol message types.
const (
	MsgTypePing             = "ping"
	MsgTypePong             = "pong"
	MsgTypeCameraUpdate     = "camera_update"
	MsgTypeYearSet          = "year_set"
	MsgTypeFrameRequest     = "frame_request"
	MsgTypeFrameResponse    = "frame_response"
	MsgTypeSceneRequest     = "scene_request"
	MsgTypeSceneResponse    = "scene_response"
	MsgTypeFrameSubscribe   = "frame_subscribe"
	MsgTypeFrameUnsubscribe = "frame_unsubscribe"
	MsgTypeError            = "error_response"
)

const (
	ErrTypeMsgEncode = "err-msg-encode"
	ErrTypeMsgDecode = "err-msg-decode"

	// ErrTypeMsgSkip marks messages a handler deliberately ignored.
	ErrTypeMsgSkip = "err-msg-skip"
)

// Msg is a viewer protocol message.
type Msg struct {
	Type      string          `json:"type"`
	RequestID uint32          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMsg creates a message with the given type and payload.
func NewMsg(msgType string, requestID uint32, payload interface{}) (Msg, error) {
	msg := Msg{
		Type:      msgType,
		RequestID: requestID,
	}

	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Msg{}, errors.New("encoding message payload failed").
			WithType(ErrTypeMsgEncode).
			WithTag("msg_type", msgType).
			Wrap(err)
	}
	msg.Data = data
	return msg, nil
}

// DataTo unmarshals the message payload into the given value.
func (m Msg) DataTo(v interface{}) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message payload failed").
			WithType(ErrTypeMsgDecode).
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

// Sender sends a message over a connection and returns the number of bytes
// written.
type Sender func(Msg) (int, error)

// Receiver receives the next message from a connection and returns the
// number of bytes read.
type Receiver func() (Msg, int, error)

// ResponseSender is passed to message handlers to emit responses.
type ResponseSender interface {
	Send(Msg)
}

// NewSender returns a Sender writing JSON frames to conn.
func NewSender(conn *websocket.Conn) Sender {
	return func(msg Msg) (int, error) {
		data, err := json.Marshal(msg)
		if err != nil {
			return 0, errors.New("encoding message failed").
				WithType(ErrTypeMsgEncode).
				WithTag("msg_type", msg.Type).
				Wrap(err)
		}

		if err := websocket.Message.Send(conn, data); err != nil {
			return 0, errors.New("writing message failed").Wrap(err)
		}
		return len(data), nil
	}
}

// NewReceiver returns a Receiver reading JSON frames from conn.
func NewReceiver(conn *websocket.Conn) Receiver {
	return func() (Msg, int, error) {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			return Msg{}, 0, errors.New("reading message failed").Wrap(err)
		}

		var msg Msg
		if err := json.Unmarshal(data, &msg); err != nil {
			return Msg{}, len(data), errors.New("decoding message failed").
				WithType(ErrTypeMsgDecode).
				Wrap(err)
		}
		return msg, len(data), nil
	}
}
