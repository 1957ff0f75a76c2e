package websocket

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMsg(t *testing.T) {
	t.Run("payload round trip", func(t *testing.T) {
		msg, err := NewMsg(MsgTypeYearSet, 42, YearSetPayload{Year: 2001})
		require.NoError(t, err)
		require.Equal(t, MsgTypeYearSet, msg.Type)
		require.Equal(t, uint32(42), msg.RequestID)

		var payload YearSetPayload
		require.NoError(t, msg.DataTo(&payload))
		require.Equal(t, 2001, payload.Year)
	})

	t.Run("message without payload has no data", func(t *testing.T) {
		msg, err := NewMsg(MsgTypePong, 7, nil)
		require.NoError(t, err)
		require.Empty(t, msg.Data)
	})

	t.Run("decoding garbage reports a typed error", func(t *testing.T) {
		msg := Msg{Type: MsgTypeYearSet, Data: []byte("not json")}

		var payload YearSetPayload
		err := msg.DataTo(&payload)
		require.Error(t, err)
		require.Equal(t, ErrTypeMsgDecode, errors.Type(err))
	})
}
