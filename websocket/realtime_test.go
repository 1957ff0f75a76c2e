package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/CaelSnow/windkraft-gpu/featureflag"
	"github.com/CaelSnow/windkraft-gpu/models"
	"github.com/CaelSnow/windkraft-gpu/pipeline"
	"github.com/stretchr/testify/require"
)

type msgRecorder struct {
	msgs []Msg
}

func (r *msgRecorder) Send(msg Msg) {
	r.msgs = append(r.msgs, msg)
}

func (r *msgRecorder) last(t *testing.T) Msg {
	t.Helper()
	require.NotEmpty(t, r.msgs)
	return r.msgs[len(r.msgs)-1]
}

func newTestHandler(t *testing.T, flags featureflag.FeatureFlag) *RealtimeHandler {
	t.Helper()

	scene := models.NewScene()
	scene.AddAll(models.GenerateField(200, models.DefaultFieldSeed))
	scene.BuildCaches()

	h := &RealtimeHandler{
		FrameDuration:     time.Millisecond * 16,
		ClientIdleTimeout: time.Minute,
		Scene:             scene,
		Pipeline:          pipeline.New(flags),
		FeatureFlags:      flags,
	}
	h.HandleConnect(nil)
	return h
}

func TestRealtimeHandlerPing(t *testing.T) {
	h := newTestHandler(t, featureflag.New(nil))
	var rec msgRecorder

	msg, err := NewMsg(MsgTypePing, 3, nil)
	require.NoError(t, err)
	require.NoError(t, h.HandlePing(context.Background(), &rec, msg))

	pong := rec.last(t)
	require.Equal(t, MsgTypePong, pong.Type)
	require.Equal(t, uint32(3), pong.RequestID)
}

func TestRealtimeHandlerSceneRequest(t *testing.T) {
	h := newTestHandler(t, featureflag.New(nil))
	var rec msgRecorder

	msg, err := NewMsg(MsgTypeSceneRequest, 1, nil)
	require.NoError(t, err)
	require.NoError(t, h.HandleSceneRequest(context.Background(), &rec, msg))

	response := rec.last(t)
	require.Equal(t, MsgTypeSceneResponse, response.Type)

	var payload SceneResponsePayload
	require.NoError(t, response.DataTo(&payload))
	require.Equal(t, 200, payload.TurbineCount)
	require.NotEmpty(t, payload.Years)
	require.NotEmpty(t, payload.LODRatios)
	require.Equal(t, float32(models.SceneXMin), payload.XMin)
	require.Equal(t, float32(models.SceneZMax), payload.ZMax)
}

func TestRealtimeHandlerFrames(t *testing.T) {
	t.Run("connect defaults to the latest year", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		msg, err := NewMsg(MsgTypeFrameRequest, 5, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameRequest(context.Background(), &rec, msg))

		response := rec.last(t)
		require.Equal(t, MsgTypeFrameResponse, response.Type)
		require.Equal(t, uint32(5), response.RequestID)

		var payload FrameResponsePayload
		require.NoError(t, response.DataTo(&payload))

		years := h.Scene.Years()
		require.Equal(t, years[len(years)-1], payload.Year)
		require.Equal(t, 200, payload.Stats.TotalCandidates)
	})

	t.Run("year set narrows following frames", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		yearMsg, err := NewMsg(MsgTypeYearSet, 1, YearSetPayload{Year: 1995})
		require.NoError(t, err)
		require.NoError(t, h.HandleYearSet(context.Background(), &rec, yearMsg))

		frameMsg, err := NewMsg(MsgTypeFrameRequest, 2, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameRequest(context.Background(), &rec, frameMsg))

		var payload FrameResponsePayload
		require.NoError(t, rec.last(t).DataTo(&payload))
		require.Equal(t, 1995, payload.Year)
		require.Equal(t, len(h.Scene.FeaturesUntil(1995)), payload.Stats.TotalCandidates)
	})

	t.Run("camera update changes the eye for following frames", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		cameraMsg, err := NewMsg(MsgTypeCameraUpdate, 0, CameraUpdatePayload{
			RotX: 10,
			RotY: 180,
			Zoom: 5,
		})
		require.NoError(t, err)
		require.NoError(t, h.HandleCameraUpdate(context.Background(), cameraMsg))

		frameMsg, err := NewMsg(MsgTypeFrameRequest, 1, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameRequest(context.Background(), &rec, frameMsg))

		var payload FrameResponsePayload
		require.NoError(t, rec.last(t).DataTo(&payload))
		require.Equal(t, 200, payload.Stats.TotalCandidates)
	})

	t.Run("malformed year set responds with an error", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		msg := Msg{Type: MsgTypeYearSet, RequestID: 9, Data: []byte("not json")}
		require.NoError(t, h.HandleYearSet(context.Background(), &rec, msg))

		response := rec.last(t)
		require.Equal(t, MsgTypeError, response.Type)
		require.Equal(t, uint32(9), response.RequestID)

		var payload ErrorPayload
		require.NoError(t, response.DataTo(&payload))
		require.Equal(t, ErrCodeBadPayload, payload.Code)
	})
}

func TestRealtimeHandlerSubscription(t *testing.T) {
	t.Run("unsubscribed ticks send nothing", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		require.NoError(t, h.SendFrame(context.Background(), &rec))
		require.Empty(t, rec.msgs)
	})

	t.Run("subscribe sends an immediate frame and enables ticks", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		msg, err := NewMsg(MsgTypeFrameSubscribe, 4, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameSubscribe(context.Background(), &rec, msg))
		require.Len(t, rec.msgs, 1)
		require.Equal(t, MsgTypeFrameResponse, rec.msgs[0].Type)

		require.NoError(t, h.SendFrame(context.Background(), &rec))
		require.Len(t, rec.msgs, 2)
	})

	t.Run("unsubscribe stops ticks", func(t *testing.T) {
		h := newTestHandler(t, featureflag.New(nil))
		var rec msgRecorder

		subMsg, err := NewMsg(MsgTypeFrameSubscribe, 1, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameSubscribe(context.Background(), &rec, subMsg))

		unsubMsg, err := NewMsg(MsgTypeFrameUnsubscribe, 2, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameUnsubscribe(context.Background(), &rec, unsubMsg))

		sent := len(rec.msgs)
		require.NoError(t, h.SendFrame(context.Background(), &rec))
		require.Len(t, rec.msgs, sent)
	})

	t.Run("broadcast flag suppresses ticks but not explicit requests", func(t *testing.T) {
		flags := featureflag.New([]string{
			string(featureflag.FlagDisableFrameBroadcast),
		})
		h := newTestHandler(t, flags)
		var rec msgRecorder

		subMsg, err := NewMsg(MsgTypeFrameSubscribe, 1, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameSubscribe(context.Background(), &rec, subMsg))
		sent := len(rec.msgs)

		require.NoError(t, h.SendFrame(context.Background(), &rec))
		require.Len(t, rec.msgs, sent)

		frameMsg, err := NewMsg(MsgTypeFrameRequest, 2, nil)
		require.NoError(t, err)
		require.NoError(t, h.HandleFrameRequest(context.Background(), &rec, frameMsg))
		require.Len(t, rec.msgs, sent+1)
	})
}
