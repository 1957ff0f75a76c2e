package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/CaelSnow/windkraft-gpu/featureflag"
	"github.com/CaelSnow/windkraft-gpu/models"
	"github.com/CaelSnow/windkraft-gpu/pipeline"
	"github.com/CaelSnow/windkraft-gpu/view"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

const (
	ErrCodeBadPayload  = "bad_payload"
	ErrCodeYearUnknown = "year_unknown"
)

// RealtimeHandler manages a viewer connection and streams culled frames in
// realtime.
type RealtimeHandler struct {
	// The duration of a frame.
	FrameDuration time.Duration

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The turbine field served to viewers.
	Scene *models.Scene

	// The per-frame culling pipeline.
	Pipeline *pipeline.Pipeline

	FeatureFlags featureflag.FeatureFlag

	conn     *websocket.Conn
	clientID string

	mutex      sync.Mutex
	camera     view.Camera
	frustum    view.Frustum
	year       int
	subscribed bool
}

func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn
	h.clientID = uuid.NewString()

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.camera = view.DefaultCamera()
	h.frustum.ExtractFromCamera(h.camera)

	years := h.Scene.Years()
	if len(years) != 0 {
		h.year = years[len(years)-1]
	}
}

func (h *RealtimeHandler) HandleDisconnect(err error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.subscribed = false
}

func (h *RealtimeHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	respond.Send(Msg{
		Type:      MsgTypePong,
		RequestID: msg.RequestID,
	})
	return nil
}

func (h *RealtimeHandler) HandleCameraUpdate(ctx context.Context, msg Msg) error {
	var payload CameraUpdatePayload
	if err := msg.DataTo(&payload); err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.camera.RotX = payload.RotX
	h.camera.RotY = payload.RotY
	if payload.Zoom > 0 {
		h.camera.Zoom = payload.Zoom
	}
	if payload.FOV > 0 {
		h.camera.FOV = payload.FOV
	}
	if payload.Aspect > 0 {
		h.camera.Aspect = payload.Aspect
	}
	h.frustum.ExtractFromCamera(h.camera)
	return nil
}

func (h *RealtimeHandler) HandleYearSet(ctx context.Context, respond ResponseSender, msg Msg) error {
	var payload YearSetPayload
	if err := msg.DataTo(&payload); err != nil {
		return h.sendError(respond, msg.RequestID, ErrCodeBadPayload, "year_set payload is invalid")
	}

	h.mutex.Lock()
	h.year = payload.Year
	h.mutex.Unlock()
	return nil
}

func (h *RealtimeHandler) HandleFrameRequest(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.sendFrame(respond, msg.RequestID)
}

func (h *RealtimeHandler) HandleSceneRequest(ctx context.Context, respond ResponseSender, msg Msg) error {
	bounds := h.Scene.Bounds()
	levels := h.Scene.LODManager().Levels()

	ratios := make([]float32, 0, len(levels))
	for _, l := range levels {
		ratios = append(ratios, l.PolygonRatio)
	}

	response, err := NewMsg(MsgTypeSceneResponse, msg.RequestID, SceneResponsePayload{
		TurbineCount: h.Scene.Len(),
		Years:        h.Scene.Years(),
		XMin:         bounds.XMin,
		XMax:         bounds.XMax,
		ZMin:         bounds.ZMin,
		ZMax:         bounds.ZMax,
		LODRatios:    ratios,
	})
	if err != nil {
		return err
	}

	respond.Send(response)
	return nil
}

func (h *RealtimeHandler) HandleFrameSubscribe(ctx context.Context, respond ResponseSender, msg Msg) error {
	h.mutex.Lock()
	h.subscribed = true
	h.mutex.Unlock()

	// An immediate frame so the viewer does not wait a full tick.
	return h.sendFrame(respond, msg.RequestID)
}

func (h *RealtimeHandler) HandleFrameUnsubscribe(ctx context.Context, respond ResponseSender, msg Msg) error {
	h.mutex.Lock()
	h.subscribed = false
	h.mutex.Unlock()
	return nil
}

// SendFrame emits a frame on the periodic tick when the client is subscribed.
func (h *RealtimeHandler) SendFrame(ctx context.Context, respond ResponseSender) error {
	h.mutex.Lock()
	subscribed := h.subscribed
	h.mutex.Unlock()

	if !subscribed {
		return nil
	}

	broadcast := true
	h.FeatureFlags.IfSet(featureflag.FlagDisableFrameBroadcast, func() {
		broadcast = false
	})
	if !broadcast {
		return nil
	}

	return h.sendFrame(respond, 0)
}

func (h *RealtimeHandler) sendFrame(respond ResponseSender, requestID uint32) error {
	h.mutex.Lock()
	camera := h.camera
	frustum := h.frustum
	year := h.year
	h.mutex.Unlock()

	frame := h.Pipeline.Run(pipeline.RunInput{
		Year:    year,
		Camera:  camera,
		Frustum: &frustum,
		Scene:   h.Scene,
	})

	response, err := NewMsg(MsgTypeFrameResponse, requestID, frameToPayload(frame))
	if err != nil {
		return err
	}

	respond.Send(response)
	return nil
}

func (h *RealtimeHandler) sendError(respond ResponseSender, requestID uint32, code, message string) error {
	response, err := NewMsg(MsgTypeError, requestID, ErrorPayload{
		Code:    code,
		Message: message,
	})
	if err != nil {
		return err
	}

	respond.Send(response)
	return nil
}

func (h *RealtimeHandler) Receiver() Receiver {
	return NewReceiver(h.conn)
}

func (h *RealtimeHandler) Sender() Sender {
	return NewSender(h.conn)
}

func (h *RealtimeHandler) Close() {
}

func (h *RealtimeHandler) FrameInterval() time.Duration {
	if h.FrameDuration <= 0 {
		return 16 * time.Millisecond
	}
	return h.FrameDuration
}

func (h *RealtimeHandler) IdleTimeout() time.Duration {
	if h.ClientIdleTimeout <= 0 {
		return time.Minute
	}
	return h.ClientIdleTimeout
}

func (h *RealtimeHandler) GetClientID() string {
	return h.clientID
}

func frameToPayload(frame pipeline.Frame) FrameResponsePayload {
	groups := make(map[string][]TurbineState, len(frame.Groups))
	for name, turbines := range frame.Groups {
		states := make([]TurbineState, 0, len(turbines))
		for _, t := range turbines {
			states = append(states, TurbineState{
				ID:         t.ID,
				X:          t.X,
				Z:          t.Z,
				BaseHeight: t.BaseHeight,
				Height:     t.Height,
				RotorRad:   t.RotorRadius,
				BladeAngle: t.BladeAngle,
			})
		}
		groups[name] = states
	}

	visibleRatio := float32(0)
	if frame.Stats.TotalCandidates > 0 {
		visibleRatio = float32(frame.Stats.Visible) / float32(frame.Stats.TotalCandidates)
	}

	return FrameResponsePayload{
		Year:   frame.Year,
		Groups: groups,
		Stats: FrameStatsPayload{
			TotalCandidates: frame.Stats.TotalCandidates,
			CulledBySpatial: frame.Stats.CulledBySpatial,
			CulledByFrustum: frame.Stats.CulledByFrustum,
			Visible:         frame.Stats.Visible,
			ElapsedMicros:   frame.Stats.Elapsed.Microseconds(),
			VisibleRatio:    visibleRatio,
		},
	}
}
