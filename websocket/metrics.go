package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/websocket"
)

const (
	errTypeLabel = "error_type"
	msgTypeLabel = "msg_type"
)

var (
	wsConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "The number of connected viewers.",
	})

	wsReceivedMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_msgs",
		Help: "The number of messages received from WebSocket connections.",
	}, []string{
		msgTypeLabel,
	})

	wsReceivedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_bytes",
		Help: "The number of bytes received from WebSocket connections.",
	}, []string{
		msgTypeLabel,
	})

	wsReceiveError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_receive_errors",
		Help: "The errors that occured while receiving a websocket message.",
	}, []string{
		errTypeLabel,
	})

	wsSentMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_msgs",
		Help: "The number of messages sent to WebSocket connections.",
	}, []string{
		msgTypeLabel,
	})

	wsSentBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_bytes",
		Help: "The number of bytes sent to WebSocket connections.",
	}, []string{
		msgTypeLabel,
	})

	wsSendError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_send_errors",
		Help: "The errors that occured while sending a websocket message.",
	}, []string{
		errTypeLabel,
		msgTypeLabel,
	})

	wsMsgLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ws_msg_latency",
		Help: "The time to process a WebSocket msg.",
	}, []string{
		msgTypeLabel,
	})
)

// HandlerWithMetrics wraps a handler with WebSocket traffic metrics.
func HandlerWithMetrics(h Handler) Handler {
	return &handlerWithMetrics{
		Handler: h,
	}
}

type handlerWithMetrics struct {
	Handler
}

func (h *handlerWithMetrics) HandleConnect(conn *websocket.Conn) {
	wsConnectedClients.Inc()

	h.Handler.HandleConnect(conn)
}

func (h *handlerWithMetrics) HandleDisconnect(err error) {
	wsConnectedClients.Dec()

	h.Handler.HandleDisconnect(err)
}

func (h *handlerWithMetrics) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandlePing(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleCameraUpdate(ctx context.Context, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleCameraUpdate(ctx, msg)
	})
}

func (h *handlerWithMetrics) HandleYearSet(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleYearSet(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleFrameRequest(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleFrameRequest(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleSceneRequest(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleSceneRequest(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleFrameSubscribe(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleFrameSubscribe(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleFrameUnsubscribe(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleFrameUnsubscribe(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) SendFrame(ctx context.Context, respond ResponseSender) error {
	return h.measureLatency(Msg{Type: MsgTypeFrameResponse}, func() error {
		return h.Handler.SendFrame(ctx, respond)
	})
}

func (h *handlerWithMetrics) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		if err != nil {
			wsReceiveError.
				With(prometheus.Labels{
					errTypeLabel: errors.Type(err),
				}).
				Inc()
		} else {
			wsReceivedMsgs.
				With(prometheus.Labels{
					msgTypeLabel: msg.Type,
				}).
				Inc()
		}

		if n != 0 {
			wsReceivedBytes.
				With(prometheus.Labels{
					msgTypeLabel: msg.Type,
				}).
				Add(float64(n))
		}

		return msg, n, err
	}
}

func (h *handlerWithMetrics) Sender() Sender {
	sender := h.Handler.Sender()

	return func(msg Msg) (int, error) {
		n, err := sender(msg)
		if err != nil {
			wsSendError.
				With(prometheus.Labels{
					msgTypeLabel: msg.Type,
					errTypeLabel: errors.Type(err),
				}).
				Inc()
		}

		if n != 0 {
			wsSentMsgs.
				With(prometheus.Labels{
					msgTypeLabel: msg.Type,
				}).
				Inc()
			wsSentBytes.
				With(prometheus.Labels{
					msgTypeLabel: msg.Type,
				}).
				Add(float64(n))
		}

		return n, err
	}
}

func (h *handlerWithMetrics) measureLatency(msg Msg, f func() error) error {
	start := time.Now()

	err := f()
	if errors.IsType(err, ErrTypeMsgSkip) {
		return err
	}

	wsMsgLatency.With(prometheus.Labels{
		msgTypeLabel: msg.Type,
	}).Observe(time.Since(start).Seconds())

	return err
}
