package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

// HandlerWithLogs wraps a handler with connection lifecycle logs and a
// periodic message count summary.
func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	logs.WithTag("client_id", h.GetClientID()).
		Info("new viewer is connected")
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	logs.WithTag("client_id", h.GetClientID()).
		WithTag("reason", err).
		Info("viewer disconnected")
}

func (h *handlerWithLogs) HandleYearSet(ctx context.Context, respond ResponseSender, msg Msg) error {
	if err := h.Handler.HandleYearSet(ctx, respond, msg); err != nil {
		return err
	}

	var payload YearSetPayload
	msg.DataTo(&payload)

	logs.WithTag("client_id", h.GetClientID()).
		WithTag("year", payload.Year).
		Debug("viewer changed year")
	return nil
}

func (h *handlerWithLogs) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		if err == nil {
			h.count(msg.Type)
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.closeSummaryWorker()
	h.Handler.Close()
}

func (h *handlerWithLogs) count(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.counterMutex.Lock()
			counter := h.counter
			h.counter = make(map[string]int)
			h.counterMutex.Unlock()

			if len(counter) == 0 {
				continue
			}

			logs.WithTag("client_id", h.GetClientID()).
				WithTag("received_msgs", counter).
				Info("viewer message summary")
		}
	}
}
