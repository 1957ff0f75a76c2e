package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 512
	receiveChanSize = 64
)

// Handler represents a viewer connection handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Handles a ping request.
	HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles an orbital camera update.
	HandleCameraUpdate(ctx context.Context, msg Msg) error

	// Handles a request to change the displayed commissioning year.
	HandleYearSet(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles an explicit frame request.
	HandleFrameRequest(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to describe the loaded scene.
	HandleSceneRequest(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to start receiving periodic frames.
	HandleFrameSubscribe(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to stop receiving periodic frames.
	HandleFrameUnsubscribe(ctx context.Context, respond ResponseSender, msg Msg) error

	// Sends a frame to the client when it is subscribed.
	SendFrame(ctx context.Context, respond ResponseSender) error

	// Creates a message receiver used to receive incoming messages.
	Receiver() Receiver

	// Creates a message sender passed in service methods in order to send
	// messages.
	Sender() Sender

	// Closes the handler and releases its allocated resources.
	Close()

	// The interval between periodic frames sent to a subscribed client.
	FrameInterval() time.Duration

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	// Get ClientID
	GetClientID() string
}

// Handle runs the connection loop for the given handler.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	// The WebSocket connection.
	Conn *websocket.Conn

	// The viewer handler.
	Handler Handler

	sendChan       chan Msg
	receiveChan    chan Msg
	sender         Sender
	receiver       Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	h.sendChan = make(chan Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.receiveChan = make(chan Msg, receiveChanSize)
	h.receiver = h.Handler.Receiver()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	frameTicker := time.NewTicker(h.Handler.FrameInterval())
	defer frameTicker.Stop()

	var responder = responseSender{
		sendMsg: h.sendMsg,
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			h.disconnect(ctx.Err())

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", h.Handler.IdleTimeout()))

		case <-frameTicker.C:
			if err := h.Handler.SendFrame(ctx, responder); err != nil {
				h.disconnect(errors.New("sending frame failed").Wrap(err))
			}

		case msg := <-h.receiveChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.handleDisconnect(err)
			if ctx.Err() == nil {
				// cancel context so go routines can cleanly exit
				cancel()
			}
		}
	}

	wg.Wait()
}

func (h *handler) sendMsg(msg Msg) {
	h.sendChan <- msg
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		default:
			msg, _, err := h.receiver()
			if err != nil {
				h.disconnect(errors.New("receiving message failed").Wrap(err))
				return
			}

			select {
			case h.receiveChan <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *handler) handleMessage(ctx context.Context, msg Msg, responder ResponseSender) error {
	var err error

	switch msg.Type {
	case MsgTypePing:
		err = h.Handler.HandlePing(ctx, responder, msg)

	case MsgTypeCameraUpdate:
		err = h.Handler.HandleCameraUpdate(ctx, msg)

	case MsgTypeYearSet:
		err = h.Handler.HandleYearSet(ctx, responder, msg)

	case MsgTypeFrameRequest:
		err = h.Handler.HandleFrameRequest(ctx, responder, msg)

	case MsgTypeSceneRequest:
		err = h.Handler.HandleSceneRequest(ctx, responder, msg)

	case MsgTypeFrameSubscribe:
		err = h.Handler.HandleFrameSubscribe(ctx, responder, msg)

	case MsgTypeFrameUnsubscribe:
		err = h.Handler.HandleFrameUnsubscribe(ctx, responder, msg)
	}

	return err
}

func (h *handler) disconnect(err error) {
	h.disconnectChan <- err
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

type responseSender struct {
	sendMsg func(Msg)
}

func (r responseSender) Send(msg Msg) {
	r.sendMsg(msg)
}
