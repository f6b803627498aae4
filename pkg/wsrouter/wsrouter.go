// Package wsrouter dispatches JSON messages of the form
// {"type": "...", "payload": {...}} read from a websocket connection to
// handlers registered per message type.
package wsrouter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
)

var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

// ErrorHandlerFunc is called with every error returned by a handler. The
// read loop keeps serving; only transport errors end it.
type ErrorHandlerFunc func(ctx context.Context, conn *websocket.Conn, msgType string, err error)

type WSRouter struct {
	routes  map[string]HandlerFunc
	onError ErrorHandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

func (r *WSRouter) OnError(handler ErrorHandlerFunc) {
	r.onError = handler
}

// ServeConn reads messages from conn until the connection drops or ctx is
// cancelled, routing each message to its handler. The returned error is the
// transport error that ended the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			if r.onError != nil {
				r.onError(ctx, conn, msg.Type, ErrUnknownMessageType)
			}
			continue
		}

		if err := handler(ctx, conn, msg.Payload); err != nil {
			if r.onError != nil {
				r.onError(ctx, conn, msg.Type, err)
			}
		}
	}
}
