package rendezvous

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/karaokenatin/roomsync/pkg/ctxlogger"
	"github.com/karaokenatin/roomsync/pkg/validator"
	"github.com/karaokenatin/roomsync/pkg/wsrouter"
)

type Controller struct {
	service  *Service
	upgrader websocket.Upgrader
	validate *validator.Validator
	wsmux    *wsrouter.WSRouter
	logger   *slog.Logger
	// gorilla conns do not allow concurrent writers; a guest join writes to
	// the host's conn from the guest's goroutine
	writeMu sync.Mutex
}

func NewController(service *Service, logger *slog.Logger) *Controller {
	c := &Controller{
		service: service,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}

func (c *Controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.connIdMw)
	r.HandleFunc("/ws", c.serveWS)

	return r
}

func (c *Controller) connIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c *Controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle(EventCreateRoom, c.handleCreateRoom)
	mux.Handle(EventJoinRoom, c.handleJoinRoom)
	mux.Handle(EventLeaveRoom, c.handleLeaveRoom)

	mux.OnError(func(ctx context.Context, conn *websocket.Conn, msgType string, err error) {
		c.logger.DebugContext(ctx, "event handler failed", "event", msgType, "error", err)
		c.writeError(conn, msgType+"_FAILED", err.Error())
	})

	return mux
}

func (c *Controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	if err := c.wsmux.ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "error", err)
	}

	// transport drop and LEAVE_ROOM share the disconnect path; a second
	// call for an already-untracked conn is a no-op
	c.disconnect(r.Context(), conn)
}

func (c *Controller) handleCreateRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input CreateRoomInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("validation error: %v", validationErrors)
	}

	resp, err := c.service.CreateRoom(ctx, &CreateRoomParams{
		Conn:            conn,
		RoomId:          input.RoomId,
		JoinTokenHash:   input.JoinTokenHash,
		HostPeerAddress: input.HostPeerAddress,
	})
	if err != nil {
		return err
	}

	return c.writeToConn(conn, &Output{
		Type:    EventRoomCreated,
		Payload: RoomCreatedPayload{RoomId: resp.RoomId},
	})
}

func (c *Controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JoinRoomInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("validation error: %v", validationErrors)
	}

	resp, err := c.service.JoinRoom(ctx, &JoinRoomParams{
		Conn:        conn,
		RoomId:      input.RoomId,
		JoinToken:   input.JoinToken,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		var rejection RejectionError
		if errors.As(err, &rejection) {
			c.logger.InfoContext(ctx, "join rejected", "reason", rejection.Reason)
			return c.writeToConn(conn, &Output{
				Type:    EventJoinRejected,
				Payload: JoinRejectedPayload{Reason: rejection.Reason},
			})
		}
		return err
	}

	if resp.HostConn != nil {
		if err := c.writeToConn(resp.HostConn, &Output{
			Type: EventClientJoined,
			Payload: ClientJoinedPayload{
				ClientId:    resp.ClientId,
				DisplayName: input.DisplayName,
				PeerAddress: resp.HostPeerAddress,
			},
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to notify host", "error", err)
		}
	}

	return c.writeToConn(conn, &Output{
		Type: EventJoinSuccess,
		Payload: JoinSuccessPayload{
			RoomId:          resp.RoomId,
			HostPeerAddress: resp.HostPeerAddress,
		},
	})
}

func (c *Controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	c.disconnect(ctx, conn)
	return nil
}

func (c *Controller) disconnect(ctx context.Context, conn *websocket.Conn) {
	resp, err := c.service.Disconnect(ctx, conn)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to handle disconnect", "error", err)
		return
	}

	if resp.WasHost {
		for _, guestConn := range resp.GuestConns {
			if err := c.writeToConn(guestConn, &Output{Type: EventHostDisconnected}); err != nil {
				c.logger.DebugContext(ctx, "failed to notify guest", "error", err)
			}
		}
		return
	}

	if resp.ClientId != "" && resp.HostConn != nil {
		if err := c.writeToConn(resp.HostConn, &Output{
			Type:    EventClientLeft,
			Payload: ClientLeftPayload{ClientId: resp.ClientId},
		}); err != nil {
			c.logger.DebugContext(ctx, "failed to notify host", "error", err)
		}
	}
}

func (c *Controller) writeToConn(conn *websocket.Conn, output *Output) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return conn.WriteJSON(output)
}

func (c *Controller) writeError(conn *websocket.Conn, code string, message string) {
	_ = c.writeToConn(conn, &Output{
		Type:    EventError,
		Payload: ErrorPayload{Code: code, Message: message},
	})
}
