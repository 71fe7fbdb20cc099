package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/socialkit/pkg/logger"
)

// UserResolver identifies the user behind a websocket upgrade request.
type UserResolver func(r *http.Request) (string, error)

// Handler upgrades requests to websocket sessions fed by a Hub.
// Clients only receive; inbound frames other than control frames are ignored.
type Handler struct {
	hub      *Hub
	resolve  UserResolver
	upgrader websocket.Upgrader
	write    time.Duration
	ping     time.Duration
	log      *slog.Logger
}

type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler serves websocket sessions for users identified by resolve.
func NewHandler(hub *Hub, resolve UserResolver, cfg Config, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub:     hub,
		resolve: resolve,
		write:   cfg.WriteTimeout,
		ping:    cfg.PingInterval,
		log:     slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if h.write <= 0 {
		h.write = 10 * time.Second
	}
	if h.ping <= 0 {
		h.ping = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) > 0 {
		origins := slices.Clone(cfg.AllowedOrigins)
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("realtime"))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolve(r)
	if err != nil || userID == "" {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.DebugContext(r.Context(), "websocket upgrade failed", logger.UserID(userID), logger.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := uuid.NewString()
	log := h.log.With(logger.UserID(userID), logger.SessionID(sessionID))

	events, err := h.hub.Subscribe(ctx, userID)
	if err != nil {
		code, reason := websocket.CloseGoingAway, "shutting down"
		if errors.Is(err, ErrHubFull) {
			code, reason = websocket.CloseTryAgainLater, "too many connections"
		}
		log.WarnContext(ctx, "websocket session refused", logger.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(h.write))
		_ = conn.Close()
		return
	}

	log.DebugContext(ctx, "websocket session opened")
	go h.readLoop(conn, h.ping*2, cancel)
	h.writeLoop(ctx, conn, events)
	_ = conn.Close()
	log.DebugContext(ctx, "websocket session closed")
}

// readLoop drains inbound frames so control frames are processed and the
// peer's disconnect is noticed.
func (h *Handler) readLoop(conn *websocket.Conn, pongWait time.Duration, done context.CancelFunc) {
	defer done()
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan Envelope) {
	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.write))
			return
		case env, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"),
					time.Now().Add(h.write))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.write))
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.write)); err != nil {
				return
			}
		}
	}
}
