package hws

import (
	"net/http"

	"ledger-service/pkg/auth/middleware"
	notifier "ledger-service/pkg/notifier/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const readLimit = 512

// SocketHandler upgrades authenticated requests to websocket subscribers of
// the ledger notifier.
type SocketHandler struct {
	manager  *notifier.Manager
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewSocketHandler(manager *notifier.Manager, allowedOrigins []string, logger *zap.Logger) *SocketHandler {
	return &SocketHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWS registers the connection, which first receives the current
// outstanding total, and keeps it registered until the client disconnects
// or a delivery fails.
func (h *SocketHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetAdminID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := notifier.NewConnection(conn, adminID)
	if err := h.manager.Subscribe(r.Context(), c); err != nil {
		_ = c.Close()
		return
	}

	err = c.ReadUntilClosed(readLimit)
	h.manager.Unsubscribe(c)
	_ = c.Close()

	h.logger.Debug("websocket closed",
		zap.String("subscriber_id", c.ID()),
		zap.String("admin_id", adminID),
		zap.Error(err))
}
