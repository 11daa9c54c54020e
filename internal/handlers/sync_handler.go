package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/syncbus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are enforced upstream by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SyncHandler serves the sync-signal surface: a websocket push stream
// plus a polling endpoint that replays the durable feed, which is how
// clients self-heal after missing a push.
type SyncHandler struct {
	hub  *syncbus.Hub
	feed repositories.SyncEventRepository
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(hub *syncbus.Hub, feed repositories.SyncEventRepository) *SyncHandler {
	return &SyncHandler{hub: hub, feed: feed}
}

// RegisterSyncRoutes registers sync routes
func (h *SyncHandler) RegisterSyncRoutes(g *echo.Group) {
	g.GET("/sync/ws", h.Subscribe)
	g.GET("/sync/events", h.Poll)
}

// Subscribe upgrades to websocket and streams signals until the client
// disconnects.
func (h *SyncHandler) Subscribe(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("sync: websocket upgrade for user %d: %v", actor.ID, err)
		return err
	}

	client := syncbus.NewClient(h.hub, conn, actor.ID)
	h.hub.Register(client)
	client.Run()
	return nil
}

// Poll replays signals newer than the `since` query parameter
// (RFC 3339). Without the parameter only the last half minute is
// replayed, matching the clients' polling interval.
func (h *SyncHandler) Poll(c echo.Context) error {
	if _, ok := actorFromContext(c); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	since := time.Now().Add(-30 * time.Second)
	if v := c.QueryParam("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid since timestamp")
		}
		since = parsed
	}

	signals, err := h.feed.Since(c.Request().Context(), since)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"events": signals}})
}
