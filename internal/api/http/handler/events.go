package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
	"github.com/fync-app/fync-server/internal/service"
)

// Events streams session state transitions over server-sent events.
type Events struct {
	bus    *service.SessionEvents
	logger *logger.Logger
}

// NewEvents creates a new Events handler.
func NewEvents(bus *service.SessionEvents, logger *logger.Logger) *Events {
	return &Events{bus: bus, logger: logger}
}

type sessionEventView struct {
	Kind   model.SessionEventKind `json:"kind"`
	UserID string                 `json:"user_id,omitempty"`
	Email  string                 `json:"email,omitempty"`
}

// Stream subscribes the client to session transitions. The subscription
// lasts until the client disconnects.
func (h *Events) Stream(c *gin.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	h.logger.Debug("Events handler: client subscribed")

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			view := sessionEventView{Kind: event.Kind, Email: event.Email}
			if event.Kind == model.SessionSignedIn {
				view.UserID = event.UserID.String()
			}
			data, err := json.Marshal(view)
			if err != nil {
				return false
			}
			c.SSEvent(string(event.Kind), string(data))
			return true
		}
	})

	h.logger.Debug("Events handler: client unsubscribed")
}
