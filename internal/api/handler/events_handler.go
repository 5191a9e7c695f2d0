package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const (
	EventConnectivityChanged = "connectivity-changed"
	EventAuthChanged         = "auth-changed"

	eventBuffer       = 16
	heartbeatInterval = 15 * time.Second
)

type streamEvent struct {
	name string
	data any
}

type connectivityEvent struct {
	Reachable bool `json:"reachable"`
}

type authEvent struct {
	Account *domain.Account `json:"account"`
}

// EventsHandler streams state changes to UI processes as Server-Sent Events.
type EventsHandler struct {
	reach     ports.Reachability
	auth      ports.AuthService
	heartbeat time.Duration
	log       zerolog.Logger
}

func NewEventsHandler(reach ports.Reachability, auth ports.AuthService, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{reach: reach, auth: auth, heartbeat: heartbeatInterval, log: log}
}

// Stream sends the current connectivity and auth state, then every change,
// until the client disconnects. A client that cannot keep up loses events
// instead of stalling the broadcasters.
//
// @Summary      Subscribe to state changes
// @Tags         events
// @Produce      text/event-stream
// @Success      200
// @Router       /v1/events [get]
func (h *EventsHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	events := make(chan streamEvent, eventBuffer)
	var dropped atomic.Int64
	defer func() {
		if n := dropped.Load(); n > 0 {
			h.log.Debug().Int64("dropped", n).Msg("slow event stream client")
		}
	}()

	push := func(ev streamEvent) {
		select {
		case events <- ev:
		default:
			dropped.Add(1)
		}
	}

	unsubReach := h.reach.Subscribe(func(reachable bool) {
		push(streamEvent{name: EventConnectivityChanged, data: connectivityEvent{Reachable: reachable}})
	})
	defer unsubReach()
	unsubAuth := h.auth.OnAuthStateChange(func(acc *domain.Account) {
		push(streamEvent{name: EventAuthChanged, data: authEvent{Account: acc}})
	})
	defer unsubAuth()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev := <-events:
			if err := writeEvent(res, ev); err != nil {
				h.log.Debug().Err(err).Str("event", ev.name).Msg("event stream closed")
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, ev streamEvent) error {
	data, err := json.Marshal(ev.data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.name, data)
	return err
}
