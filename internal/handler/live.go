package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/repository"
)

// LiveHandler pushes entity snapshots over websockets.  Every message the
// client sends triggers one fresh read and one snapshot; there is no
// server side polling and nothing is cached between ticks.  The
// connection lives until the client goes away.
type LiveHandler struct {
	Orders   *repository.OrderRepo
	Drivers  *repository.DriverRepo
	upgrader websocket.Upgrader
}

func NewLiveHandler(o *repository.OrderRepo, d *repository.DriverRepo) *LiveHandler {
	return &LiveHandler{
		Orders:  o,
		Drivers: d,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type orderSnapshot struct {
	Status   string  `json:"status"`
	DriverID *string `json:"driver_id"`
}

type driverSnapshot struct {
	DriverID string   `json:"driver_id"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

// OrderStatus handles /ws/orders/:order_id.  Nothing is sent for a tick
// while the order does not exist.
func (h *LiveHandler) OrderStatus(c echo.Context) error {
	id := c.Param("order_id")
	return h.serve(c, func(ctx context.Context) (any, error) {
		o, err := h.Orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return orderSnapshot{Status: o.Status, DriverID: o.DriverID}, nil
	})
}

// DriverLocation handles /ws/drivers/:driver_id/location.  An unknown
// driver or one that never reported a position yields null coordinates.
func (h *LiveHandler) DriverLocation(c echo.Context) error {
	id := c.Param("driver_id")
	return h.serve(c, func(ctx context.Context) (any, error) {
		snap := driverSnapshot{DriverID: id}
		d, err := h.Drivers.GetByID(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			snap.Lat, snap.Lng = d.Lat, d.Lng
		}
		return snap, nil
	})
}

// serve upgrades the request and alternates snapshot, wait for client
// message.  The store is only touched inside snapshot, never while
// waiting on the client.
func (h *LiveHandler) serve(c echo.Context, snapshot func(context.Context) (any, error)) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		return nil
	}
	defer conn.Close()

	for {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		snap, err := snapshot(ctx)
		cancel()
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			log.Printf("live: snapshot for %s failed: %v", c.Request().URL.Path, err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "internal error"),
				time.Now().Add(dbTimeout))
			return nil
		default:
			if err := conn.WriteJSON(snap); err != nil {
				return nil
			}
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
