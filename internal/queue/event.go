// Package queue carries notification events over RabbitMQ so that email
// and push delivery can run outside the request path.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/kleanly/kleanly-api/internal/notify"
)

// Event kinds.
const (
	KindOrderStatus    = "order_status"
	KindDriverLocation = "driver_location"
)

// NotificationEvent is the JSON payload published for every notice.
type NotificationEvent struct {
	Kind      string         `json:"kind"`
	UserID    string         `json:"user_id"`
	OrderID   string         `json:"order_id,omitempty"`
	Status    string         `json:"status,omitempty"`
	DriverID  string         `json:"driver_id,omitempty"`
	Lat       float64        `json:"lat"`
	Lng       float64        `json:"lng"`
	To        notify.Contact `json:"to"`
	CreatedAt time.Time      `json:"created_at"`
}

func orderStatusEvent(n notify.OrderStatusNotice) NotificationEvent {
	return NotificationEvent{
		Kind:      KindOrderStatus,
		UserID:    n.UserID,
		OrderID:   n.OrderID,
		Status:    n.Status,
		To:        n.To,
		CreatedAt: time.Now().UTC(),
	}
}

func driverLocationEvent(n notify.DriverLocationNotice) NotificationEvent {
	return NotificationEvent{
		Kind:      KindDriverLocation,
		UserID:    n.UserID,
		OrderID:   n.OrderID,
		DriverID:  n.DriverID,
		Lat:       n.Lat,
		Lng:       n.Lng,
		To:        n.To,
		CreatedAt: time.Now().UTC(),
	}
}

// Deliver hands the event to n as the notice it was built from.
func (ev NotificationEvent) Deliver(ctx context.Context, n notify.Notifier) error {
	switch ev.Kind {
	case KindOrderStatus:
		return n.OrderStatus(ctx, notify.OrderStatusNotice{
			UserID: ev.UserID, OrderID: ev.OrderID, Status: ev.Status, To: ev.To,
		})
	case KindDriverLocation:
		return n.DriverLocation(ctx, notify.DriverLocationNotice{
			UserID: ev.UserID, OrderID: ev.OrderID, DriverID: ev.DriverID, Lat: ev.Lat, Lng: ev.Lng, To: ev.To,
		})
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}
