// Package notify delivers order status and driver location changes to
// users by email and push notification.  Delivery is best effort: callers
// hand notices to a Dispatcher and never see delivery failures.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notifier delivers a single notice.  Implementations may block on network
// calls and must honour ctx cancellation.
type Notifier interface {
	OrderStatus(ctx context.Context, n OrderStatusNotice) error
	DriverLocation(ctx context.Context, n DriverLocationNotice) error
}

// Contact holds where a user can be reached.  Empty fields are skipped.
type Contact struct {
	Email     string `json:"email,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// OrderStatusNotice is sent when an order changes status.
type OrderStatusNotice struct {
	UserID  string
	OrderID string
	Status  string
	To      Contact
}

// DriverLocationNotice is sent to the owner of every undelivered order a
// driver serves when the driver reports a new position.
type DriverLocationNotice struct {
	UserID   string
	OrderID  string
	DriverID string
	Lat      float64
	Lng      float64
	To       Contact
}

// Message is the rendered subject and body shared by all channels.
type Message struct {
	Subject string
	Body    string
}

func (n OrderStatusNotice) Message() Message {
	return Message{
		Subject: fmt.Sprintf("Order %s status update", n.OrderID),
		Body:    fmt.Sprintf("Your order %s status changed to %s.", n.OrderID, n.Status),
	}
}

func (n DriverLocationNotice) Message() Message {
	return Message{
		Subject: fmt.Sprintf("Driver %s location update", n.DriverID),
		Body:    fmt.Sprintf("Driver %s is at (%v, %v)", n.DriverID, n.Lat, n.Lng),
	}
}

// Channels sends notices directly over email and push.  A nil sender
// disables that channel.
type Channels struct {
	Email *EmailSender
	Push  *PushSender
}

func (c *Channels) OrderStatus(ctx context.Context, n OrderStatusNotice) error {
	return c.deliver(ctx, n.To, n.Message())
}

func (c *Channels) DriverLocation(ctx context.Context, n DriverLocationNotice) error {
	return c.deliver(ctx, n.To, n.Message())
}

func (c *Channels) deliver(ctx context.Context, to Contact, msg Message) error {
	var errs []error
	if to.Email != "" && c.Email != nil {
		if err := c.Email.Send(ctx, to.Email, msg); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if to.PushToken != "" && c.Push != nil {
		if err := c.Push.Send(ctx, to.PushToken, msg); err != nil {
			errs = append(errs, fmt.Errorf("push: %w", err))
		}
	}
	return errors.Join(errs...)
}
