package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher runs notifications in the background with a bounded timeout.
// Failures and panics are logged and swallowed so they never reach the
// request that triggered them.  There is no retry.
type Dispatcher struct {
	next    Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(next Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{next: next, timeout: timeout}
}

// OrderStatus schedules an order status notification and returns at once.
func (d *Dispatcher) OrderStatus(n OrderStatusNotice) {
	d.run("order status", func(ctx context.Context) error { return d.next.OrderStatus(ctx, n) })
}

// DriverLocation schedules a driver location notification and returns at once.
func (d *Dispatcher) DriverLocation(n DriverLocationNotice) {
	d.run("driver location", func(ctx context.Context) error { return d.next.DriverLocation(ctx, n) })
}

// Wait blocks until every scheduled notification has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) run(kind string, fn func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notify: %s dispatch panicked: %v", kind, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("notify: %s dispatch failed: %v", kind, err)
		}
	}()
}
