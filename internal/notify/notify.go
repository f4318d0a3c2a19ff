// Package notify tells the outside world about confirmed reservations. Sends
// happen off the request path; a failed send is logged and otherwise ignored,
// it never undoes the reservation.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"barber-reservation-api/internal/model"
)

// Confirmation is what a customer-facing mailer needs to build its message.
type Confirmation struct {
	ReservationID int64  `json:"reservation_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

func FromReservation(r model.Reservation) Confirmation {
	return Confirmation{ReservationID: r.ID, Name: r.Name, Email: r.Email, Date: r.Date, Time: r.Time}
}

type Sink interface {
	Send(ctx context.Context, c Confirmation) error
}

const defaultTimeout = 10 * time.Second

// Dispatcher fans a confirmation out to every sink in the background.
type Dispatcher struct {
	sinks   []Sink
	log     *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{sinks: sinks, log: log, timeout: timeout}
}

// ReservationConfirmed returns immediately. Request cancellation does not
// cancel the sends; only the dispatcher timeout does.
func (d *Dispatcher) ReservationConfirmed(ctx context.Context, r model.Reservation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.WarnContext(ctx, "notification dropped after shutdown", "reservation_id", r.ID)
		return
	}

	c := FromReservation(r)
	base := context.WithoutCancel(ctx)
	for _, s := range d.sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()
			if err := s.Send(ctx, c); err != nil {
				d.log.WarnContext(ctx, "notification failed",
					"reservation_id", c.ReservationID, "sink", sinkName(s), "err", err)
			}
		}(s)
	}
}

// Close stops accepting work and waits for in-flight sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

type named interface{ Name() string }

func sinkName(s Sink) string {
	if n, ok := s.(named); ok {
		return n.Name()
	}
	return "sink"
}

// LogSink writes confirmations to the structured log. It is the only sink
// when no broker is configured.
type LogSink struct {
	Log *slog.Logger
}

func (LogSink) Name() string { return "log" }

func (l LogSink) Send(ctx context.Context, c Confirmation) error {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "reservation confirmed",
		"reservation_id", c.ReservationID, "email", c.Email, "date", c.Date, "time", c.Time)
	return nil
}
