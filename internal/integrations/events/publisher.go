package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Publisher публикует события бронирований в NATS
// Subject события: <prefix>.<type>, например reservations.confirmed
type Publisher struct {
	conn   Connection
	prefix string
	now    func() time.Time
	log    Logger
}

// NewPublisher создает издателя поверх готового соединения
func NewPublisher(conn Connection, prefix string, log Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		now:    time.Now,
		log:    log,
	}
}

// Connect подключается к NATS и создает издателя
func Connect(url, prefix string, timeout time.Duration, log Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("reservation-service"),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, url, err)
	}

	log.Info("Connected to NATS at %s, subject prefix=%s", url, prefix)
	return NewPublisher(conn, prefix, log), nil
}

// Close закрывает соединение
func (p *Publisher) Close() {
	p.conn.Close()
}

func (p *Publisher) OnCreated(ctx context.Context, res *domain.Reservation) error {
	return p.publish(ctx, newEvent(TypeCreated, res, p.now()))
}

func (p *Publisher) OnStatusChanged(ctx context.Context, res *domain.Reservation, previousStatus string) error {
	event := newEvent(TypeStatusChanged, res, p.now())
	event.PreviousStatus = previousStatus
	return p.publish(ctx, event)
}

func (p *Publisher) OnConfirmed(ctx context.Context, res *domain.Reservation) error {
	return p.publish(ctx, newEvent(TypeConfirmed, res, p.now()))
}

func (p *Publisher) OnCancelled(ctx context.Context, res *domain.Reservation) error {
	return p.publish(ctx, newEvent(TypeCancelled, res, p.now()))
}

// Subject возвращает subject для типа события
func (p *Publisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s for reservation id=%s: %v", ErrPublish, event.Type, event.ReservationID, err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMarshal, event.Type, err)
	}

	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Error("publish: subject=%s reservation id=%s: %v", subject, event.ReservationID, err)
		return fmt.Errorf("%w: %s: %v", ErrPublish, subject, err)
	}

	p.log.Info("publish: subject=%s reservation id=%s", subject, event.ReservationID)
	return nil
}
