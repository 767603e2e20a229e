// Package events publishes registration announcements for downstream
// consumers (welcome mail, analytics). Delivery is best-effort.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"userorg-backend/internal/models"
)

const subjectUserRegistered = "users.registered"

// UserRegisteredEvent is the wire payload published on users.registered.
type UserRegisteredEvent struct {
	UserID       string    `msgpack:"user_id"`
	Email        string    `msgpack:"email"`
	FirstName    string    `msgpack:"first_name"`
	LastName     string    `msgpack:"last_name"`
	OrgID        string    `msgpack:"org_id"`
	RegisteredAt time.Time `msgpack:"registered_at"`
}

type Publisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect establishes the NATS connection with reconnect handling.
func Connect(url string, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(1 * time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("connected to nats", zap.String("url", nc.ConnectedUrl()))

	return &Publisher{nc: nc, log: logger}, nil
}

// UserRegistered publishes a users.registered event for the new user.
func (p *Publisher) UserRegistered(ctx context.Context, user *models.User, orgID string) error {
	event := UserRegisteredEvent{
		UserID:       user.UserID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		OrgID:        orgID,
		RegisteredAt: time.Now().UTC(),
	}

	payload, err := msgpack.Marshal(&event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(subjectUserRegistered, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subjectUserRegistered, err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
