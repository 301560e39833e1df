// Package natsbus publishes finished Truco games on NATS.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"truco/internal/app"
	"truco/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is prepended to the room id of every published result.
const DefaultSubjectPrefix = "truco.results"

// publisher is the part of *nats.Conn the results publisher uses.
type publisher interface {
	Publish(subject string, data []byte) error
}

// Publisher sends game results to "<prefix>.<room id>".
type Publisher struct {
	pub    publisher
	conn   *nats.Conn
	prefix string
	logger runtime.Logger
}

// NewPublisher wraps an existing connection or any compatible publisher.
func NewPublisher(pub publisher, prefix string, logger runtime.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	p := &Publisher{pub: pub, prefix: prefix, logger: logger}
	if conn, ok := pub.(*nats.Conn); ok {
		p.conn = conn
	}
	return p
}

// Connect dials url and returns a publisher that reconnects forever.
func Connect(url, name string, logger runtime.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("natsbus: Disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("natsbus: Reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return NewPublisher(conn, DefaultSubjectPrefix, logger), nil
}

// Subject returns the subject results of roomID are published on.
func (p *Publisher) Subject(roomID string) string {
	return p.prefix + "." + roomID
}

// RecordGameResult publishes result as JSON.
func (p *Publisher) RecordGameResult(ctx context.Context, result ports.GameResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}
	if err := p.pub.Publish(p.Subject(result.RoomID), data); err != nil {
		return fmt.Errorf("failed to publish game result: %w", err)
	}
	return nil
}

// Deliver publishes the result carried by a game_ended event. It runs on the
// room goroutine, so failures are only logged.
func (p *Publisher) Deliver(roomID string, events []app.Event) {
	for _, ev := range events {
		if ev.Kind != app.EventGameEnded {
			continue
		}
		payload, ok := ev.Payload.(app.GameEndedPayload)
		if !ok {
			continue
		}
		if err := p.RecordGameResult(context.Background(), payload.Result); err != nil {
			p.logger.Error("natsbus: Room %s: %v", roomID, err)
			continue
		}
		p.logger.Info("natsbus: Published result of room %s on %s", roomID, p.Subject(roomID))
	}
}

// Check reports a lost connection for the health endpoint.
func (p *Publisher) Check() error {
	if p.conn != nil && !p.conn.IsConnected() {
		return errors.New("nats connection is " + p.conn.Status().String())
	}
	return nil
}

// Close drains the underlying connection, if any.
func (p *Publisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.logger.Warn("natsbus: Drain failed: %v", err)
		}
	}
}

var (
	_ ports.ResultsPort = (*Publisher)(nil)
	_ app.Sink          = (*Publisher)(nil)
)
