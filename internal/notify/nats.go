package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes notices as JSON to "<subject>.<kind>".
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS dials url and returns a sink publishing under subject.
func ConnectNATS(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("vidtally"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSSink{conn: nc, subject: subject}, nil
}

// Subject returns the full subject a notice of kind is published on.
func (s *NATSSink) Subject(kind Kind) string {
	return s.subject + "." + string(kind)
}

func (s *NATSSink) Publish(_ context.Context, n Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	if err := s.conn.Publish(s.Subject(n.Kind), data); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
