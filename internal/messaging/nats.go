package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

// publisher is the subset of stan.Conn the client needs.
type publisher interface {
	Publish(subject string, data []byte) error
	Close() error
}

type NATSClient struct {
	conn publisher
	lost atomic.Pointer[error]
}

var ErrConnectionLost = errors.New("NATS Streaming connection lost")

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
}

// NewNATSClient connects to NATS Streaming. A disabled config yields a client
// whose Publish is a no-op.
func NewNATSClient(cfg Config) (*NATSClient, error) {
	if !cfg.Enabled {
		slog.Info("NATS publishing disabled")
		return &NATSClient{}, nil
	}

	// Generate unique client ID to avoid conflicts
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	nc := &NATSClient{}
	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID,
		stan.NatsURL(cfg.URL),
		stan.ConnectWait(5*time.Second),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			slog.Error("NATS Streaming connection lost", "error", reason)
			nc.markLost(reason)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", uniqueClientID)

	nc.conn = conn
	return nc, nil
}

func (nc *NATSClient) markLost(reason error) {
	err := fmt.Errorf("%w: %v", ErrConnectionLost, reason)
	nc.lost.Store(&err)
}

// HealthCheck fails once the streaming connection has been lost. stan does
// not reconnect, so the state is final until restart.
func (nc *NATSClient) HealthCheck(_ context.Context) error {
	if !nc.Enabled() {
		return nil
	}
	if err := nc.lost.Load(); err != nil {
		return *err
	}
	return nil
}

func (nc *NATSClient) Enabled() bool { return nc.conn != nil }

func (nc *NATSClient) Publish(subject string, data any) error {
	if nc.conn == nil {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
