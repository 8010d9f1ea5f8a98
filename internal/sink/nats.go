package sink

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"wfguard/internal/config"
	"wfguard/internal/model"
)

// NATSPublisher implements the model.Sink interface by publishing the build
// summary as JSON to a NATS subject, so downstream training jobs can react
// to fresh datasets.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewNATSPublisher connects to the configured NATS server.
func NewNATSPublisher(cfg config.NATSConfig) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Connected to NATS server at %s", cfg.URL)
	return &NATSPublisher{nc: nc, subject: cfg.Subject}, nil
}

// Name identifies the sink in logs.
func (p *NATSPublisher) Name() string { return "nats" }

// Write serializes the build summary to JSON and publishes it.
func (p *NATSPublisher) Write(summary *model.BuildSummary, _ []model.SessionRow) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal build summary: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		logrus.Info("NATS connection drained and closed")
	}
}
