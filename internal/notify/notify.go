// Package notify publishes export lifecycle events over NATS so other
// automation (indexers, summarizers) can react to freshly archived audio.
// The publisher is optional; the exporter runs fine without it.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectDayCompleted carries a DayCompleted event after each day.
	SubjectDayCompleted = "lifelog.export.day.completed"
	// SubjectRunCompleted carries a RunCompleted event at the end of a run.
	SubjectRunCompleted = "lifelog.export.run.completed"
)

// DayCompleted is emitted after each day's export finishes.
type DayCompleted struct {
	RunID        string `json:"run_id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Chunks       int    `json:"chunks"`
	Downloaded   int    `json:"downloaded"`
	Skipped      int    `json:"skipped"`
	Errors       int    `json:"errors"`
	AudioSeconds int64  `json:"audio_seconds"`
}

// RunCompleted is emitted once per export run.
type RunCompleted struct {
	RunID         string `json:"run_id"`
	Days          int    `json:"days"`
	DaysWithAudio int    `json:"days_with_audio"`
	Downloaded    int    `json:"downloaded"`
	Skipped       int    `json:"skipped"`
	Errors        int    `json:"errors"`
	AudioSeconds  int64  `json:"audio_seconds"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewPublisher connects to NATS. token may be empty.
func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", "subject", subject, "bytes", len(payload))
	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}
