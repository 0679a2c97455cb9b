package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// Publisher is the part of a NATS connection the reporter needs.
// *natsgo.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// BestEvent is published whenever the run's best record improves.
type BestEvent struct {
	RunID     string            `json:"run_id"`
	Record    evolve.BestRecord `json:"record"`
	Timestamp time.Time         `json:"timestamp"`
}

// NATSReporter publishes generation reports on Subject and best record
// improvements on Subject + ".best". Publish errors are logged and never
// returned to the evolution loop.
type NATSReporter struct {
	Subject string
	pub     Publisher
	logger  *slog.Logger
}

var _ evolve.Reporter = (*NATSReporter)(nil)

// NewNATSReporter creates a reporter publishing through pub. A nil pub disables publishing.
func NewNATSReporter(pub Publisher, subject string, logger *slog.Logger) *NATSReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSReporter{Subject: subject, pub: pub, logger: logger}
}

// BestSubject is the subject best record events are published on.
func (r *NATSReporter) BestSubject() string {
	return r.Subject + ".best"
}

// StartGeneration publishes nothing.
func (r *NATSReporter) StartGeneration(string, int) {}

// EndGeneration publishes rep on Subject.
func (r *NATSReporter) EndGeneration(rep evolve.GenerationReport) {
	r.publish(r.Subject, rep)
}

// NewBest publishes a BestEvent on BestSubject.
func (r *NATSReporter) NewBest(runID string, record evolve.BestRecord) {
	r.publish(r.BestSubject(), BestEvent{
		RunID:     runID,
		Record:    record,
		Timestamp: time.Now().UTC(),
	})
}

func (r *NATSReporter) publish(subject string, v any) {
	if r.pub == nil {
		return
	}
	if nc, ok := r.pub.(*natsgo.Conn); ok && nc.IsClosed() {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		r.logger.Error("nats payload not encoded", "subject", subject, "error", err)
		return
	}
	if err := r.pub.Publish(subject, payload); err != nil {
		r.logger.Warn("nats publish failed", "subject", subject, "error", err)
	}
}

// ConnectNATS dials url and keeps reconnecting in the background for the
// lifetime of the connection.
func ConnectNATS(url, name string, logger *slog.Logger) (*natsgo.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := natsgo.Connect(url,
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.Name(name),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	logger.Info("nats connected", "url", nc.ConnectedUrl())
	return nc, nil
}
