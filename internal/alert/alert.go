// Package alert provides notification sinks behind the fire-and-forget
// Notify contract. The external channel's transport is out of scope; the
// shipped sinks log or record. A delivery failure is reported through the
// boolean return and never aborts the calling operation.
package alert

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/metrics"
)

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the alert and always reports delivery.
func (n *LogNotifier) Notify(_ context.Context, kind, subject, body string) bool {
	n.logger.Warn("alert",
		zap.String("kind", kind),
		zap.String("subject", subject),
		zap.String("body", body))
	metrics.ObserveAlert(kind, true)
	return true
}

// Message is one captured alert.
type Message struct {
	Kind    string
	Subject string
	Body    string
}

// Recorder captures alerts for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	// Fail makes Notify report delivery failure.
	Fail bool
}

// NewRecorder constructs a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify captures the alert.
func (r *Recorder) Notify(_ context.Context, kind, subject, body string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Subject: subject, Body: body})
	metrics.ObserveAlert(kind, !r.Fail)
	return !r.Fail
}

// Messages returns the captured alerts.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// ByKind returns captured alerts of one kind.
func (r *Recorder) ByKind(kind string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}
