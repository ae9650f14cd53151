// Package notify delivers short text messages (one-time codes) to an email
// address.
package notify

import (
	"context"

	"github.com/quatton/fina/pkg/flog"
)

// Notifier sends a subject and body to an address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogNotifier writes messages to the structured log instead of delivering
// them. It is the default when no mail relay is configured.
type LogNotifier struct {
	logger *flog.Logger
}

func NewLogNotifier(logger *flog.Logger) *LogNotifier {
	if logger == nil {
		logger = flog.NewDefault()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, body string) error {
	n.logger.Info("email", "to", to, "subject", subject, "body", body)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
