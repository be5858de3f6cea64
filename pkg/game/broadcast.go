package game

import "go.uber.org/zap"

// Recipient is a participant endpoint the session can deliver lines to. The
// session holds non-owning references; the connection's own handler owns the
// underlying transport and discovers delivery failures itself.
type Recipient interface {
	Send(line string) error
	RemoteAddr() string
}

// Broadcaster fans one protocol line out to a set of recipients. A failing
// recipient is logged and skipped; the failure never aborts delivery to the
// rest and never surfaces to the caller.
type Broadcaster struct {
	logger *zap.Logger
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{logger: logger}
}

// Send delivers line to every recipient except exclude.
func (b *Broadcaster) Send(recipients []Recipient, line string, exclude Recipient) {
	for _, r := range recipients {
		if r == nil || r == exclude {
			continue
		}

		if err := r.Send(line); err != nil {
			b.logger.Warn("broadcast delivery failed",
				zap.String("remote_addr", r.RemoteAddr()),
				zap.Error(err))
		}
	}
}
