package dispatch

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/objref/resource"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the dispatch package's default logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the default logger for sessions created afterwards.
func SetLogger(l *zap.Logger) {
	logger = l
}

// eventLogger reports instance lifecycle at Info severity.
type eventLogger struct {
	l *zap.Logger
}

func (o *eventLogger) OnResourceEvent(e resource.Event) {
	o.l.Info("instance "+e.Type.String(),
		zap.Uint32("handle", uint32(e.Handle)),
		zap.Int("slot", e.Slot),
	)
}
