package resource

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the resource package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the resource package's logger.
// This must be called before any registry operations.
func SetLogger(l *zap.Logger) {
	logger = l
}

func zapHandle(h Handle) zap.Field { return zap.Uint32("handle", uint32(h)) }

func zapSlot(slot int) zap.Field { return zap.Int("slot", slot) }
