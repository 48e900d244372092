package repository

import (
	"time"

	"github.com/okian/gridelo/pkg/logger"
)

// Option applies a configuration option to the SQLiteProjectionStore.
type Option func(*SQLiteProjectionStore)

// WithBusyTimeout sets how long a write waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteProjectionStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithLogger sets the logger used for open and save diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteProjectionStore) {
		if l != nil {
			s.log = l
		}
	}
}
