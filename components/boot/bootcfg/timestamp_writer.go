package bootcfg

import "context"

// TimestampWriter to persist the latest application timestamp.
type TimestampWriter interface {
	// WriteLatestTimestamp persists the latest application timestamp.
	WriteLatestTimestamp(ctx context.Context, value uint32) error
}
