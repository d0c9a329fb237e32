package bootcfg

import "context"

// TimestampReader to read the latest application timestamp from the persistent storage.
type TimestampReader interface {
	// ReadLatestTimestamp reads the latest application timestamp from the persistent storage.
	ReadLatestTimestamp(ctx context.Context) (uint32, error)
}
