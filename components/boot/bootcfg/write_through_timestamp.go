package bootcfg

import "context"

// WriteThroughTimestamp persists timestamp updates and keeps the in-memory
// copy in sync.
type WriteThroughTimestamp struct {
	ctx    context.Context
	writer TimestampWriter
	cache  Timestamper
}

// NewWriteThroughTimestamp is an initialization of WriteThroughTimestamp.
//
// Parameters:
//   - ctx - parent context.
//   - writer - persists the timestamp in the underlying storage.
//   - cache - holds the in-memory copy of the timestamp.
func NewWriteThroughTimestamp(
	ctx context.Context,
	writer TimestampWriter,
	cache Timestamper,
) *WriteThroughTimestamp {
	return &WriteThroughTimestamp{
		ctx:    ctx,
		writer: writer,
		cache:  cache,
	}
}

// GetTimestamp returns the in-memory copy of the timestamp.
func (t *WriteThroughTimestamp) GetTimestamp() (uint32, error) {
	return t.cache.GetTimestamp()
}

// SetTimestamp persists the timestamp and then updates the in-memory copy.
func (t *WriteThroughTimestamp) SetTimestamp(timestamp uint32) error {
	if err := t.writer.WriteLatestTimestamp(t.ctx, timestamp); err != nil {
		return err
	}

	return t.cache.SetTimestamp(timestamp)
}
