package bootcfg

import (
	"context"
	"sync"

	"github.com/open-control-systems/miniboot-hub/components/core"
	"github.com/open-control-systems/miniboot-hub/components/status"
)

// TimestampRestorer restores the latest application timestamp from the
// persistent storage once at startup.
type TimestampRestorer struct {
	ctx    context.Context
	reader TimestampReader

	mu        sync.Mutex
	restored  bool
	timestamp uint32
}

// NewTimestampRestorer is an initialization of TimestampRestorer.
func NewTimestampRestorer(
	ctx context.Context,
	reader TimestampReader,
) *TimestampRestorer {
	return &TimestampRestorer{
		ctx:    ctx,
		reader: reader,
	}
}

// SetTimestamp sets the most recent application timestamp.
func (r *TimestampRestorer) SetTimestamp(timestamp uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.restored || timestamp > r.timestamp {
		r.timestamp = timestamp
	}

	if !r.restored {
		r.restored = true

		core.LogInf.Printf("bootcfg-restorer: skip timestamp restoring: value=%v\n",
			timestamp)
	}

	return nil
}

// GetTimestamp returns the most recent application timestamp.
//
// Remarks:
//   - Fails with status.StatusInvalidState until the timestamp is either
//     restored from the storage or explicitly set.
func (r *TimestampRestorer) GetTimestamp() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.restored {
		return 0, status.StatusInvalidState
	}

	return r.timestamp, nil
}

// HandleError handles error from the Run() call.
func (*TimestampRestorer) HandleError(err error) {
	if err != status.StatusNoData {
		core.LogErr.Printf("bootcfg-restorer: failed to restore timestamp: err=%v\n", err)
	}
}

// Run restores the latest application timestamp from the persistent storage.
func (r *TimestampRestorer) Run() error {
	timestamp, err := r.reader.ReadLatestTimestamp(r.ctx)
	if err != nil && err != status.StatusNoData {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.restored {
		core.LogInf.Printf("bootcfg-restorer: timestamp already restored:"+
			" restored=%v persisted=%v\n", r.timestamp, timestamp)
	} else {
		r.restored = true
		r.timestamp = timestamp

		core.LogInf.Printf("bootcfg-restorer: timestamp restored: value=%v\n", r.timestamp)
	}

	return nil
}
