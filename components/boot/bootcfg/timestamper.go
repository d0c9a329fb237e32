package bootcfg

// Timestamper combines read and update access to the latest application timestamp.
type Timestamper interface {
	// GetTimestamp returns the latest application timestamp.
	GetTimestamp() (uint32, error)

	// SetTimestamp sets the latest application timestamp.
	SetTimestamp(timestamp uint32) error
}
