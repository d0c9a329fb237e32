package bootcfg

import (
	"context"

	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
)

// The timestamp occupies 4 contiguous bytes of the configuration region.
const timestampLen = 4

// TimestampStore persists the latest application timestamp in a fixed
// configuration region of a non-volatile storage device.
//
// The timestamp is stored big-endian at [baseOffset, baseOffset+3]:
// baseOffset holds the most significant byte, baseOffset+3 the least
// significant one.
type TimestampStore struct {
	device     eepcore.Device
	baseOffset uint32
}

// NewTimestampStore is an initialization of TimestampStore.
//
// Parameters:
//   - device - non-volatile storage device.
//   - baseOffset - start of the configuration region within the device.
func NewTimestampStore(device eepcore.Device, baseOffset uint32) (*TimestampStore, error) {
	if err := eepcore.CheckBounds(device, baseOffset, timestampLen); err != nil {
		return nil, err
	}

	return &TimestampStore{
		device:     device,
		baseOffset: baseOffset,
	}, nil
}

// WriteLatestTimestamp persists the timestamp, most significant byte first.
//
// The bytes are written individually, the previous value is overwritten in
// place. The call returns after the device finishes its self-timed write
// cycle.
func (s *TimestampStore) WriteLatestTimestamp(ctx context.Context, value uint32) error {
	for i := uint32(0); i < timestampLen; i++ {
		shift := 8 * (timestampLen - 1 - i)

		if err := s.device.WriteByte(s.baseOffset+i, byte(value>>shift)); err != nil {
			return err
		}
	}

	return s.device.WaitReady(ctx)
}

// ReadLatestTimestamp reads the stored timestamp back.
//
// Remarks:
//   - A region that was never written reads as the device erase pattern,
//     0xFFFFFFFF on most parts, indistinguishable from a stored 0xFFFFFFFF.
func (s *TimestampStore) ReadLatestTimestamp(ctx context.Context) (uint32, error) {
	var value uint32

	for i := uint32(0); i < timestampLen; i++ {
		b, err := s.device.ReadByte(s.baseOffset + i)
		if err != nil {
			return 0, err
		}

		value = value<<8 | uint32(b)
	}

	// A read is also followed by a readiness wait, so operations on the
	// device stay strictly ordered.
	if err := s.device.WaitReady(ctx); err != nil {
		return 0, err
	}

	return value, nil
}
