package eepcore

import (
	"context"
	"fmt"
)

// Device is a byte-addressable non-volatile storage device.
//
// A write starts a self-timed write cycle inside the device. The caller
// should call WaitReady() after the last write in a batch; until then the
// stored data can't be relied upon. Implementations are allowed to fail a
// read issued during an in-progress write cycle with status.StatusInvalidState.
type Device interface {
	// ReadByte reads a single byte at the provided offset.
	ReadByte(offset uint32) (byte, error)

	// WriteByte writes a single byte at the provided offset.
	WriteByte(offset uint32, value byte) error

	// WaitReady blocks until an in-progress write cycle is finished.
	WaitReady(ctx context.Context) error

	// Size returns the device capacity in bytes.
	Size() uint32

	// Close releases all resources for the device.
	Close() error
}

// CheckBounds verifies that count bytes beginning at offset fit into the device.
func CheckBounds(device Device, offset uint32, count uint32) error {
	size := device.Size()

	if offset >= size || count > size-offset {
		return fmt.Errorf("region out of device bounds: offset=%v count=%v size=%v",
			offset, count, size)
	}

	return nil
}
