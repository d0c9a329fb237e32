package eepcore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/open-control-systems/miniboot-hub/components/status"
)

// MemDeviceParams provides various configuration options for MemDevice.
type MemDeviceParams struct {
	// Size - device capacity in bytes.
	Size uint32

	// EraseValue - initial content of each cell, typically 0xFF.
	EraseValue byte

	// WriteCycle - duration of the simulated self-timed write cycle.
	WriteCycle time.Duration
}

// MemDevice is an in-memory simulation of a byte-addressable EEPROM.
//
// A write marks the device busy until WaitReady() is called. Subsequent
// writes self-poll the busy flag, the way avr-libc eeprom_write_byte does,
// so a multi-byte update needs a single readiness wait at the end. A read
// issued while the device is busy fails with status.StatusInvalidState.
type MemDevice struct {
	params MemDeviceParams

	mu        sync.Mutex
	buf       []byte
	busy      bool
	busyUntil time.Time
	journal   []string
}

// NewMemDevice is an initialization of MemDevice.
func NewMemDevice(params MemDeviceParams) *MemDevice {
	buf := make([]byte, params.Size)
	for i := range buf {
		buf[i] = params.EraseValue
	}

	return &MemDevice{
		params: params,
		buf:    buf,
	}
}

// ReadByte reads a single byte at the provided offset.
func (d *MemDevice) ReadByte(offset uint32) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return 0, fmt.Errorf("read out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	if d.busy {
		return 0, status.StatusInvalidState
	}

	d.journal = append(d.journal, fmt.Sprintf("read:%v", offset))

	return d.buf[offset], nil
}

// WriteByte writes a single byte at the provided offset.
func (d *MemDevice) WriteByte(offset uint32, value byte) error {
	d.mu.Lock()

	if offset >= d.params.Size {
		d.mu.Unlock()

		return fmt.Errorf("write out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	// A write on a busy device polls the previous cycle to completion first.
	if d.busy {
		if remaining := time.Until(d.busyUntil); remaining > 0 {
			d.mu.Unlock()
			time.Sleep(remaining)
			d.mu.Lock()
		}
	}

	d.buf[offset] = value

	d.busy = true
	d.busyUntil = time.Now().Add(d.params.WriteCycle)

	d.journal = append(d.journal, fmt.Sprintf("write:%v", offset))

	d.mu.Unlock()

	return nil
}

// WaitReady blocks until the simulated write cycle is finished.
func (d *MemDevice) WaitReady(ctx context.Context) error {
	d.mu.Lock()
	remaining := time.Until(d.busyUntil)
	d.mu.Unlock()

	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.busy = false
	d.journal = append(d.journal, "wait")

	return nil
}

// Size returns the device capacity in bytes.
func (d *MemDevice) Size() uint32 {
	return d.params.Size
}

// Close is non-operational.
func (*MemDevice) Close() error {
	return nil
}

// Bytes returns a copy of the device content.
func (d *MemDevice) Bytes() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := make([]byte, len(d.buf))
	copy(buf, d.buf)

	return buf
}

// Journal returns the recorded operation sequence.
func (d *MemDevice) Journal() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	journal := make([]string, len(d.journal))
	copy(journal, d.journal)

	return journal
}
