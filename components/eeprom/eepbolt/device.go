package eepbolt

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-control-systems/miniboot-hub/components/status"
	"github.com/open-control-systems/miniboot-hub/components/storage/stcore"
)

// DeviceParams provides various configuration options for Device.
type DeviceParams struct {
	// Size - device capacity in bytes.
	Size uint32

	// EraseValue - content of a cell that was never written, typically 0xFF.
	EraseValue byte

	// Region - database key of the region blob.
	Region string
}

// Device is an EEPROM region backed by a blob database.
//
// Writes go to an in-memory shadow of the region; WaitReady() commits the
// shadow to the database in a single transaction, which stands for the
// device's self-timed write cycle. The whole region is committed at once,
// so a stored snapshot is never a torn mix of old and new bytes. A region
// absent from the database reads as the erase pattern.
type Device struct {
	db     stcore.DB
	params DeviceParams

	mu     sync.Mutex
	shadow []byte
	dirty  bool
}

// NewDevice is an initialization of Device.
//
// Parameters:
//   - db - database to persist the region blob.
//   - params - various configuration options.
func NewDevice(db stcore.DB, params DeviceParams) *Device {
	return &Device{
		db:     db,
		params: params,
	}
}

// ReadByte reads a single byte at the provided offset.
func (d *Device) ReadByte(offset uint32) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return 0, fmt.Errorf("read out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	if err := d.ensureShadow(); err != nil {
		return 0, err
	}

	return d.shadow[offset], nil
}

// WriteByte writes a single byte at the provided offset.
func (d *Device) WriteByte(offset uint32, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return fmt.Errorf("write out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	if err := d.ensureShadow(); err != nil {
		return err
	}

	d.shadow[offset] = value
	d.dirty = true

	return nil
}

// WaitReady commits the pending writes to the database.
func (d *Device) WaitReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commit()
}

// Size returns the device capacity in bytes.
func (d *Device) Size() uint32 {
	return d.params.Size
}

// Close commits the pending writes.
//
// Remarks:
//   - The underlying database should be closed by the caller.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commit()
}

func (d *Device) ensureShadow() error {
	if d.shadow != nil {
		return nil
	}

	shadow := make([]byte, d.params.Size)
	for i := range shadow {
		shadow[i] = d.params.EraseValue
	}

	blob, err := d.db.Read(d.params.Region)
	if err != nil && err != status.StatusNoData {
		return err
	}
	if err == nil {
		copy(shadow, blob.Data)
	}

	d.shadow = shadow

	return nil
}

func (d *Device) commit() error {
	if !d.dirty {
		return nil
	}

	data := make([]byte, len(d.shadow))
	copy(data, d.shadow)

	if err := d.db.Write(d.params.Region, stcore.Blob{Data: data}); err != nil {
		return err
	}

	d.dirty = false

	return nil
}
