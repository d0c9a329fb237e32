package eepfile

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// FileDeviceParams provides various configuration options for FileDevice.
type FileDeviceParams struct {
	// Size - device capacity in bytes.
	Size uint32

	// EraseValue - content of a cell that was never written, typically 0xFF.
	EraseValue byte
}

// FileDevice is an EEPROM image stored in a regular file.
//
// WaitReady() flushes the pending writes to the underlying disk, which
// stands for the device's self-timed write cycle.
type FileDevice struct {
	params FileDeviceParams

	mu    sync.Mutex
	file  *os.File
	dirty bool
}

// OpenFileDevice opens or creates an EEPROM image file.
//
// Parameters:
//   - path - image file path.
//   - params - various configuration options.
func OpenFileDevice(path string, params FileDeviceParams) (*FileDevice, error) {
	file, err := openImageFile(path, params.Size, params.EraseValue)
	if err != nil {
		return nil, err
	}

	return &FileDevice{
		params: params,
		file:   file,
	}, nil
}

// ReadByte reads a single byte at the provided offset.
func (d *FileDevice) ReadByte(offset uint32) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return 0, fmt.Errorf("read out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	buf := make([]byte, 1)

	if _, err := d.file.ReadAt(buf, int64(offset)); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// WriteByte writes a single byte at the provided offset.
func (d *FileDevice) WriteByte(offset uint32, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return fmt.Errorf("write out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	if _, err := d.file.WriteAt([]byte{value}, int64(offset)); err != nil {
		return err
	}

	d.dirty = true

	return nil
}

// WaitReady flushes the pending writes to the disk.
func (d *FileDevice) WaitReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dirty {
		return nil
	}

	if err := d.file.Sync(); err != nil {
		return err
	}

	d.dirty = false

	return nil
}

// Size returns the device capacity in bytes.
func (d *FileDevice) Size() uint32 {
	return d.params.Size
}

// Close flushes the pending writes and closes the image file.
func (d *FileDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dirty {
		if err := d.file.Sync(); err != nil {
			_ = d.file.Close()

			return err
		}

		d.dirty = false
	}

	return d.file.Close()
}
