//go:build unix

package eepfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// MmapDevice is an EEPROM image file mapped into memory.
//
// Byte loads and stores go directly to the mapping; WaitReady() synchronizes
// the mapping with the disk, which stands for the device's self-timed write
// cycle. It is the closest host-side rendering of memory-mapped EEPROM.
type MmapDevice struct {
	params FileDeviceParams

	mu    sync.Mutex
	file  *os.File
	data  []byte
	dirty bool
}

// OpenMmapDevice opens or creates an EEPROM image file and maps it into memory.
//
// Parameters:
//   - path - image file path.
//   - params - various configuration options.
func OpenMmapDevice(path string, params FileDeviceParams) (*MmapDevice, error) {
	if params.Size == 0 {
		return nil, fmt.Errorf("zero-sized device can't be mapped: path=%s", path)
	}

	file, err := openImageFile(path, params.Size, params.EraseValue)
	if err != nil {
		return nil, err
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(params.Size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()

		return nil, err
	}

	return &MmapDevice{
		params: params,
		file:   file,
		data:   data,
	}, nil
}

// ReadByte reads a single byte at the provided offset.
func (d *MmapDevice) ReadByte(offset uint32) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return 0, fmt.Errorf("read out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	return d.data[offset], nil
}

// WriteByte writes a single byte at the provided offset.
func (d *MmapDevice) WriteByte(offset uint32, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= d.params.Size {
		return fmt.Errorf("write out of device bounds: offset=%v size=%v",
			offset, d.params.Size)
	}

	d.data[offset] = value
	d.dirty = true

	return nil
}

// WaitReady synchronizes the mapping with the disk.
func (d *MmapDevice) WaitReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dirty {
		return nil
	}

	if err := unix.Msync(d.data, unix.MS_SYNC); err != nil {
		return err
	}

	d.dirty = false

	return nil
}

// Size returns the device capacity in bytes.
func (d *MmapDevice) Size() uint32 {
	return d.params.Size
}

// Close synchronizes and unmaps the image, then closes the file.
func (d *MmapDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.data == nil {
		return nil
	}

	err := unix.Msync(d.data, unix.MS_SYNC)

	if unmapErr := unix.Munmap(d.data); err == nil {
		err = unmapErr
	}
	d.data = nil

	if closeErr := d.file.Close(); err == nil {
		err = closeErr
	}

	return err
}
