package bootcfg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
)

func newTestDevice() *eepcore.MemDevice {
	return eepcore.NewMemDevice(eepcore.MemDeviceParams{
		Size:       64,
		EraseValue: 0xFF,
	})
}

func TestTimestampStoreRoundTrip(t *testing.T) {
	device := newTestDevice()

	store, err := NewTimestampStore(device, 8)
	require.NoError(t, err)

	for _, value := range []uint32{
		0x00000000,
		0x00000001,
		0x01020304,
		0xDEADBEEF,
		0x7FFFFFFF,
		0x80000000,
		0xFFFFFFFF,
	} {
		require.NoError(t, store.WriteLatestTimestamp(context.Background(), value))

		restored, err := store.ReadLatestTimestamp(context.Background())
		require.NoError(t, err)
		require.Equal(t, value, restored)
	}
}

func TestTimestampStoreByteOrder(t *testing.T) {
	device := newTestDevice()
	baseOffset := uint32(8)

	store, err := NewTimestampStore(device, baseOffset)
	require.NoError(t, err)

	require.NoError(t, store.WriteLatestTimestamp(context.Background(), 0x01020304))

	buf := device.Bytes()
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf[baseOffset:baseOffset+4])

	// Neighbor cells stay untouched.
	require.Equal(t, byte(0xFF), buf[baseOffset-1])
	require.Equal(t, byte(0xFF), buf[baseOffset+4])
}

func TestTimestampStoreIdempotentWrite(t *testing.T) {
	device := newTestDevice()

	store, err := NewTimestampStore(device, 0)
	require.NoError(t, err)

	require.NoError(t, store.WriteLatestTimestamp(context.Background(), 0xCAFEBABE))
	require.NoError(t, store.WriteLatestTimestamp(context.Background(), 0xCAFEBABE))

	restored, err := store.ReadLatestTimestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), restored)
}

func TestTimestampStoreOverwrite(t *testing.T) {
	device := newTestDevice()
	baseOffset := uint32(4)

	store, err := NewTimestampStore(device, baseOffset)
	require.NoError(t, err)

	require.NoError(t, store.WriteLatestTimestamp(context.Background(), 0x01020304))
	require.NoError(t, store.WriteLatestTimestamp(context.Background(), 0xA0B0C0D0))

	restored, err := store.ReadLatestTimestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(0xA0B0C0D0), restored)

	buf := device.Bytes()
	require.Equal(t, []byte{0xA0, 0xB0, 0xC0, 0xD0}, buf[baseOffset:baseOffset+4])
}

func TestTimestampStoreUnwrittenRegion(t *testing.T) {
	device := newTestDevice()

	store, err := NewTimestampStore(device, 0)
	require.NoError(t, err)

	// An unwritten region reads as the erase pattern.
	restored, err := store.ReadLatestTimestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(0xFFFFFFFF), restored)
}

func TestTimestampStoreOperationOrdering(t *testing.T) {
	device := newTestDevice()

	store, err := NewTimestampStore(device, 2)
	require.NoError(t, err)

	require.NoError(t, store.WriteLatestTimestamp(context.Background(), 0x11223344))

	_, err = store.ReadLatestTimestamp(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{
		"write:2", "write:3", "write:4", "write:5", "wait",
		"read:2", "read:3", "read:4", "read:5", "wait",
	}, device.Journal())
}

func TestTimestampStoreRegionOutOfBounds(t *testing.T) {
	device := newTestDevice()

	_, err := NewTimestampStore(device, device.Size()-3)
	require.Error(t, err)

	_, err = NewTimestampStore(device, device.Size())
	require.Error(t, err)

	_, err = NewTimestampStore(device, device.Size()-4)
	require.NoError(t, err)
}
