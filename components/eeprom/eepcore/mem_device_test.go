package eepcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/miniboot-hub/components/status"
)

func TestMemDeviceEraseState(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{Size: 16, EraseValue: 0xFF})

	for offset := uint32(0); offset < device.Size(); offset++ {
		value, err := device.ReadByte(offset)
		require.NoError(t, err)
		require.Equal(t, byte(0xFF), value)
	}
}

func TestMemDeviceWriteRead(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{Size: 16, EraseValue: 0xFF})

	require.NoError(t, device.WriteByte(3, 0xAB))
	require.NoError(t, device.WaitReady(context.Background()))

	value, err := device.ReadByte(3)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), value)
}

func TestMemDeviceReadDuringWriteCycle(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{Size: 16, EraseValue: 0xFF})

	require.NoError(t, device.WriteByte(0, 0x01))

	_, err := device.ReadByte(0)
	require.Equal(t, status.StatusInvalidState, err)

	require.NoError(t, device.WaitReady(context.Background()))

	value, err := device.ReadByte(0)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), value)
}

func TestMemDeviceWriteSelfPolls(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{Size: 16, EraseValue: 0xFF})

	require.NoError(t, device.WriteByte(0, 0x01))
	require.NoError(t, device.WriteByte(1, 0x02))
	require.NoError(t, device.WaitReady(context.Background()))

	require.Equal(t, []string{"write:0", "write:1", "wait"}, device.Journal())
}

func TestMemDeviceWriteSelfPollsPendingCycle(t *testing.T) {
	writeCycle := time.Millisecond * 20

	device := NewMemDevice(MemDeviceParams{
		Size:       16,
		EraseValue: 0xFF,
		WriteCycle: writeCycle,
	})

	start := time.Now()

	// The second write blocks until the first write cycle is finished.
	require.NoError(t, device.WriteByte(0, 0x01))
	require.NoError(t, device.WriteByte(1, 0x02))

	require.GreaterOrEqual(t, time.Since(start), writeCycle)
}

func TestMemDeviceOutOfBounds(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{Size: 16, EraseValue: 0xFF})

	_, err := device.ReadByte(16)
	require.Error(t, err)

	require.Error(t, device.WriteByte(16, 0x00))
}

func TestMemDeviceWaitReadyCanceled(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{
		Size:       16,
		EraseValue: 0xFF,
		WriteCycle: time.Minute,
	})

	require.NoError(t, device.WriteByte(0, 0x01))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Equal(t, context.Canceled, device.WaitReady(ctx))
}

func TestMemDeviceCheckBounds(t *testing.T) {
	device := NewMemDevice(MemDeviceParams{Size: 16, EraseValue: 0xFF})

	require.NoError(t, CheckBounds(device, 0, 16))
	require.NoError(t, CheckBounds(device, 12, 4))
	require.Error(t, CheckBounds(device, 13, 4))
	require.Error(t, CheckBounds(device, 16, 1))
	require.Error(t, CheckBounds(device, 32, 0))
}
