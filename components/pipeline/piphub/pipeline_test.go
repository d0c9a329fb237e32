package piphub

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/miniboot-hub/components/boot/bootcfg"
	"github.com/open-control-systems/miniboot-hub/components/core"
	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
	"github.com/open-control-systems/miniboot-hub/components/http/htcore"
)

func testPipelineGet(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestPipelineRestoreAndServe(t *testing.T) {
	device := eepcore.NewMemDevice(eepcore.MemDeviceParams{Size: 64, EraseValue: 0xFF})
	baseOffset := uint32(8)

	seedStore, err := bootcfg.NewTimestampStore(device, baseOffset)
	require.NoError(t, err)
	require.NoError(t, seedStore.WriteLatestTimestamp(context.Background(), 0x01020304))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closer := &core.FanoutCloser{}
	defer func() {
		require.NoError(t, closer.Close())
	}()

	pipeline, err := NewPipeline(ctx, closer, device, PipelineParams{
		BaseOffset: baseOffset,
		ServerParams: htcore.ServerParams{
			Host: "127.0.0.1",
		},
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.Start())

	url := pipeline.URL() + "/api/v1/timestamp"

	// The restoring task runs asynchronously.
	require.Eventually(t, func() bool {
		code, body := testPipelineGet(t, url)

		return code == http.StatusOK && body == "16909060"
	}, time.Second*5, time.Millisecond*10)

	timestamp, err := pipeline.GetTimestamper().GetTimestamp()
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), timestamp)

	code, body := testPipelineGet(t, url+"?value=0x0A0B0C0D")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "OK", body)

	code, body = testPipelineGet(t, url)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "168496141", body)

	// The update is persisted in the device, not only cached.
	buf := device.Bytes()
	require.Equal(t, []byte{0x0A, 0x0B, 0x0C, 0x0D}, buf[baseOffset:baseOffset+4])
}

func TestPipelineRegionOutOfBounds(t *testing.T) {
	device := eepcore.NewMemDevice(eepcore.MemDeviceParams{Size: 16, EraseValue: 0xFF})

	closer := &core.FanoutCloser{}

	_, err := NewPipeline(context.Background(), closer, device, PipelineParams{
		BaseOffset: 14,
		ServerParams: htcore.ServerParams{
			Host: "127.0.0.1",
		},
	})
	require.Error(t, err)
}
