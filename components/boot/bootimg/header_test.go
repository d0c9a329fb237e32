package bootimg

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderEncodeLayout(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	header, err := NewHeader("blink", payload, 0x01020304, 0x0A0B0C0D)
	require.NoError(t, err)

	buf := header.Encode()
	require.Len(t, buf, HeaderLen)

	require.Equal(t, []byte("ABminiboot"), buf[0:10])
	require.Equal(t, []byte("blink     "), buf[10:20])
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf[20:24])
	require.Equal(t, []byte{0x0A, 0x0B, 0x0C, 0x0D}, buf[24:28])

	checksum := crc32.ChecksumIEEE(payload)
	require.Equal(t, []byte{
		byte(checksum >> 24), byte(checksum >> 16), byte(checksum >> 8), byte(checksum),
	}, buf[28:32])

	require.Equal(t, []byte{0x00, 0x04}, buf[32:34])
}

func TestHeaderEncodeParseRoundTrip(t *testing.T) {
	payload := []byte("application binary")

	header, err := NewHeader("demo", payload, 1700000000, 1700000100)
	require.NoError(t, err)

	parsed, err := ParseHeader(header.Encode())
	require.NoError(t, err)
	require.Equal(t, header, parsed)
}

func TestHeaderNameTruncated(t *testing.T) {
	header, err := NewHeader("averylongapplicationname", nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "averylonga", header.Name)

	parsed, err := ParseHeader(header.Encode())
	require.NoError(t, err)
	require.Equal(t, "averylonga", parsed.Name)
}

func TestHeaderNameMultibyteTruncated(t *testing.T) {
	// "✓" is 3 bytes long and spans the 10-byte field boundary.
	header, err := NewHeader("blinkyapp✓extra", nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "blinkyapp", header.Name)

	parsed, err := ParseHeader(header.Encode())
	require.NoError(t, err)
	require.Equal(t, "blinkyapp", parsed.Name)
}

func TestHeaderPayloadTooLarge(t *testing.T) {
	_, err := NewHeader("demo", make([]byte, MaxPayloadLen+1), 0, 0)
	require.Error(t, err)

	_, err = NewHeader("demo", make([]byte, MaxPayloadLen), 0, 0)
	require.NoError(t, err)
}

func TestParseHeaderTooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderLen-1))
	require.Error(t, err)
}

func TestParseHeaderUnknownPreamble(t *testing.T) {
	buf := make([]byte, HeaderLen)
	copy(buf, "XYminiboot")

	_, err := ParseHeader(buf)
	require.Error(t, err)
}
