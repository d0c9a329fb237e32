package bootimg

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"
)

const (
	// HeaderPreamble marks the beginning of a miniboot EEPROM image.
	HeaderPreamble = "ABminiboot"

	// HeaderNameLen is the fixed length of the application name field.
	HeaderNameLen = 10

	// HeaderLen is the total encoded header length.
	HeaderLen = 34

	// MaxPayloadLen is the largest payload the length field can describe.
	MaxPayloadLen = 0xFFFF
)

// Header describes an application payload stored in an external EEPROM.
//
// Encoded layout, all multi-byte fields big-endian:
//   - 0-9: preamble "ABminiboot"
//   - 10-19: application name, space-padded to 10 bytes
//   - 20-23: payload creation timestamp
//   - 24-27: image write timestamp
//   - 28-31: CRC32 of the payload
//   - 32-33: payload length
type Header struct {
	// Name is the application name, at most HeaderNameLen characters.
	Name string

	// Created is the payload creation timestamp, UNIX seconds.
	Created uint32

	// Written is the image write timestamp, UNIX seconds.
	Written uint32

	// Checksum is the CRC32 (IEEE) of the payload.
	Checksum uint32

	// Length is the payload length in bytes.
	Length uint16
}

// NewHeader creates a header for the provided payload.
//
// Parameters:
//   - name - application name, truncated to HeaderNameLen characters.
//   - payload - application binary the header describes.
//   - created - payload creation timestamp, UNIX seconds.
//   - written - image write timestamp, UNIX seconds.
func NewHeader(name string, payload []byte, created uint32, written uint32) (Header, error) {
	if len(payload) > MaxPayloadLen {
		return Header{}, fmt.Errorf("payload doesn't fit the length field:"+
			" size=%v max=%v", len(payload), MaxPayloadLen)
	}

	return Header{
		Name:     formatName(name),
		Created:  created,
		Written:  written,
		Checksum: crc32.ChecksumIEEE(payload),
		Length:   uint16(len(payload)),
	}, nil
}

// Encode serializes the header.
func (h Header) Encode() []byte {
	buf := make([]byte, 0, HeaderLen)

	buf = append(buf, HeaderPreamble...)
	buf = append(buf, padName(h.Name)...)
	buf = binary.BigEndian.AppendUint32(buf, h.Created)
	buf = binary.BigEndian.AppendUint32(buf, h.Written)
	buf = binary.BigEndian.AppendUint32(buf, h.Checksum)
	buf = binary.BigEndian.AppendUint16(buf, h.Length)

	return buf
}

// ParseHeader decodes a header from the beginning of buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, fmt.Errorf("image too short for a header: size=%v min=%v",
			len(buf), HeaderLen)
	}

	if string(buf[:len(HeaderPreamble)]) != HeaderPreamble {
		return Header{}, fmt.Errorf("unknown image preamble: %q",
			buf[:len(HeaderPreamble)])
	}

	return Header{
		Name:     strings.TrimRight(string(buf[10:20]), " "),
		Created:  binary.BigEndian.Uint32(buf[20:24]),
		Written:  binary.BigEndian.Uint32(buf[24:28]),
		Checksum: binary.BigEndian.Uint32(buf[28:32]),
		Length:   binary.BigEndian.Uint16(buf[32:34]),
	}, nil
}

func formatName(name string) string {
	if len(name) <= HeaderNameLen {
		return name
	}

	// The name field is byte-sized; don't leave a split rune at the cut point.
	cut := HeaderNameLen
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}

	return name[:cut]
}

func padName(name string) string {
	name = formatName(name)

	return name + strings.Repeat(" ", HeaderNameLen-len(name))
}
