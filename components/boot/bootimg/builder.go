package bootimg

import (
	"context"
	"fmt"

	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
)

// BuildImage prepends the encoded header to the payload.
func BuildImage(header Header, payload []byte) ([]byte, error) {
	if int(header.Length) != len(payload) {
		return nil, fmt.Errorf("header length mismatch: header=%v payload=%v",
			header.Length, len(payload))
	}

	return append(header.Encode(), payload...), nil
}

// WriteImage streams the image into the device beginning at offset.
//
// The bytes are written individually; the call returns after the device
// finishes its self-timed write cycle.
func WriteImage(
	ctx context.Context,
	device eepcore.Device,
	offset uint32,
	image []byte,
) error {
	if err := eepcore.CheckBounds(device, offset, uint32(len(image))); err != nil {
		return err
	}

	for i, value := range image {
		if err := device.WriteByte(offset+uint32(i), value); err != nil {
			return err
		}
	}

	return device.WaitReady(ctx)
}
