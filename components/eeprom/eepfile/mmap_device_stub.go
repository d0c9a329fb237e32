//go:build !unix

package eepfile

import (
	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
	"github.com/open-control-systems/miniboot-hub/components/status"
)

// OpenMmapDevice is unsupported on this platform.
func OpenMmapDevice(_ string, _ FileDeviceParams) (eepcore.Device, error) {
	return nil, status.StatusNotSupported
}
