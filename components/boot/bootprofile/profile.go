package bootprofile

import (
	"fmt"
	"sort"
	"strings"
)

// Profile binds hardware parameters of a supported target.
//
// A profile only selects the physical device layout the hub operates
// against; it doesn't alter the configuration region logic.
type Profile struct {
	// Name is the profile identifier.
	Name string

	// MCU is the target microcontroller identifier.
	MCU string

	// EepromSize is the internal EEPROM capacity in bytes.
	EepromSize uint32

	// EraseValue is the content of an erased EEPROM cell.
	EraseValue byte

	// DevicePath is the default programmer device path.
	DevicePath string
}

var profiles = map[string]Profile{
	"atmega328p": {
		Name:       "atmega328p",
		MCU:        "atmega328p",
		EepromSize: 1024,
		EraseValue: 0xFF,
		DevicePath: "/dev/ttyUSB0",
	},
	"attiny85": {
		Name:       "attiny85",
		MCU:        "attiny85",
		EepromSize: 512,
		EraseValue: 0xFF,
		DevicePath: "/dev/ttyACM0",
	},
}

// ProfileByName returns the profile registered under the provided name.
func ProfileByName(name string) (Profile, error) {
	profile, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile: name=%s known=%s",
			name, strings.Join(ProfileNames(), ","))
	}

	return profile, nil
}

// ProfileNames returns sorted names of the known profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
