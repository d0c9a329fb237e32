package eepfile

import (
	"fmt"
	"os"
)

// openImageFile opens or creates an EEPROM image file of the requested size.
//
// A freshly created file, or the tail of a file shorter than the requested
// size, is filled with the erase value.
func openImageFile(path string, size uint32, eraseValue byte) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, err
	}

	if info.Size() > int64(size) {
		_ = file.Close()

		return nil, fmt.Errorf("image file is larger than the device:"+
			" path=%s file=%v device=%v", path, info.Size(), size)
	}

	if info.Size() < int64(size) {
		fill := make([]byte, int64(size)-info.Size())
		for i := range fill {
			fill[i] = eraseValue
		}

		if _, err := file.WriteAt(fill, info.Size()); err != nil {
			_ = file.Close()

			return nil, err
		}
	}

	return file, nil
}
