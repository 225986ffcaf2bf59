package nbs

import (
	"fmt"
	"os"
)

// ReadFile reads and decodes the song at path.
func ReadFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("%w: %w", ErrIOFailure, err)}
	}
	return DecodeNamed(path, data)
}

// DecodeNamed decodes data and tags any failure with path.
func DecodeNamed(path string, data []byte) (*Song, error) {
	song, err := Decode(data)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return song, nil
}
