package nbs

import (
	"errors"
	"fmt"
)

var (
	// ErrIOFailure is returned when a song file is missing or unreadable.
	ErrIOFailure = errors.New("nbs: cannot read file")

	// ErrTruncatedInput is returned when the buffer ends inside a field.
	ErrTruncatedInput = errors.New("nbs: truncated input")

	// ErrUnsupportedVersion is returned for files in a layout this package rejects.
	ErrUnsupportedVersion = errors.New("nbs: unsupported format version")

	// ErrCorruptedGrid is returned when a note block lands outside the declared grid.
	ErrCorruptedGrid = errors.New("nbs: corrupted note grid")
)

// DecodeError records where decoding stopped.
type DecodeError struct {
	Op     string // section being read: header, noteblocks, layers
	Offset int    // byte offset of the failing field
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FileError attaches a path to a read or decode failure.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// IsUnusable reports whether err means the file content cannot be played.
// Truncation and grid corruption are treated the same.
func IsUnusable(err error) bool {
	return errors.Is(err, ErrTruncatedInput) || errors.Is(err, ErrCorruptedGrid)
}
