package types

import "fmt"

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset < 0 || e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// UnsupportedFormatError is returned when no extractor handles a file.
//
// This is the expected outcome for unrecognized suffixes, and also for
// recognized suffixes whose content uses a variant the extractor does not
// decode (MAT v7.3, DAQmx raw data).
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported file type: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// EmptyContainerError is returned when a waveform container has no group,
// or a group without channels, so no channel-derived field can be computed.
type EmptyContainerError struct {
	Path  string
	Group string // empty when the container has no groups at all
}

func (e *EmptyContainerError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("%s: waveform container has no groups", e.Path)
	}
	return fmt.Sprintf("%s: waveform group %q has no channels", e.Path, e.Group)
}

// InvalidPathError is returned when a byte path is not valid UTF-8.
type InvalidPathError struct {
	Path []byte
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("path %q is not valid UTF-8", e.Path)
}

// InvalidOptionError is returned when an option value cannot be honoured.
type InvalidOptionError struct {
	Option string
	Value  any
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Option, e.Value)
}
