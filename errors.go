package labmeta

import (
	"github.com/simonhull/labmeta/internal/types"
)

// OutOfBoundsError is returned when a read would run past the end of a
// file. Re-exported from internal/types.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is returned for paths without a routable suffix
// and for recognized files using a variant no extractor decodes.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError = types.CorruptedFileError

// EmptyContainerError is returned for waveform containers without groups,
// or with a group that has no channels.
type EmptyContainerError = types.EmptyContainerError

// InvalidPathError is returned when a path is not valid UTF-8.
type InvalidPathError = types.InvalidPathError

// InvalidOptionError is returned when an Option value is rejected.
type InvalidOptionError = types.InvalidOptionError
