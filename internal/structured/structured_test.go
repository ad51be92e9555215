package structured

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/labmeta/internal/types"
)

type fakeDecoder struct {
	vars *types.Metadata
	err  error

	gotSize int64
	gotPath string
	gotData []byte
}

func (d *fakeDecoder) Decode(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	d.gotSize, d.gotPath = size, path
	d.gotData = make([]byte, size)
	if _, err := r.ReadAt(d.gotData, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return d.vars, d.err
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mat")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract_UsesConfiguredDecoder(t *testing.T) {
	vars := types.NewMetadata()
	vars.Set("fs", 2000.0)
	vars.Set("subject", "s01")
	dec := &fakeDecoder{vars: vars}

	opts := types.DefaultOptions()
	opts.StructuredDecoder = dec
	path := writeFile(t, []byte("payload"))

	rec, err := Extract(path, opts)
	require.NoError(t, err)

	assert.Equal(t, int64(7), dec.gotSize)
	assert.Equal(t, path, dec.gotPath)
	assert.Equal(t, []byte("payload"), dec.gotData)
	assert.Equal(t, types.KindStructuredData, rec.Kind())
	assert.Equal(t, []string{"fs", "subject"}, rec.Metadata().Keys())
}

func TestExtract_NilVariablesBecomeEmpty(t *testing.T) {
	opts := types.DefaultOptions()
	opts.StructuredDecoder = &fakeDecoder{}

	rec, err := Extract(writeFile(t, nil), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Metadata().Len())
}

func TestExtract_DecoderErrorPropagates(t *testing.T) {
	opts := types.DefaultOptions()
	opts.StructuredDecoder = &fakeDecoder{err: &types.CorruptedFileError{Path: "x", Reason: "bad"}}

	_, err := Extract(writeFile(t, []byte("x")), opts)
	require.Error(t, err)

	var corrupt *types.CorruptedFileError
	assert.True(t, errors.As(err, &corrupt))
}

func TestExtract_DefaultDecoderRejectsNonMAT(t *testing.T) {
	_, err := Extract(writeFile(t, []byte("not a mat file")), types.DefaultOptions())

	var unsupported *types.UnsupportedFormatError
	assert.True(t, errors.As(err, &unsupported))
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "absent.mat"), types.DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
