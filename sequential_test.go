package fsenv

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fsenv/vfs"
)

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestSequentialFile_Read(t *testing.T) {
	env := New()
	defer env.Close()

	path := filepath.Join(t.TempDir(), "000003.log")
	writeTestFile(t, path, []byte("hello, sequential world"))

	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, path, f.Name())

	var got []byte
	buf := make([]byte, 5)
	for {
		n, err := f.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			assert.Zero(t, n)
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "hello, sequential world", string(got))

	// Reads at end of file keep returning EOF.
	n, err := f.Read(buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestSequentialFile_Skip(t *testing.T) {
	env := New()
	defer env.Close()

	path := filepath.Join(t.TempDir(), "data")
	writeTestFile(t, path, []byte("0123456789"))

	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Skip(3))
	buf := make([]byte, 4)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(buf[:n]))

	require.NoError(t, f.Skip(100))
	_, err = f.Read(buf)
	assert.Equal(t, io.EOF, err)
}

func TestSequentialFile_SkipDisabled(t *testing.T) {
	env := New(WithSequentialSkip(false))
	defer env.Close()

	path := filepath.Join(t.TempDir(), "data")
	writeTestFile(t, path, []byte("0123456789"))

	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ErrorIs(t, f.Skip(3), ErrNotSupported)

	// The position is untouched.
	buf := make([]byte, 3)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "012", string(buf[:n]))
}

func TestSequentialFile_RetriesInterruptedReads(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	ffs.AddRule("flaky", vfs.Fault{FailAfterBytes: -1, InterruptReads: 3})
	env := New(WithFileSystem(ffs))
	defer env.Close()

	path := filepath.Join(t.TempDir(), "flaky")
	writeTestFile(t, path, []byte("abc"))

	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 8)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
}

func TestSequentialFile_KeepsBytesReadBeforeInterrupt(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	ffs.AddRule("partial", vfs.Fault{FailAfterBytes: -1, PartialInterruptReads: 1})
	env := New(WithFileSystem(ffs))
	defer env.Close()

	path := filepath.Join(t.TempDir(), "partial")
	writeTestFile(t, path, []byte("abcdefgh"))

	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 8)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(buf[:n]))

	n, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "efgh", string(buf[:n]))
}

func TestSequentialFile_NotFound(t *testing.T) {
	env := New()
	defer env.Close()

	_, err := env.NewSequentialFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSequentialFile_Close(t *testing.T) {
	env := New()
	defer env.Close()

	path := filepath.Join(t.TempDir(), "data")
	writeTestFile(t, path, []byte("x"))

	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrClosed)
}
