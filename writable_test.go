package fsenv

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fsenv/testutil"
	"github.com/hupe1980/fsenv/vfs"
)

func readSequential(t *testing.T, env *Env, path string) []byte {
	t.Helper()
	f, err := env.NewSequentialFile(path)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	buf := make([]byte, 1000)
	for {
		n, err := f.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			return out.Bytes()
		}
		require.NoError(t, err)
	}
}

func readRandom(t *testing.T, env *Env, path string, size int) []byte {
	t.Helper()
	r, err := env.NewRandomAccessFile(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Read(0, make([]byte, size))
	require.NoError(t, err)
	return bytes.Clone(got)
}

func TestSplitPath(t *testing.T) {
	for _, tc := range []struct {
		path, dir, base string
	}{
		{"MANIFEST-000001", ".", "MANIFEST-000001"},
		{"db/MANIFEST-000001", "db", "MANIFEST-000001"},
		{"/var/db/000005.log", "/var/db", "000005.log"},
		{"/MANIFEST", "/", "MANIFEST"},
		{"db/", "db", ""},
	} {
		dir, base := splitPath(tc.path)
		assert.Equal(t, tc.dir, dir, tc.path)
		assert.Equal(t, tc.base, base, tc.path)
	}
}

func TestWritableFile_RoundTrip(t *testing.T) {
	const total = 300000
	rng := testutil.NewRNG(42)
	data := rng.Bytes(total)

	for _, tc := range []struct {
		name    string
		bufSize int
		sizes   []int
	}{
		{"uniform small buffer", 64, rng.Chunks(total, 200)},
		{"zipf 4k buffer", 4096, rng.ZipfChunks(total, 20000, 1.1)},
		{"single bytes", 7, rng.Chunks(2000, 1)},
		{"exact buffer multiples", 128, slices.Repeat([]int{128}, total/128)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := New(WithWriteBufferSize(tc.bufSize), WithMmapLimit(1))
			defer env.Close()

			var size int
			for _, n := range tc.sizes {
				size += n
			}
			want := data[:size]
			path := filepath.Join(t.TempDir(), "000001.log")

			w, err := env.NewWritableFile(path)
			require.NoError(t, err)
			for _, chunk := range testutil.Split(want, tc.sizes) {
				require.NoError(t, w.Append(chunk))
			}
			require.NoError(t, w.Close())

			assert.Equal(t, want, readSequential(t, env, path))
			assert.Equal(t, want, readRandom(t, env, path, size))
		})
	}
}

func TestWritableFile_FlushMakesBytesVisible(t *testing.T) {
	env := New()
	defer env.Close()

	path := filepath.Join(t.TempDir(), "000002.log")
	w, err := env.NewWritableFile(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append([]byte("staged")))
	size, err := env.GetFileSize(path)
	require.NoError(t, err)
	assert.Zero(t, size, "bytes stay staged until flushed")

	require.NoError(t, w.Flush())
	size, err = env.GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), size)
}

func TestWritableFile_LargeAppendBypassesBuffer(t *testing.T) {
	mc := &BasicMetricsCollector{}
	env := New(WithWriteBufferSize(16), WithMetricsCollector(mc))
	defer env.Close()

	path := filepath.Join(t.TempDir(), "big")
	w, err := env.NewWritableFile(path)
	require.NoError(t, err)

	require.NoError(t, w.Append([]byte("0123456789")))
	require.NoError(t, w.Append(bytes.Repeat([]byte("x"), 100)))

	// The staged prefix is topped up and flushed, then the remainder is
	// written directly.
	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.WriteCount)
	assert.Equal(t, int64(110), stats.WriteBytes)

	require.NoError(t, w.Close())
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("0123456789"), bytes.Repeat([]byte("x"), 100)...), got)
}

func TestWritableFile_CloseIdempotent(t *testing.T) {
	env := New()
	defer env.Close()

	w, err := env.NewWritableFile(filepath.Join(t.TempDir(), "f"))
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("abc")))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	for _, err := range []error{w.Append([]byte("x")), w.Flush(), w.Sync()} {
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, os.ErrClosed)
	}
}

func TestWritableFile_AppendableFile(t *testing.T) {
	env := New()
	defer env.Close()

	path := filepath.Join(t.TempDir(), "LOG")
	writeTestFile(t, path, []byte("existing|"))

	w, err := env.NewAppendableFile(path)
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("appended")))
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing|appended", string(got))

	// NewWritableFile truncates.
	w, err = env.NewWritableFile(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	size, err := env.GetFileSize(path)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestWritableFile_ManifestSyncsDirectoryFirst(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	mc := &BasicMetricsCollector{}
	env := New(WithFileSystem(ffs), WithMetricsCollector(mc))
	defer env.Close()

	dir := t.TempDir()
	path := dir + "/MANIFEST-000004"

	w, err := env.NewWritableFile(path)
	require.NoError(t, err)
	assert.True(t, w.IsManifest())

	require.NoError(t, w.Append([]byte("edit")))
	ffs.ResetOps()
	require.NoError(t, w.Sync())

	assert.Equal(t, []vfs.Op{
		{Kind: vfs.OpOpen, Path: dir},
		{Kind: vfs.OpSync, Path: dir},
		{Kind: vfs.OpClose, Path: dir},
		{Kind: vfs.OpSync, Path: path},
	}, ffs.Ops())

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.ManifestSyncs)
	assert.Equal(t, int64(1), stats.WriteCount, "sync flushes staged bytes")
	require.NoError(t, w.Close())
}

func TestWritableFile_NonManifestSyncSkipsDirectory(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	env := New(WithFileSystem(ffs))
	defer env.Close()

	path := t.TempDir() + "/000005.log"
	w, err := env.NewWritableFile(path)
	require.NoError(t, err)
	assert.False(t, w.IsManifest())

	require.NoError(t, w.Append([]byte("record")))
	ffs.ResetOps()
	require.NoError(t, w.Sync())

	assert.Equal(t, []vfs.Op{{Kind: vfs.OpSync, Path: path}}, ffs.Ops())
	require.NoError(t, w.Close())
}

func TestWritableFile_CustomManifestPrefix(t *testing.T) {
	env := New(WithManifestPrefix("DESCRIPTOR"))
	defer env.Close()

	dir := t.TempDir()
	w, err := env.NewWritableFile(dir + "/DESCRIPTOR-1")
	require.NoError(t, err)
	assert.True(t, w.IsManifest())
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	w, err = env.NewWritableFile(dir + "/MANIFEST-1")
	require.NoError(t, err)
	assert.False(t, w.IsManifest())
	require.NoError(t, w.Close())
}

func TestWritableFile_DirectorySyncFailure(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	env := New(WithFileSystem(ffs))
	defer env.Close()

	dir := t.TempDir()
	ffs.AddRule(dir, vfs.Fault{FailAfterBytes: -1, FailOnSync: true})
	// A longer pattern keeps the manifest itself healthy.
	ffs.AddRule(dir+"/MANIFEST", vfs.Fault{FailAfterBytes: -1})

	w, err := env.NewWritableFile(dir + "/MANIFEST-000009")
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("edit")))

	ffs.ResetOps()
	err = w.Sync()
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, vfs.ErrInjected)
	assert.NotContains(t, ffs.Ops(), vfs.Op{Kind: vfs.OpSync, Path: dir + "/MANIFEST-000009"},
		"file sync must not happen after a failed directory sync")
	require.NoError(t, w.Close())
}

func TestWritableFile_InterruptedAndShortWrites(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	ffs.AddRule("flaky", vfs.Fault{FailAfterBytes: -1, InterruptWrites: 3, ShortWrites: 5})
	env := New(WithFileSystem(ffs), WithWriteBufferSize(32))
	defer env.Close()

	data := testutil.NewRNG(3).Bytes(5000)
	path := filepath.Join(t.TempDir(), "flaky.log")

	w, err := env.NewWritableFile(path)
	require.NoError(t, err)
	for _, chunk := range testutil.Split(data, testutil.NewRNG(4).Chunks(len(data), 50)) {
		require.NoError(t, w.Append(chunk))
	}
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWritableFile_WriteFailure(t *testing.T) {
	ffs := vfs.NewFaultyFS(nil)
	ffs.AddRule("full", vfs.Fault{FailAfterBytes: 10})
	mc := &BasicMetricsCollector{}
	env := New(WithFileSystem(ffs), WithWriteBufferSize(8), WithMetricsCollector(mc))
	defer env.Close()

	w, err := env.NewWritableFile(filepath.Join(t.TempDir(), "full.log"))
	require.NoError(t, err)

	require.NoError(t, w.Append([]byte("12345678")))
	err = w.Append(bytes.Repeat([]byte("y"), 20))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, vfs.ErrInjected)
	assert.Equal(t, int64(1), mc.GetStats().WriteErrors)

	require.NoError(t, w.Close())
}

func TestWritableFile_ConcurrentAppenders(t *testing.T) {
	const (
		writers    = 8
		records    = 500
		recordSize = 16
	)
	env := New(WithWriteBufferSize(recordSize * 4))
	defer env.Close()

	path := filepath.Join(t.TempDir(), "000010.log")
	w, err := env.NewWritableFile(path)
	require.NoError(t, err)

	var g errgroup.Group
	for id := range writers {
		a := w.Appender()
		g.Go(func() error {
			rec := make([]byte, recordSize)
			for seq := range records {
				binary.LittleEndian.PutUint64(rec[0:], uint64(id))
				binary.LittleEndian.PutUint64(rec[8:], uint64(seq))
				if err := a.Append(rec); err != nil {
					return err
				}
			}
			return a.Flush()
		})
	}
	require.NoError(t, g.Wait())
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, writers*records*recordSize)

	// Flushes never split a record, and each writer's records stay in order.
	next := make([]uint64, writers)
	for off := 0; off < len(got); off += recordSize {
		id := binary.LittleEndian.Uint64(got[off:])
		seq := binary.LittleEndian.Uint64(got[off+8:])
		require.Less(t, id, uint64(writers))
		require.Equal(t, next[id], seq, "writer %d out of order", id)
		next[id]++
	}
	for id := range writers {
		assert.Equal(t, uint64(records), next[id])
	}
}

func TestWritableFile_CloseFlushesAllAppenders(t *testing.T) {
	env := New()
	defer env.Close()

	path := filepath.Join(t.TempDir(), "f")
	w, err := env.NewWritableFile(path)
	require.NoError(t, err)

	a1, a2 := w.Appender(), w.Appender()
	require.NoError(t, w.Append([]byte("p")))
	require.NoError(t, a1.Append([]byte("1")))
	require.NoError(t, a2.Append([]byte("2")))
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []byte("p12"), got)
}

func TestWritableFile_RateLimited(t *testing.T) {
	env := New(WithWriteRateLimit(1<<20), WithWriteBufferSize(1024))
	defer env.Close()

	data := testutil.NewRNG(9).Bytes(64 << 10)
	path := filepath.Join(t.TempDir(), "throttled")

	w, err := env.NewWritableFile(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(data))
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
