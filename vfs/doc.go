// Package vfs defines the storage backend that fsenv issues native I/O against.
//
// The package defines two key interfaces:
//
//   - [File]: an open descriptor with positional reads, writes, data sync and
//     access to the raw descriptor (used for memory mapping and locking)
//   - [FileSystem]: path operations (open, stat, readdir, unlink, mkdir,
//     rename) and advisory whole-file locks on an open [File]
//
// # Implementations
//
//   - [LocalFS]: the kernel VFS, via the os package and golang.org/x/sys
//   - [FaultyFS]: test backend that injects faults (write limits, EINTR,
//     short writes, sync and close failures) and records the order of
//     open/sync/lock/close calls
//
// # Usage
//
// Production code uses vfs.Default (which is [LocalFS]):
//
//	f, err := vfs.Default.OpenFile(path, os.O_RDONLY, 0)
//
// Tests wrap it to observe or break the backend:
//
//	ffs := vfs.NewFaultyFS(nil)
//	ffs.AddRule("MANIFEST", vfs.Fault{FailAfterBytes: -1, InterruptWrites: 2})
//	env := fsenv.New(fsenv.WithFileSystem(ffs))
//
// # Errors
//
// Backends must report a missing path with an error satisfying
// errors.Is(err, fs.ErrNotExist); everything else is treated as a generic
// I/O failure by the caller. An interrupted call is reported as
// syscall.EINTR and is retried by fsenv.
//
// # Design Notes
//
// There are no context.Context parameters. Calls are blocking and
// non-interruptible at the syscall level; once issued they run to completion.
package vfs
