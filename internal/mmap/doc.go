// Package mmap provides read-only memory mappings of whole files.
//
// # Usage
//
//	m, err := mmap.Map(f, size)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy view of the file
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent and guarded by
// an atomic flag, but callers must not touch Bytes() after Close returns.
//
// The mapping does not keep the descriptor it was created from; the caller
// may close the file right after Map returns.
package mmap
