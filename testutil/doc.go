// Package testutil provides testing utilities for fsenv.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe RNG for generating file contents
// and for splitting them into append chunks.
//
// # Payloads
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(1 << 20)
//
// # Chunking
//
//	for _, chunk := range testutil.Split(data, rng.Chunks(len(data), 4096)) {
//	    w.Append(chunk)
//	}
//
// ZipfChunks produces mostly small chunks with a heavy tail, which exercises
// both the staged and the unbuffered write paths.
package testutil
