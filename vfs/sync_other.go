//go:build !linux && !darwin

package vfs

import "os"

func syncData(f *os.File) error {
	return f.Sync()
}
