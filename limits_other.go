//go:build !unix

package fsenv

func maxOpenFiles() (n int, ok bool) {
	return 0, false
}
