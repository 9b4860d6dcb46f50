//go:build !windows

package endpoint

import "golang.org/x/sys/unix"

func setNonblock(fd uintptr, nonblocking bool) error {
	return unix.SetNonblock(int(fd), nonblocking)
}
