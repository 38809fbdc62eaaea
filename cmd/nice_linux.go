//go:build linux

package cmd

import "golang.org/x/sys/unix"

// setNiceness sets the niceness of the whole process.
func setNiceness(n int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, n)
}
