//go:build windows
// +build windows

package xbase

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockFile takes an advisory lock on the whole file using LockFileEx.
// exclusive selects LOCKFILE_EXCLUSIVE_LOCK over a shared lock.
func lockFile(handle *os.File, exclusive bool) error {
	var flags uint32
	if exclusive {
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	o := &windows.Overlapped{}
	if err := windows.LockFileEx(windows.Handle(handle.Fd()), flags, 0, ^uint32(0), ^uint32(0), o); err != nil {
		return newError("xbase-io-windows-lock-1", FileWriteError, err)
	}
	return nil
}

func unlockFile(handle *os.File) error {
	o := &windows.Overlapped{}
	if err := windows.UnlockFileEx(windows.Handle(handle.Fd()), 0, ^uint32(0), ^uint32(0), o); err != nil {
		return newError("xbase-io-windows-unlock-1", FileWriteError, err)
	}
	return nil
}
