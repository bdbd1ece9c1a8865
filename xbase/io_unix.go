//go:build !windows
// +build !windows

package xbase

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory lock on the whole file, retrying on
// EAGAIN. exclusive selects F_WRLCK over F_RDLCK.
func lockFile(handle *os.File, exclusive bool) error {
	lockType := int16(unix.F_RDLCK)
	if exclusive {
		lockType = unix.F_WRLCK
	}
	flock := &unix.Flock_t{
		Type:   lockType,
		Whence: 0,
		Start:  0,
		Len:    0,
	}
	for {
		err := unix.FcntlFlock(handle.Fd(), unix.F_SETLK, flock)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EAGAIN) {
			return newError("xbase-io-unix-lock-1", FileWriteError, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func unlockFile(handle *os.File) error {
	flock := &unix.Flock_t{
		Type:   unix.F_UNLCK,
		Whence: 0,
		Start:  0,
		Len:    0,
	}
	if err := unix.FcntlFlock(handle.Fd(), unix.F_SETLK, flock); err != nil {
		return newError("xbase-io-unix-unlock-1", FileWriteError, err)
	}
	return nil
}
