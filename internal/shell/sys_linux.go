//go:build linux

package shell

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Offsets into struct linux_dirent64.
const (
	direntReclenOff = 16
	direntNameOff   = 19
)

// readDirNames lists dir with raw getdents64 calls, in the order the file
// system returns entries. "." and ".." are included.
func readDirNames(dir string) ([]string, error) {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errOpenDir, err)
	}
	defer unix.Close(fd)

	var names []string
	buf := make([]byte, 8192)
	for {
		n, err := unix.Getdents(fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errReadDir, err)
		}
		if n <= 0 {
			return names, nil
		}
		names = appendDirents(names, buf[:n])
	}
}

func appendDirents(names []string, buf []byte) []string {
	for len(buf) > direntNameOff {
		reclen := int(binary.NativeEndian.Uint16(buf[direntReclenOff:]))
		if reclen <= direntNameOff || reclen > len(buf) {
			break
		}
		name := buf[direntNameOff:reclen]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		names = append(names, string(name))
		buf = buf[reclen:]
	}
	return names
}

// sleepFor blocks the calling thread for d, resuming after signal
// interruptions with the remaining time.
func sleepFor(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	req := unix.NsecToTimespec(d.Nanoseconds())
	for {
		var rem unix.Timespec
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, 0, &req, &rem)
		if err != unix.EINTR {
			return err
		}
		req = rem
	}
}
