//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var madvice = map[AccessPattern]int{
	AccessDefault:    unix.MADV_NORMAL,
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
}

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, &os.PathError{Op: "mmap", Path: f.Name(), Err: err}
	}
	return data, unix.Munmap, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	advice, ok := madvice[pattern]
	if !ok || len(data) == 0 {
		return nil
	}
	// Unaligned views are rejected with EINVAL; the hint is optional.
	if err := unix.Madvise(data, advice); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
