// Package mmap maps local dataset files read-only into memory.
//
//	m, err := mmap.Open("points.csv")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
package mmap
