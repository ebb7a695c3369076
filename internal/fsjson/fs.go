// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fsjson

import (
	"fmt"
	"io"
	"os"
)

// Mode selects how a file is opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeWriteTruncate
)

func (m Mode) flags() int {
	switch m {
	case ModeWrite:
		return os.O_WRONLY | os.O_CREATE
	case ModeWriteTruncate:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		return os.O_RDONLY
	}
}

// File is an open byte stream.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}

// Entry describes one directory entry.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// FileSystem is a hierarchical byte-stream store.
type FileSystem interface {
	Open(name string, mode Mode) (File, error)
	List(dir string) ([]Entry, error)
}

// Mounter brings up an on-board filesystem, typically the FAT volume on a
// QSPI or SPI flash chip.
type Mounter interface {
	Mount() (FileSystem, error)
}

// DirFS is a FileSystem confined to one host directory.
type DirFS struct {
	root *os.Root
}

var _ FileSystem = (*DirFS)(nil)

// OpenDir returns a DirFS rooted at dir.
func OpenDir(dir string) (*DirFS, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open root %s: %w", dir, err)
	}
	return &DirFS{root: root}, nil
}

func (d *DirFS) Open(name string, mode Mode) (File, error) {
	f, err := d.root.OpenFile(name, mode.flags(), 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *DirFS) List(dir string) ([]Entry, error) {
	f, err := d.root.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dirents, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		e := Entry{Name: de.Name(), IsDir: de.IsDir()}
		if !e.IsDir {
			if info, err := de.Info(); err == nil {
				e.Size = info.Size()
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close releases the root directory handle.
func (d *DirFS) Close() error {
	return d.root.Close()
}

// DirMounter mounts a host directory in place of a flash volume.
type DirMounter struct {
	Dir string
}

func (m DirMounter) Mount() (FileSystem, error) {
	if m.Dir == "" {
		return nil, fmt.Errorf("no flash directory configured")
	}
	return OpenDir(m.Dir)
}
