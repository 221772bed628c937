// Package filestore persists credential PDF files on local disk.
//
// Files are stored flat under a single directory with generated UUID names,
// so original filenames never reach the filesystem and collisions cannot
// occur.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Disk is a directory-backed file store.
type Disk struct {
	dir string
}

// New creates the storage directory if needed and returns a Disk store.
func New(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Save writes r to a new file named by a fresh UUID and returns the
// generated name and the number of bytes written. A partially written file
// is removed on error.
func (d *Disk) Save(r io.Reader) (string, int64, error) {
	name := uuid.NewString() + ".pdf"
	path := filepath.Join(d.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("close file: %w", err)
	}
	return name, size, nil
}

// Open returns the stored file for reading. Names are reduced to their base
// component so a stored name can never escape the storage directory.
func (d *Disk) Open(name string) (io.ReadSeekCloser, error) {
	f, err := os.Open(filepath.Join(d.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file.
func (d *Disk) Remove(name string) error {
	if err := os.Remove(filepath.Join(d.dir, filepath.Base(name))); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
