// Package pagefile implements the byte-addressable file abstraction the
// page layer's callers use to persist and re-read finished pages: Append,
// Flush, Sync, Close, and a positional Read. The page layer itself never
// touches a filesystem — it only ever produces and consumes finalized byte
// strings (see page.DataBuilder.Finish / page.NewDataCursor) — so this
// package lives alongside it rather than inside it.
//
// A File holds pages back to back in one growable, non-rotating file:
// callers that need multiple page files manage that themselves by opening
// more than one.
package pagefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// File is a single growable file holding finalized pages back to back. It
// is safe for concurrent use: writes are serialized, and reads use
// ReadAt so they don't race with the current write offset.
type File struct {
	mu   sync.Mutex
	f    *os.File
	size int64
}

// Option configures a File at open time.
type Option func(*options)

type options struct {
	createDirs bool
	perm       os.FileMode
}

// WithCreateDirs makes Open create the parent directory tree if it does
// not already exist.
func WithCreateDirs() Option {
	return func(o *options) { o.createDirs = true }
}

// WithFileMode overrides the permission bits used when creating the file.
// Default is 0o644.
func WithFileMode(perm os.FileMode) Option {
	return func(o *options) { o.perm = perm }
}

// Open opens path for append and positional read, creating it if it does
// not exist. Existing contents are preserved and new pages are appended
// after them.
func Open(path string, opts ...Option) (*File, error) {
	o := options{perm: 0o644}
	for _, opt := range opts {
		opt(&o)
	}

	if o.createDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("pagefile: create dir for %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, o.perm)
	if err != nil {
		return nil, fmt.Errorf("pagefile: open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pagefile: stat %s: %w", path, err)
	}

	return &File{f: f, size: stat.Size()}, nil
}

// Append writes page to the end of the file and returns the byte offset it
// was written at (the offset a filter builder's StartBlock would be told
// about for this page). It does not sync; call Sync or Flush as needed.
func (pf *File) Append(page []byte) (offset int64, err error) {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	offset = pf.size
	n, err := pf.f.WriteAt(page, offset)
	if err != nil {
		return 0, fmt.Errorf("pagefile: append: %w", err)
	}
	pf.size += int64(n)
	return offset, nil
}

// ReadAt reads exactly size bytes starting at offset. It is safe to call
// concurrently with Append and with other ReadAt calls.
func (pf *File) ReadAt(offset int64, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := pf.f.ReadAt(buf, offset); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("pagefile: short read at %d: %w", offset, io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("pagefile: read at %d: %w", offset, err)
	}
	return buf, nil
}

// Size returns the current length of the file.
func (pf *File) Size() int64 {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.size
}

// Flush is a no-op on POSIX (there is no userspace buffer to flush between
// Go's os.File and the kernel); it exists so File exposes a distinct
// flush/sync/close lifecycle regardless of platform.
func (pf *File) Flush() error { return nil }

// Sync commits the file's contents to stable storage.
func (pf *File) Sync() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	if err := pf.f.Sync(); err != nil {
		return fmt.Errorf("pagefile: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file. It does not sync; only data already
// committed by Sync is known to be on stable storage.
func (pf *File) Close() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	if err := pf.f.Close(); err != nil {
		return fmt.Errorf("pagefile: close: %w", err)
	}
	return nil
}
