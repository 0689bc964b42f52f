// Package pageio owns the shared memory page and its two named
// semaphores: it maps the fixed-size region a client writes bytecode
// into, exposes typed word-aligned reads, and wraps the lock/ready
// semaphore pair the render loop and RPC handler contend over.
//
// No non-cgo binding for POSIX named semaphores (sem_open) turned up
// in the example corpus, so this package follows the SysV semaphore
// and shared-memory primitives golang.org/x/sys/unix exposes instead:
// the page itself is still a POSIX shared memory object (an mmap-ed
// file under /dev/shm, tmpfs-backed like POSIX shm on Linux), but the
// two semaphores are a SysV set keyed off a hash of the session id so
// stale sets from a crashed process can be identified and removed at
// startup.
package pageio

import (
	"fmt"
	"hash/fnv"
	"os"

	"golang.org/x/sys/unix"
)

// Page is the shared memory region a client's bytecode and its
// allocator header live in.
type Page struct {
	path string
	data []byte
	file *os.File
}

// ShmPath returns the conventional /dev/shm path for a session's page.
func ShmPath(session string) string {
	return fmt.Sprintf("/dev/shm/%s.page", session)
}

// Create maps a fresh, zeroed page of size bytes for session,
// replacing any existing page file of the same name.
func Create(session string, size int) (*Page, error) {
	path := ShmPath(session)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("pageio: create %s: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("pageio: truncate %s: %w", path, err)
	}
	return mapFile(path, f, size)
}

// Open maps an existing page for session, created by another process
// with Create.
func Open(session string, size int) (*Page, error) {
	path := ShmPath(session)
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("pageio: open %s: %w", path, err)
	}
	return mapFile(path, f, size)
}

func mapFile(path string, f *os.File, size int) (*Page, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pageio: mmap %s: %w", path, err)
	}
	return &Page{path: path, data: data, file: f}, nil
}

// Bytes returns the page's backing bytes. The Layout and Paint passes
// hold only a read view; the allocator and client writes mutate it
// directly while the caller holds the lock semaphore.
func (p *Page) Bytes() []byte { return p.data }

// Close unmaps and closes the page without removing the shm file;
// Unlink removes the file itself (called by whichever process owns
// the session's lifecycle, typically the server at shutdown).
func (p *Page) Close() error {
	if err := unix.Munmap(p.data); err != nil {
		return fmt.Errorf("pageio: munmap %s: %w", p.path, err)
	}
	return p.file.Close()
}

// Unlink removes the page's backing file from /dev/shm.
func Unlink(session string) error {
	err := os.Remove(ShmPath(session))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ftokKey derives a stable, small-int IPC key from session and a
// semaphore role name, standing in for the POSIX ftok() convention
// this package has no cgo binding for.
func ftokKey(session, role string) int {
	h := fnv.New32a()
	h.Write([]byte(session))
	h.Write([]byte{0})
	h.Write([]byte(role))
	// IPC keys are int and the high bit causes sign trouble on some
	// platforms; mask it off.
	return int(h.Sum32() & 0x3fffffff)
}
