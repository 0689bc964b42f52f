package pageio

import (
	"time"

	"github.com/z71200/runtime/internal/tagword"
)

// Session bundles a page with its lock and ready semaphores, the unit
// handed to the render loop and the RPC handler.
type Session struct {
	page *Page
	lock *sema
	ready *sema
}

// NewSession creates a fresh page and semaphore pair for session,
// first removing any stale semaphore sets a crashed prior process
// left behind under the same session id.
func NewSession(session string, pageSize int) (*Session, error) {
	removeSema(session, "lock")
	removeSema(session, "ready")

	page, err := Create(session, pageSize)
	if err != nil {
		return nil, err
	}
	lock, err := createSema(session, "lock", 1)
	if err != nil {
		page.Close()
		return nil, err
	}
	ready, err := createSema(session, "ready", 0)
	if err != nil {
		page.Close()
		return nil, err
	}
	return &Session{page: page, lock: lock, ready: ready}, nil
}

// OpenSession attaches to a session a server process already created.
func OpenSession(session string, pageSize int) (*Session, error) {
	page, err := Open(session, pageSize)
	if err != nil {
		return nil, err
	}
	lock, err := openSema(session, "lock")
	if err != nil {
		page.Close()
		return nil, err
	}
	ready, err := openSema(session, "ready")
	if err != nil {
		page.Close()
		return nil, err
	}
	return &Session{page: page, lock: lock, ready: ready}, nil
}

// Close unmaps the page; it does not remove the shm file or
// semaphore set, which outlive individual attaches.
func (s *Session) Close() error { return s.page.Close() }

// Bytes returns the page's raw bytes for the duration the caller
// holds the lock.
func (s *Session) Bytes() []byte { return s.page.data }

// ReadTag reads the tag at offset without consuming it.
func (s *Session) ReadTag(offset uint64) (tagword.Tag, error) {
	w, err := tagword.Decode(s.page.data, offset)
	if err != nil {
		return 0, err
	}
	return w.Tag, nil
}

// ReadWord decodes the tagged word at offset.
func (s *Session) ReadWord(offset uint64) (tagword.Word, error) {
	return tagword.Decode(s.page.data, offset)
}

// ReadArray resolves an Array tag's payload to its backing bytes.
func (s *Session) ReadArray(offset uint64) ([]byte, error) {
	return tagword.DecodeArray(s.page.data, offset)
}

// AcquireFrame blocks until the lock semaphore is obtained or
// watchdog elapses, whichever comes first. A zero watchdog blocks
// indefinitely.
func (s *Session) AcquireFrame(watchdog time.Duration) error {
	return s.lock.wait(watchdog)
}

// ReleaseFrame releases the lock semaphore, letting a contending
// client write or the next frame's render loop proceed.
func (s *Session) ReleaseFrame() error {
	return s.lock.post()
}

// WaitReady blocks until the ready semaphore has been posted, up to
// timeout, coalescing to a single wakeup if it was posted multiple
// times since the last WaitReady call.
func (s *Session) WaitReady(timeout time.Duration) error {
	if err := s.ready.wait(timeout); err != nil {
		return err
	}
	for {
		v, err := s.ready.value()
		if err != nil || v == 0 {
			return nil
		}
		if err := s.ready.wait(0); err != nil {
			return nil
		}
	}
}

// PostReady signals the render loop that new bytecode is ready to be
// drawn (typically called by set_root and by aloc/dealoc handlers
// that affect the rooted tree).
func (s *Session) PostReady() error {
	return s.ready.post()
}
