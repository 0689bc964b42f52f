package pageio

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// ErrWatchdog is returned by AcquireFrame when the lock semaphore
// isn't obtained before the watchdog elapses: the caller aborts this
// frame and presents the previous one instead.
var ErrWatchdog = errors.New("pageio: lock acquisition exceeded watchdog")

// pollInterval bounds how long a timed wait can overshoot its
// deadline; IPC_NOWAIT semop gives no blocking-with-timeout primitive
// in this binding, so timed waits poll at this granularity instead.
const pollInterval = time.Millisecond

// sema is a single SysV semaphore standing in for a POSIX named
// semaphore (see page.go's package doc for why).
type sema struct {
	id int
}

// createSema creates (or reuses, if present) a one-member semaphore
// set keyed off session and role, initialized to initial.
func createSema(session, role string, initial int) (*sema, error) {
	key := ftokKey(session, role)
	id, err := unix.Semget(key, 1, unix.IPC_CREAT|0600)
	if err != nil {
		return nil, fmt.Errorf("pageio: semget %s/%s: %w", session, role, err)
	}
	if _, err := unix.SemctlInt(id, 0, unix.SETVAL, initial); err != nil {
		return nil, fmt.Errorf("pageio: semctl setval %s/%s: %w", session, role, err)
	}
	return &sema{id: id}, nil
}

// openSema attaches to an existing semaphore set without resetting
// its value.
func openSema(session, role string) (*sema, error) {
	key := ftokKey(session, role)
	id, err := unix.Semget(key, 1, 0600)
	if err != nil {
		return nil, fmt.Errorf("pageio: semget %s/%s: %w", session, role, err)
	}
	return &sema{id: id}, nil
}

// removeSema destroys a semaphore set, used at startup to clear stale
// sets left by a crashed process sharing the same session id.
func removeSema(session, role string) error {
	key := ftokKey(session, role)
	id, err := unix.Semget(key, 1, 0600)
	if err != nil {
		// Nothing to remove.
		return nil
	}
	_, err = unix.SemctlInt(id, 0, unix.IPC_RMID, 0)
	return err
}

// wait decrements the semaphore, blocking until it succeeds or
// timeout elapses. A zero timeout blocks indefinitely. Polls with
// IPC_NOWAIT since this binding exposes no semtimedop.
func (s *sema) wait(timeout time.Duration) error {
	blocking := []unix.Sembuf{{SemNum: 0, SemOp: -1, SemFlg: 0}}
	if timeout <= 0 {
		return unix.Semop(s.id, blocking)
	}

	nonblocking := []unix.Sembuf{{SemNum: 0, SemOp: -1, SemFlg: unix.IPC_NOWAIT}}
	deadline := time.Now().Add(timeout)
	for {
		err := unix.Semop(s.id, nonblocking)
		if err == nil {
			return nil
		}
		if err != unix.EAGAIN {
			return err
		}
		if time.Now().After(deadline) {
			return ErrWatchdog
		}
		time.Sleep(pollInterval)
	}
}

// post increments the semaphore by one, waking a single waiter.
func (s *sema) post() error {
	op := []unix.Sembuf{{SemNum: 0, SemOp: 1, SemFlg: 0}}
	return unix.Semop(s.id, op)
}

// value returns the semaphore's current count.
func (s *sema) value() (int, error) {
	return unix.SemctlInt(s.id, 0, unix.GETVAL, 0)
}
