// Package config resolves the runtime's tunables from flags and
// environment variables: session id, page size, socket/shm paths,
// watchdog timeout and instruction cap. Reads env vars through
// github.com/xyproto/env/v2, a small dependency-free env-reading
// helper.
package config

import (
	"flag"
	"time"

	"github.com/xyproto/env/v2"
)

// Config holds one server process's resolved settings.
type Config struct {
	Session        string
	PageSize       int
	SocketPath     string
	LockWatchdog   time.Duration
	ReadyTimeout   time.Duration
	InstructionCap int
	ClientCmd      string
}

// Default page size: generous enough for a few hundred elements'
// worth of bytecode plus allocator overhead without reaching for
// resizing, which the page format doesn't support mid-session.
const defaultPageSize = 1 << 20

// FromFlags parses args (typically os.Args[1:]) layered over
// environment defaults: an explicit flag always wins, an env var
// beats the built-in default.
func FromFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("z71200d", flag.ContinueOnError)

	session := fs.String("session", env.Str("Z71200_SESSION", "default"), "session id")
	pageSize := fs.Int("page-size", env.Int("Z71200_PAGE_SIZE", defaultPageSize), "shared page size in bytes")
	sockPath := fs.String("socket", env.Str("Z71200_SOCKET", ""), "control socket path (defaults to /tmp/<session>.sock)")
	watchdogMs := fs.Int("lock-watchdog-ms", env.Int("Z71200_LOCK_WATCHDOG_MS", 100), "lock acquisition watchdog, in milliseconds")
	readyMs := fs.Int("ready-timeout-ms", env.Int("Z71200_READY_TIMEOUT_MS", 16), "ready-semaphore poll timeout, in milliseconds")
	instrCap := fs.Int("instruction-cap", env.Int("Z71200_INSTRUCTION_CAP", 0), "per-pass instruction cap (0: derive from page size)")
	clientCmd := fs.String("client", env.Str("Z71200_CLIENT_CMD", ""), "client command to spawn once the session is up, space-separated (empty: don't spawn one)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	sp := *sockPath
	if sp == "" {
		sp = "/tmp/" + *session + ".sock"
	}

	return &Config{
		Session:        *session,
		PageSize:       *pageSize,
		SocketPath:     sp,
		LockWatchdog:   time.Duration(*watchdogMs) * time.Millisecond,
		ReadyTimeout:   time.Duration(*readyMs) * time.Millisecond,
		InstructionCap: *instrCap,
		ClientCmd:      *clientCmd,
	}, nil
}
