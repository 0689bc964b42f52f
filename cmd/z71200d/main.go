// Command z71200d is the server binary: it creates a session's shared
// page and semaphores, serves the aloc/dealoc/set_root control socket,
// and drives the render loop against whatever solver/canvas/shaper/
// surface boundaries are wired in.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/z71200/runtime/internal/alloc"
	"github.com/z71200/runtime/internal/config"
	"github.com/z71200/runtime/internal/draw"
	"github.com/z71200/runtime/internal/frame"
	"github.com/z71200/runtime/internal/host"
	"github.com/z71200/runtime/internal/pageio"
	"github.com/z71200/runtime/internal/rpc"
	"github.com/z71200/runtime/internal/solver"
	"github.com/z71200/runtime/internal/supervisor"
	"github.com/z71200/runtime/internal/textshape"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("z71200d: fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromFlags(args)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("starting session", "session", cfg.Session, "page_size", cfg.PageSize, "socket", cfg.SocketPath)

	sess, err := pageio.NewSession(cfg.Session, cfg.PageSize)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer sess.Close()
	defer pageio.Unlink(cfg.Session)

	a := alloc.New(sess.Bytes())
	if err := a.Init(); err != nil {
		return fmt.Errorf("init allocator: %w", err)
	}

	withLock := func(f func() error) error {
		if err := sess.AcquireFrame(cfg.LockWatchdog); err != nil {
			return err
		}
		defer sess.ReleaseFrame()
		err := f()
		sess.PostReady()
		return err
	}

	handlers := rpc.Handlers{
		Aloc:    a.Alloc,
		Dealoc:  a.Dealoc,
		SetRoot: a.SetRootPtr,
	}
	server, err := rpc.Listen(cfg.SocketPath, handlers, withLock, log)
	if err != nil {
		return fmt.Errorf("start rpc server: %w", err)
	}
	defer server.Close()
	go server.Serve()

	if cfg.ClientCmd != "" {
		argv := strings.Fields(cfg.ClientCmd)
		proc, err := supervisor.Spawn(argv, os.Environ())
		if err != nil {
			return fmt.Errorf("spawn client: %w", err)
		}
		go func() {
			code := supervisor.Wait(proc)
			log.Info("client process exited", "code", code)
		}()
	}

	surface := &host.Headless{Width: 1280, Height: 720}
	loop := frame.New(sess, a, solver.Flex{}, draw.Null{}, textshape.Null{}, surface, &rpc.Sink{Server: server, Log: log}, cfg, log)
	return loop.Run()
}
