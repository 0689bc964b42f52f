// Package frame drives the per-frame data flow: input sampling and
// hit-testing, lock acquisition, the Layout Pass and its constraint
// solve, the Paint Pass, lock release and present. It is the
// component that wires the otherwise-independent vm, solver,
// layoutpass, paintpass, input and pageio packages into one
// cooperative, single-threaded render loop.
package frame

import (
	"log/slog"

	"github.com/z71200/runtime/internal/alloc"
	"github.com/z71200/runtime/internal/config"
	"github.com/z71200/runtime/internal/draw"
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/host"
	"github.com/z71200/runtime/internal/input"
	"github.com/z71200/runtime/internal/layoutpass"
	"github.com/z71200/runtime/internal/paintpass"
	"github.com/z71200/runtime/internal/pageio"
	"github.com/z71200/runtime/internal/solver"
	"github.com/z71200/runtime/internal/textshape"
	"github.com/z71200/runtime/internal/vm"
)

// BaseFontSizePx is the root font size Rems arguments resolve
// against. The bytecode has no instruction for changing it; it's a
// render-loop-level setting, not a per-element one.
const BaseFontSizePx = 16

// EventSink receives the Event instructions a frame's Paint Pass
// queues, in encounter order, for whatever delivers them to a client
// (the RPC layer in a full server; tests can swap in a recorder).
type EventSink interface {
	Flush(events []paintpass.QueuedEvent)
}

// Loop owns everything one frame's render step touches except the
// RPC handlers, which mutate the page and root pointer independently
// under the same lock (see rpc.Server's withLock callback).
type Loop struct {
	session *pageio.Session
	alloc   *alloc.Allocator
	solver  solver.Solver
	canvas  draw.Canvas
	shaper  textshape.Shaper
	surface host.Surface
	router  *input.Router
	events  EventSink
	cfg     *config.Config
	log     *slog.Logger
}

// New assembles a Loop. solver, canvas and shaper are the external
// collaborator boundaries; a caller with no text shaper wired in yet
// may pass nil and text simply won't be drawn.
func New(session *pageio.Session, a *alloc.Allocator, sv solver.Solver, canvas draw.Canvas, shaper textshape.Shaper, surface host.Surface, events EventSink, cfg *config.Config, log *slog.Logger) *Loop {
	return &Loop{
		session: session,
		alloc:   a,
		solver:  sv,
		canvas:  canvas,
		shaper:  shaper,
		surface: surface,
		router:  input.NewRouter(),
		events:  events,
		cfg:     cfg,
		log:     log,
	}
}

// Run drives frames until the surface reports it wants to stop or a
// fatal error occurs. Per-frame bytecode errors are logged and
// swallowed: the previous frame stays on screen.
func (l *Loop) Run() error {
	for {
		sample, keepGoing := l.surface.Poll()
		if !keepGoing {
			return nil
		}
		l.router.Update(sample.Position, sample.ButtonDown)

		if err := l.session.WaitReady(l.cfg.ReadyTimeout); err != nil && err != pageio.ErrWatchdog {
			l.log.Warn("ready wait failed", "error", err)
		}

		if err := l.session.AcquireFrame(l.cfg.LockWatchdog); err != nil {
			l.log.Warn("lock acquisition exceeded watchdog, presenting previous frame", "error", err)
			if err := l.surface.Present(); err != nil {
				return err
			}
			continue
		}

		if err := l.renderLocked(); err != nil {
			l.log.Warn("frame aborted", "error", err)
		}

		if err := l.session.ReleaseFrame(); err != nil {
			l.log.Error("failed to release lock semaphore", "error", err)
			return err
		}
		l.router.EndFrame()

		if err := l.surface.Present(); err != nil {
			return err
		}
	}
}

// renderLocked runs one Layout Pass, solve and Paint Pass against the
// page while the caller holds the lock semaphore.
func (l *Loop) renderLocked() error {
	root, err := l.alloc.RootPtr()
	if err != nil {
		return err
	}
	if root == 0 {
		return nil // no client has called set_root yet
	}

	width, height := l.surface.Size()
	viewport := geom.Rectangle{Max: geom.Point{X: width, Y: height}}

	lp := layoutpass.New(l.router)
	if err := vm.NewMachine(l.session.Bytes()).WithInstructionCap(l.cfg.InstructionCap).Run(lp, root); err != nil {
		return err
	}

	geometry, err := l.solver.Solve(lp.Tree(), viewport, BaseFontSizePx)
	if err != nil {
		return err
	}

	pp := paintpass.New(geometry, BaseFontSizePx, l.canvas, l.shaper, l.router)
	if err := vm.NewMachine(l.session.Bytes()).WithInstructionCap(l.cfg.InstructionCap).Run(pp, root); err != nil {
		return err
	}

	// The next frame's hit test runs against the geometry this frame
	// just resolved: both passes of a given frame see the *previous*
	// frame's geometry, and this frame's own output only becomes
	// "previous" once it's done.
	l.router.SetGeometry(geometry, lp.Order())

	if l.events != nil {
		l.events.Flush(pp.Events())
	}
	return nil
}
