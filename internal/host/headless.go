package host

import "github.com/z71200/runtime/internal/geom"

// Headless is a Surface with no real window: it never reports pointer
// activity and presents forever, for running the server without a
// concrete platform backend (scripted fixtures, the allocator/RPC
// test harness, CI).
type Headless struct {
	Width, Height float32
}

func (h *Headless) Poll() (PointerSample, bool) {
	return PointerSample{Position: geom.Point{}, ButtonDown: false}, true
}

func (h *Headless) Size() (float32, float32) { return h.Width, h.Height }
func (h *Headless) Present() error           { return nil }
func (h *Headless) Close() error             { return nil }
