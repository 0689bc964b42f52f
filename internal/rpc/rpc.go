// Package rpc implements the client-facing control channel: a Unix
// domain socket carrying 4-byte little-endian length-prefixed JSON
// messages. Grounded on IntuitionEngine's runtime_ipc.go for the
// socket lifecycle (stale-socket detection by dialing before removing,
// a per-connection goroutine under a read deadline) but framed with an
// explicit length prefix instead of a single fixed-size read, since
// aloc/dealoc payloads and array bytes can exceed one buffer.
//
// Every message carries a kind discriminator: a client's "ask" is
// answered by a "return" or "error", and the server may also push an
// unsolicited "event" message to a connection between asks, in the
// frame order the Paint Pass queued them.
package rpc

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

const maxMessageSize = 1 << 20

// Handlers are the RPC operations the session exposes; Server only
// knows how to frame and dispatch, not how the page or allocator work.
type Handlers struct {
	Aloc    func(size uint64) (ptr uint64, err error)
	Dealoc  func(ptr uint64) error
	SetRoot func(ptr uint64) error
}

// request is a client -> server "ask": fn names the handler to invoke
// and args holds its parameters, decoded once fn selects their shape.
type request struct {
	Kind string          `json:"kind"`
	Fn   string          `json:"fn"`
	Args json.RawMessage `json:"args"`
}

type alocArgs struct {
	Size uint64 `json:"size"`
}

type ptrArgs struct {
	Ptr uint64 `json:"ptr"`
}

type alocReturn struct {
	Ptr uint64 `json:"ptr"`
}

// response is a server -> client message: a return, an error or a
// pushed event, selected by Kind. Only the field matching Kind is
// populated.
type response struct {
	Kind   string      `json:"kind"`
	Return interface{} `json:"return,omitempty"`
	Error  string      `json:"error,omitempty"`
	EvtID  uint64      `json:"evt_id,omitempty"`
}

func returnResponse(v interface{}) response { return response{Kind: "return", Return: v} }
func errorResponse(err error) response       { return response{Kind: "error", Error: err.Error()} }
func eventResponse(evtID uint64) response    { return response{Kind: "event", EvtID: evtID} }

// clientConn is one accepted connection. Writes go through writeMu
// since both the read loop (responses) and a frame's event flush
// (pushed events) can want to write at once.
type clientConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func (cc *clientConn) write(resp response) error {
	cc.writeMu.Lock()
	defer cc.writeMu.Unlock()
	return writeFrame(cc.conn, resp)
}

// Server accepts framed JSON requests on a Unix socket, dispatches
// "ask"s to Handlers under the caller-supplied lock, and can push
// "event" messages to every connection currently open.
type Server struct {
	listener net.Listener
	handlers Handlers
	withLock func(func() error) error
	log      *slog.Logger
	sockPath string
	done     chan struct{}

	connsMu sync.Mutex
	conns   map[*clientConn]struct{}
}

// Listen binds path, removing a stale socket left by a dead process
// first (the same dial-then-remove probe IntuitionEngine's IPC server
// uses to avoid racing a live instance).
func Listen(path string, handlers Handlers, withLock func(func() error) error, log *slog.Logger) (*Server, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		conn, dialErr := net.DialTimeout("unix", path, 2*time.Second)
		if dialErr == nil {
			conn.Close()
			return nil, fmt.Errorf("rpc: socket %s already in use", path)
		}
		os.Remove(path)
		ln, err = net.Listen("unix", path)
		if err != nil {
			return nil, fmt.Errorf("rpc: listen %s: %w", path, err)
		}
	}
	return &Server{
		listener: ln,
		handlers: handlers,
		withLock: withLock,
		log:      log,
		sockPath: path,
		done:     make(chan struct{}),
		conns:    make(map[*clientConn]struct{}),
	}, nil
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		cc := &clientConn{conn: conn}
		s.connsMu.Lock()
		s.conns[cc] = struct{}{}
		s.connsMu.Unlock()
		go s.handleConn(cc)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

// Broadcast pushes evtID as an event message to every connection open
// right now. A client that connects after the push simply never sees
// it, matching "events are delivered on the socket" rather than
// queued for future connections.
func (s *Server) Broadcast(evtID uint64) error {
	s.connsMu.Lock()
	conns := make([]*clientConn, 0, len(s.conns))
	for cc := range s.conns {
		conns = append(conns, cc)
	}
	s.connsMu.Unlock()

	var firstErr error
	for _, cc := range conns {
		if err := cc.write(eventResponse(evtID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) handleConn(cc *clientConn) {
	defer func() {
		cc.conn.Close()
		s.connsMu.Lock()
		delete(s.conns, cc)
		s.connsMu.Unlock()
	}()
	r := bufio.NewReader(cc.conn)
	for {
		cc.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		body, err := readFrame(r)
		if err != nil {
			if err != io.EOF {
				s.log.Debug("rpc: read frame", "error", err)
			}
			return
		}
		resp := s.dispatch(body)
		if err := cc.write(resp); err != nil {
			s.log.Debug("rpc: write frame", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(body []byte) response {
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return errorResponse(fmt.Errorf("malformed request: %w", err))
	}
	if req.Kind != "ask" {
		return errorResponse(fmt.Errorf("unexpected message kind %q", req.Kind))
	}

	var (
		result interface{}
		err    error
	)
	lockErr := s.withLock(func() error {
		switch req.Fn {
		case "aloc":
			var a alocArgs
			if jerr := json.Unmarshal(req.Args, &a); jerr != nil {
				err = fmt.Errorf("malformed args for aloc: %w", jerr)
				return nil
			}
			var ptr uint64
			ptr, err = s.handlers.Aloc(a.Size)
			result = alocReturn{Ptr: ptr}
		case "dealoc":
			var a ptrArgs
			if jerr := json.Unmarshal(req.Args, &a); jerr != nil {
				err = fmt.Errorf("malformed args for dealoc: %w", jerr)
				return nil
			}
			err = s.handlers.Dealoc(a.Ptr)
		case "set_root":
			var a ptrArgs
			if jerr := json.Unmarshal(req.Args, &a); jerr != nil {
				err = fmt.Errorf("malformed args for set_root: %w", jerr)
				return nil
			}
			err = s.handlers.SetRoot(a.Ptr)
		default:
			err = fmt.Errorf("unknown function %q", req.Fn)
		}
		return nil
	})
	if lockErr != nil {
		return errorResponse(lockErr)
	}
	if err != nil {
		return errorResponse(err)
	}
	return returnResponse(result)
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxMessageSize {
		return nil, fmt.Errorf("rpc: frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, resp response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}
