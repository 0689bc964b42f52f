// Command z71200c is the bytecode assembler: it compiles a
// line-oriented human-readable instruction listing into the binary
// tagged-word stream the server reads from a client's shared page,
// for building fixtures and testing by hand.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/z71200/runtime/internal/asm"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("z71200c: fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("z71200c", flag.ContinueOnError)
	in := fs.String("in", "-", "source file (- for stdin)")
	out := fs.String("out", "-", "output file (- for stdout)")
	printRoot := fs.Bool("print-root", false, "print the root pointer as a little-endian uint64 before the page bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := readAll(*in)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	page, root, err := asm.Assemble(string(src))
	if err != nil {
		return err
	}

	w, closeFn, err := openOut(*out)
	if err != nil {
		return err
	}
	defer closeFn()

	if *printRoot {
		var rootBuf [8]byte
		binary.LittleEndian.PutUint64(rootBuf[:], root)
		if _, err := w.Write(rootBuf[:]); err != nil {
			return err
		}
	}
	_, err = w.Write(page)
	return err
}

func readAll(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func openOut(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
