// Package supervisor is the thin child-process launcher a server
// binary uses to start a client process against a freshly created
// session. Process supervision itself lives outside this module;
// cmd/z71200d just needs a call site for it.
package supervisor

import (
	"fmt"
	"os"
	"os/exec"
)

// Spawn starts argv[0] with the remaining elements as arguments,
// attaching the child's standard streams to the parent's, and returns
// the running process. The caller is responsible for Wait-ing on it
// and propagating its exit code.
func Spawn(argv []string, env []string) (*os.Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("supervisor: empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("supervisor: spawn %v: %w", argv, err)
	}
	return cmd.Process, nil
}

// Wait blocks for proc to exit and returns its exit code, or -1 if it
// could not be determined.
func Wait(proc *os.Process) int {
	state, err := proc.Wait()
	if err != nil {
		return -1
	}
	return state.ExitCode()
}
