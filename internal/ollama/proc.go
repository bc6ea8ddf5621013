package ollama

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Proc is a handle on a launched server process. Signal selection is
// platform-specific and lives behind this interface; the supervisor only
// decides when to escalate, never how a signal is delivered.
type Proc interface {
	// Interrupt requests a cooperative stop.
	Interrupt() error
	// Terminate requests an unconditional-but-catchable stop.
	Terminate() error
	// Kill ends the process without appeal.
	Kill() error
	// Done is closed once the process has exited.
	Done() <-chan struct{}
}

// Launcher starts the server process.
type Launcher interface {
	Start(ctx context.Context) (Proc, error)
}

// ServeLauncher runs `ollama serve` bound to the given address, with
// stdout and stderr suppressed.
type ServeLauncher struct {
	Addr string // host:port passed via OLLAMA_HOST
}

func (l ServeLauncher) Start(ctx context.Context) (Proc, error) {
	cmd := exec.Command("ollama", "serve")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.Env = append(os.Environ(), "OLLAMA_HOST="+l.Addr)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ollama serve: %w", err)
	}

	p := &execProc{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProc struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProc) Interrupt() error {
	return p.cmd.Process.Signal(gracefulSignal)
}

func (p *execProc) Terminate() error {
	return p.cmd.Process.Signal(terminateSignal)
}

func (p *execProc) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProc) Done() <-chan struct{} { return p.done }
