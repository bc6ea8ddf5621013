package ollama

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"
)

type mockProc struct {
	interrupts  int
	terminates  int
	kills       int
	onInterrupt func(p *mockProc)
	onTerminate func(p *mockProc)
	done        chan struct{}
}

func newMockProc() *mockProc {
	return &mockProc{done: make(chan struct{})}
}

func (p *mockProc) exit() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

func (p *mockProc) Interrupt() error {
	p.interrupts++
	if p.onInterrupt != nil {
		p.onInterrupt(p)
	}
	return nil
}

func (p *mockProc) Terminate() error {
	p.terminates++
	if p.onTerminate != nil {
		p.onTerminate(p)
	}
	return nil
}

func (p *mockProc) Kill() error {
	p.kills++
	p.exit()
	return nil
}

func (p *mockProc) Done() <-chan struct{} { return p.done }

type mockLauncher struct {
	starts int
	start  func(ctx context.Context) (Proc, error)
}

func (l *mockLauncher) Start(ctx context.Context) (Proc, error) {
	l.starts++
	return l.start(ctx)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestAcquireReusesRunningInstance(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	launcher := &mockLauncher{start: func(context.Context) (Proc, error) {
		t.Fatal("launcher must not run when the port is already open")
		return nil, nil
	}}
	sup := NewSupervisor("127.0.0.1", port, time.Second, time.Second)
	sup.Launcher = launcher

	if err := sup.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sup.State() != StateReused {
		t.Fatalf("expected state reused, got %s", sup.State())
	}
	if launcher.starts != 0 {
		t.Fatalf("launcher ran %d times", launcher.starts)
	}

	// Releasing a reused instance takes no action against the process.
	sup.Release()
	if sup.State() != StateStopped {
		t.Fatalf("expected state stopped, got %s", sup.State())
	}
}

func TestAcquireStartsAndReachesReady(t *testing.T) {
	port := freePort(t)
	listenerCh := make(chan net.Listener, 1)

	proc := newMockProc()
	launcher := &mockLauncher{start: func(context.Context) (Proc, error) {
		go func() {
			time.Sleep(300 * time.Millisecond)
			l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
			if err != nil {
				return
			}
			listenerCh <- l
		}()
		return proc, nil
	}}
	sup := NewSupervisor("127.0.0.1", port, 15*time.Second, time.Second)
	sup.Launcher = launcher

	start := time.Now()
	if err := sup.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer (<-listenerCh).Close()
	if sup.State() != StateReady {
		t.Fatalf("expected state ready, got %s", sup.State())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("acquisition took too long: %v", elapsed)
	}
}

func TestAcquireTimesOutAtDeadline(t *testing.T) {
	proc := newMockProc()
	launcher := &mockLauncher{start: func(context.Context) (Proc, error) {
		return proc, nil
	}}
	sup := NewSupervisor("127.0.0.1", freePort(t), 400*time.Millisecond, time.Second)
	sup.Launcher = launcher

	start := time.Now()
	err := sup.Acquire(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, ErrStartupTimeout) {
		t.Fatalf("expected ErrStartupTimeout, got %v", err)
	}
	if sup.State() != StateFailed {
		t.Fatalf("expected state failed, got %s", sup.State())
	}
	if elapsed < 400*time.Millisecond {
		t.Fatalf("failed before the deadline: %v", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("failed long after the deadline: %v", elapsed)
	}
	if proc.kills == 0 {
		t.Fatal("half-started child was not killed")
	}
}

func TestAcquireFailsWhenChildExitsEarly(t *testing.T) {
	proc := newMockProc()
	launcher := &mockLauncher{start: func(context.Context) (Proc, error) {
		proc.exit()
		return proc, nil
	}}
	sup := NewSupervisor("127.0.0.1", freePort(t), 5*time.Second, time.Second)
	sup.Launcher = launcher

	if err := sup.Acquire(context.Background()); !errors.Is(err, ErrExitedEarly) {
		t.Fatalf("expected ErrExitedEarly, got %v", err)
	}
	if sup.State() != StateFailed {
		t.Fatalf("expected state failed, got %s", sup.State())
	}
}

func TestReleaseEscalatesToTerminate(t *testing.T) {
	// The child ignores interrupt but honors terminate: exactly two
	// escalation steps, kill never reached.
	proc := newMockProc()
	proc.onTerminate = func(p *mockProc) { p.exit() }

	sup := &Supervisor{
		Host:            "127.0.0.1",
		Port:            freePort(t),
		ShutdownTimeout: 100 * time.Millisecond,
	}
	sup.proc = proc
	sup.startedByUs = true
	sup.state = StateInUse

	sup.Release()

	if proc.interrupts != 1 {
		t.Errorf("expected exactly one interrupt, got %d", proc.interrupts)
	}
	if proc.terminates != 1 {
		t.Errorf("expected exactly one terminate, got %d", proc.terminates)
	}
	if proc.kills != 0 {
		t.Errorf("kill must not be reached, got %d", proc.kills)
	}
	if sup.State() != StateStopped {
		t.Fatalf("expected state stopped, got %s", sup.State())
	}
}

func TestReleaseGracefulStop(t *testing.T) {
	proc := newMockProc()
	proc.onInterrupt = func(p *mockProc) { p.exit() }

	sup := &Supervisor{Host: "127.0.0.1", Port: freePort(t), ShutdownTimeout: 100 * time.Millisecond}
	sup.proc = proc
	sup.startedByUs = true
	sup.state = StateInUse

	sup.Release()

	if proc.interrupts != 1 || proc.terminates != 0 || proc.kills != 0 {
		t.Fatalf("expected a single interrupt, got %d/%d/%d", proc.interrupts, proc.terminates, proc.kills)
	}
}

func TestReleaseFallsBackToKill(t *testing.T) {
	proc := newMockProc()

	sup := &Supervisor{Host: "127.0.0.1", Port: freePort(t), ShutdownTimeout: 50 * time.Millisecond}
	sup.proc = proc
	sup.startedByUs = true
	sup.state = StateInUse

	sup.Release()

	if proc.interrupts != 1 || proc.terminates != 1 || proc.kills != 1 {
		t.Fatalf("expected full escalation, got %d/%d/%d", proc.interrupts, proc.terminates, proc.kills)
	}
	if sup.State() != StateStopped {
		t.Fatalf("expected state stopped, got %s", sup.State())
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	proc := newMockProc()
	proc.onInterrupt = func(p *mockProc) { p.exit() }

	sup := &Supervisor{Host: "127.0.0.1", Port: freePort(t), ShutdownTimeout: 100 * time.Millisecond}
	sup.proc = proc
	sup.startedByUs = true

	sup.Release()
	sup.Release()

	if proc.interrupts != 1 {
		t.Fatalf("second release signaled again: %d interrupts", proc.interrupts)
	}
}

func TestRunReleasesOnWorkloadError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	sup := NewSupervisor("127.0.0.1", port, time.Second, time.Second)
	wantErr := errors.New("workload failed")
	if err := sup.Run(context.Background(), func(context.Context) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected workload error, got %v", err)
	}
	if sup.State() != StateStopped {
		t.Fatalf("expected state stopped after Run, got %s", sup.State())
	}
}
