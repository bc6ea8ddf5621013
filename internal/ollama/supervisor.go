package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"diascribe/internal/logging"
)

// State of the supervised server lifecycle.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateReused   // an instance was already listening; we will never stop it
	StateStarting // we launched a child and are polling for readiness
	StateReady    // our child answered the port probe
	StateInUse    // the caller's workload is running
	StateShuttingDown
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateReused:
		return "reused"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateInUse:
		return "in-use"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrStartupTimeout is returned when the server does not become
	// reachable before the startup deadline.
	ErrStartupTimeout = errors.New("server startup timed out")
	// ErrExitedEarly is returned when the launched server process exits
	// before its port ever answers.
	ErrExitedEarly = errors.New("server exited early")
)

const (
	defaultProbeTimeout = 500 * time.Millisecond
	defaultPollInterval = 200 * time.Millisecond
	heartbeatInterval   = time.Second
)

// Supervisor manages a local inference server as a scoped resource:
// Acquire probes for a running instance and starts one when absent;
// Release tears down only instances the supervisor itself started,
// escalating interrupt -> terminate -> kill with a bounded wait per step.
type Supervisor struct {
	Host            string
	Port            int
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	Launcher        Launcher

	state       State
	proc        Proc
	startedByUs bool
	released    bool
}

// NewSupervisor returns a supervisor for host:port using the standard
// `ollama serve` launcher.
func NewSupervisor(host string, port int, startupTimeout, shutdownTimeout time.Duration) *Supervisor {
	s := &Supervisor{
		Host:            host,
		Port:            port,
		StartupTimeout:  startupTimeout,
		ShutdownTimeout: shutdownTimeout,
	}
	s.Launcher = ServeLauncher{Addr: s.Addr()}
	return s
}

// Addr returns the host:port the supervisor watches.
func (s *Supervisor) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// State reports the current lifecycle state.
func (s *Supervisor) State() State { return s.state }

// Acquire ensures a server is reachable at Addr. If the port already
// answers, the existing instance is reused. Otherwise a child process is
// launched and the port polled until ready, the child exits, or the
// startup deadline elapses; the latter two are terminal failures and the
// half-started child is killed.
func (s *Supervisor) Acquire(ctx context.Context) error {
	logger := logging.WithComponent("ollama")

	s.state = StateProbing
	if s.portOpen() {
		s.state = StateReused
		logger.Info().Str("addr", s.Addr()).Msg("reusing running server")
		return nil
	}

	s.state = StateStarting
	logger.Info().Str("addr", s.Addr()).Msg("starting server")
	proc, err := s.Launcher.Start(ctx)
	if err != nil {
		s.state = StateFailed
		return fmt.Errorf("launch server: %w", err)
	}
	s.proc = proc
	s.startedByUs = true

	deadline := time.Now().Add(s.startupTimeout())
	lastHeartbeat := time.Time{}
	for {
		if s.portOpen() {
			s.state = StateReady
			logger.Info().Str("addr", s.Addr()).Msg("server ready")
			return nil
		}
		if time.Since(lastHeartbeat) >= heartbeatInterval {
			logger.Info().Str("addr", s.Addr()).Msg("waiting for server")
			lastHeartbeat = time.Now()
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.failStartup()
			return ErrStartupTimeout
		}
		wait := defaultPollInterval
		if wait > remaining {
			wait = remaining
		}
		select {
		case <-proc.Done():
			s.state = StateFailed
			return ErrExitedEarly
		case <-ctx.Done():
			s.failStartup()
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// failStartup kills a child that never became ready. Escalation is not
// worth it here: the process has nothing to shut down cleanly yet.
func (s *Supervisor) failStartup() {
	if s.proc != nil {
		_ = s.proc.Kill()
		<-s.proc.Done()
	}
	s.state = StateFailed
}

// Run acquires the server, runs workload against it, and always releases,
// whatever way the workload exits.
func (s *Supervisor) Run(ctx context.Context, workload func(ctx context.Context) error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	s.state = StateInUse
	return workload(ctx)
}

// Release tears the server down. Reused instances are left alone. For
// owned instances: interrupt, wait; terminate, wait; kill. Each step runs
// at most once, signal failures escalate silently, and the final kill is
// waited on, so Release never hangs. Safe to call more than once.
func (s *Supervisor) Release() {
	if s.released {
		return
	}
	s.released = true

	if !s.startedByUs || s.proc == nil {
		s.state = StateStopped
		return
	}

	logger := logging.WithComponent("ollama")
	s.state = StateShuttingDown
	proc := s.proc
	s.proc = nil

	if s.signalAndWait(proc, proc.Interrupt) {
		logger.Info().Msg("server stopped on interrupt")
		s.state = StateStopped
		return
	}
	if s.signalAndWait(proc, proc.Terminate) {
		logger.Info().Msg("server stopped on terminate")
		s.state = StateStopped
		return
	}
	logger.Warn().Msg("server ignored terminate, killing")
	_ = proc.Kill()
	<-proc.Done()
	s.state = StateStopped
}

func (s *Supervisor) signalAndWait(proc Proc, signal func() error) bool {
	_ = signal()
	select {
	case <-proc.Done():
		return true
	case <-time.After(s.shutdownTimeout()):
		return false
	}
}

func (s *Supervisor) portOpen() bool {
	conn, err := net.DialTimeout("tcp", s.Addr(), defaultProbeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (s *Supervisor) startupTimeout() time.Duration {
	if s.StartupTimeout > 0 {
		return s.StartupTimeout
	}
	return 15 * time.Second
}

func (s *Supervisor) shutdownTimeout() time.Duration {
	if s.ShutdownTimeout > 0 {
		return s.ShutdownTimeout
	}
	return 5 * time.Second
}
