//go:build windows

package ollama

import "os"

// Windows cannot deliver SIGINT/SIGTERM to an unrelated console process;
// both tiers degrade to Kill and the escalation in the supervisor still
// terminates the child.
var (
	gracefulSignal  os.Signal = os.Kill
	terminateSignal os.Signal = os.Kill
)
