//go:build !windows

package ollama

import (
	"os"
	"syscall"
)

var (
	gracefulSignal  os.Signal = os.Interrupt
	terminateSignal os.Signal = syscall.SIGTERM
)
