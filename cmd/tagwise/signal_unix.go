//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals trigger graceful shutdown. SIGTERM is the default
// signal sent by `kill` and by most process supervisors.
var terminationSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
