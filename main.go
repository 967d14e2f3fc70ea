package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/cloudposse/hcloud-projects/cmd"
	errUtils "github.com/cloudposse/hcloud-projects/errors"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A signal cancels the running command; main then exits with the POSIX code 128 + signal number.
	var received atomic.Int32
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		code := int32(130)
		if s, ok := sig.(syscall.Signal); ok {
			code = 128 + int32(s)
		}
		received.Store(code)
		cancel()
	}()

	// Use errUtils.OsExit to allow test interception.
	exitCode := run(ctx)
	if code := received.Load(); code != 0 {
		exitCode = int(code)
	}
	errUtils.OsExit(exitCode)
}

// run executes the command and returns its exit code. Cleanup runs before main exits.
func run(ctx context.Context) int {
	defer cmd.Cleanup()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		errUtils.CaptureError(err)

		errUtils.PrintError(err, cmd.FormatterConfig())

		exitCode := errUtils.GetExitCode(err)
		log.Debug("Exiting with exit code", "code", exitCode)
		return exitCode
	}

	return 0
}
