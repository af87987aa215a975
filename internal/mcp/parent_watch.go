package mcp

import (
	"context"
	"os"
	"time"

	"gnosis/internal/logging"
)

// WatchParent polls the parent PID in a background goroutine and cancels the
// server when it changes, so an orphaned stdio server does not linger after
// its client dies. It must not read stdin: the SDK's StdioTransport owns it.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	log := logging.New("mcp")
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
