package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultWatchInterval is how often WatchParent polls the parent pid.
const DefaultWatchInterval = 2 * time.Second

// WatchParent calls cancel when the process is re-parented, which happens
// when the client that spawned the stdio server exits without closing
// stdin. It never reads stdin: the stdio transport owns it.
//
// The goroutine exits when ctx is done or the parent is gone.
func WatchParent(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) {
	watchParent(ctx, cancel, DefaultWatchInterval, os.Getppid, logger)
}

func watchParent(ctx context.Context, cancel context.CancelFunc, every time.Duration, getppid func() int, logger *slog.Logger) {
	ppid := getppid()
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if getppid() != ppid {
					logger.Warn("parent process exited, shutting down", "parent_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
