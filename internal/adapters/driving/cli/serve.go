package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crawl scheduler in the foreground",
	Long: `Runs the scheduler until interrupted. Each active source is crawled
and ingested on its own interval. Edits to the configuration file are
picked up without a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if configStore != nil {
		cancelWatch, err := watchConfig(ctx)
		if err != nil {
			logger.Warn("Config reload disabled: %v", err)
		} else {
			defer cancelWatch()
		}
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	if err := schedulerService.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Scheduler stopped.")
	return nil
}

// watchConfig reloads the config store whenever its file is rewritten.
func watchConfig(ctx context.Context) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(configStore.Path()); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := configStore.Load(); err != nil {
					logger.Warn("Config reload failed: %v", err)
					continue
				}
				logger.Info("Configuration reloaded from %s", configStore.Path())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher: %v", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
