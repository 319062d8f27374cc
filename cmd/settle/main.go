package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	kexec "k8s.io/utils/exec"

	"github.com/bft-labs/settle"
	"github.com/bft-labs/settle/internal/cliconfig"
	"github.com/bft-labs/settle/internal/watch"
	"github.com/bft-labs/settle/pkg/log"
)

const longHelp = `Watch paths and run a command once a burst of changes settles.

settle coalesces rapid filesystem events: the command runs only after
the watched paths have been quiet for --wait. With --max-wait set, a
stream of changes that never goes quiet still triggers the command
within that ceiling. The batch of changed paths is passed to the
command in the ` + watch.ChangedEnvVar + ` environment variable,
newline separated.`

var exampleUsage = strings.TrimSpace(`
  settle --wait 500ms src -- make build
  settle --wait 250ms --max-wait 5s content static -- ./deploy.sh
  settle --config $HOME/.settle/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "settle [flags] [path...] -- command [args...]",
		Short:   "Run a command once a burst of filesystem changes settles",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build set of changed flags for precedence handling.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Everything after -- is the command; everything before
			// are the paths to watch.
			paths := args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				paths = args[:dash]
				if command := args[dash:]; len(command) > 0 {
					cfg.Command = command
					changed["command"] = true
				}
			}
			if len(paths) > 0 {
				cfg.Paths = paths
				changed["paths"] = true
			}

			// Load config file first (default $HOME/.settle/config.toml),
			// then env, then flag overrides via the changed map.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.settle/config.toml)")
	root.Flags().DurationVar(&cfg.Wait, "wait", cfg.Wait, "quiet period required before the command runs")
	root.Flags().DurationVar(&cfg.MaxWait, "max-wait", cfg.MaxWait, "ceiling on total delay from the first change of a burst (0 disables)")
	root.Flags().BoolVar(&cfg.RunAtStart, "run-at-start", cfg.RunAtStart, "run the command once immediately after startup")
	root.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "settle:", err)
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config) error {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
	logger := log.NewZerologLogger(zl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := watch.NewRunner(cfg.Command, kexec.New(), logger)

	opts := []settle.Option{
		settle.WithLogger(logger),
		settle.WithName("settle-cli"),
	}
	if cfg.MaxWait > 0 {
		opts = append(opts, settle.WithMaxWait(cfg.MaxWait))
	}
	deb, err := settle.New(cfg.Wait, func(paths []string) {
		// Command failures are logged by the runner; the next settled
		// batch runs the command again.
		_ = runner.Run(ctx, paths)
	}, opts...)
	if err != nil {
		return err
	}
	defer deb.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received signal, stopping...")
		cancel()
	}()

	if cfg.RunAtStart {
		deb.DebounceNow()
	}

	watcher := watch.NewWatcher(cfg.Paths, deb, logger)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
