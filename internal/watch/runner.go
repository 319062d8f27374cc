package watch

import (
	"context"
	"os"
	"strings"

	kexec "k8s.io/utils/exec"

	"github.com/bft-labs/settle/pkg/log"
)

// ChangedEnvVar is set on the spawned command and carries the
// newline-separated list of paths in the settled batch.
const ChangedEnvVar = "SETTLE_CHANGED"

// Runner executes the configured command once per settled batch of
// changed paths. Failures are logged and not retried; the next batch
// runs the command again regardless.
type Runner struct {
	command  []string
	executor kexec.Interface
	logger   log.Logger
}

// NewRunner creates a runner for the given command line.
func NewRunner(command []string, executor kexec.Interface, logger log.Logger) *Runner {
	return &Runner{
		command:  command,
		executor: executor,
		logger:   logger,
	}
}

// Run executes the command with the batch of changed paths exposed in
// the SETTLE_CHANGED environment variable. Paths are deduplicated,
// first occurrence wins.
func (r *Runner) Run(ctx context.Context, paths []string) error {
	changed := dedupe(paths)

	cmd := r.executor.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.SetEnv(append(os.Environ(), ChangedEnvVar+"="+strings.Join(changed, "\n")))
	cmd.SetStdout(os.Stdout)
	cmd.SetStderr(os.Stderr)

	r.logger.Info("running command",
		log.String("command", strings.Join(r.command, " ")),
		log.Int("changed", len(changed)),
	)

	if err := cmd.Run(); err != nil {
		r.logger.Error("command failed", log.Err(err))
		return err
	}
	return nil
}

// dedupe removes duplicate paths, preserving first-occurrence order.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
