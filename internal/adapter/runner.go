package adapter

import (
	"context"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// runner abstracts the subprocess executor so tests can substitute a spy
// and assert on the exact argv an adapter builds.
type runner interface {
	Run(ctx context.Context, args []string, opts executor.Options) executor.Result
	RunWithStdinPrompt(ctx context.Context, args []string, prompt string, opts executor.Options) executor.Result
}
