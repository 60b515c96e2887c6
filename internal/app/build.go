package app

import (
	"context"

	"github.com/h-ikeda/strust/internal/toolchain"
)

// Build runs the one-shot build-start invocation. The caller maps a spawn
// error or a non-zero outcome to a failed build step.
func Build(ctx context.Context, opts Options) (toolchain.Outcome, error) {
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return toolchain.Outcome{}, err
	}
	defer rt.close()

	return rt.orch.OnBuildStart(ctx)
}
