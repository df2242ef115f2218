package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/checklist/internal/cli"
	"github.com/idilsaglam/checklist/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Hand everything to the cobra root; it returns an *ExitError on failure.
	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
