package main

import (
	"context"
	"os"

	"github.com/desertthunder/spt/internal/shared"
)

var version = "0.1.0"

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Logger:  logger,
		Version: version,
	})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
