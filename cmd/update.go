package main

import (
	"context"

	"github.com/desertthunder/spt/internal/services"
	"github.com/urfave/cli/v3"
)

func (r *Runner) updateChecker() *services.UpdateChecker {
	return services.NewUpdateChecker(r.httpClient, r.releasesURL, r.version)
}

// UpdateCheck compares the running version with the latest published release.
func (r *Runner) UpdateCheck(ctx context.Context, cmd *cli.Command) error {
	result, err := r.updateChecker().Check(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	if !result.Available {
		return r.writePlain("✓ spt %s is up to date\n", r.version)
	}

	r.writePlain("Update found: %s\n", result.Release.TagName)
	if result.Release.URL != "" {
		r.writePlain("  %s\n", result.Release.URL)
	}
	return nil
}
