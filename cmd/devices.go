package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// DevicesList prints the available Spotify Connect devices, marking the active one.
func (r *Runner) DevicesList(ctx context.Context, cmd *cli.Command) error {
	var devices []models.Device
	if err := r.call(ctx, func(svc services.Service) error {
		var err error
		devices, err = svc.Devices(ctx)
		return err
	}); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, cmd.Bool("pretty"))
	}

	if len(devices) == 0 {
		return r.writePlain("No devices found\n")
	}

	for _, d := range devices {
		marker := " "
		if d.Active {
			marker = "*"
		}
		r.writePlain("%s %s (%s)\n", marker, d.Name, d.Type)
		if d.ID != "" {
			r.writePlain("    ID: %s\n", d.ID)
		}
		if d.Restricted {
			r.writePlain("    Restricted: yes\n")
		}
	}
	return nil
}

// DevicesSet transfers playback to a device and remembers it.
//
// Without an argument the last selected device is used.
func (r *Runner) DevicesSet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		id = r.config.Playback.DeviceID
	}
	if id == "" {
		return fmt.Errorf("%w: device id is required", shared.ErrMissingArgument)
	}

	if err := r.call(ctx, func(svc services.Service) error {
		return svc.SetDevice(ctx, id)
	}); err != nil {
		return fmt.Errorf("failed to set device: %w", err)
	}

	r.config.Playback.DeviceID = id
	if err := r.saveConfig(); err != nil {
		r.logger.Warn("device set, but settings could not be saved", "error", err)
	}
	return r.writePlain("✓ Playback transferred to %s\n", id)
}
