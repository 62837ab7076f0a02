package ingress

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/application/service"
	"github.com/fuelworks/omf-ingress/src/config"
)

// RegisterCmd creates the asset model on every selected endpoint and exits.
type RegisterCmd struct {
	Settings string `arg:"--settings,env:OMF_INGRESS_SETTINGS" default:"appsettings.json" help:"path to the settings file"`
}

func (cmd RegisterCmd) Run(logger *zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings, topologyService, err := loadTopology(cmd.Settings, logger)
	if err != nil {
		return err
	}

	for _, endpoint := range settings.SelectedEndpoints() {
		if err := topologyService.Register(ctx, endpoint); err != nil {
			return err
		}
	}
	return nil
}

// UnregisterCmd deletes the asset model from every selected endpoint, best-effort.
type UnregisterCmd struct {
	Settings string `arg:"--settings,env:OMF_INGRESS_SETTINGS" default:"appsettings.json" help:"path to the settings file"`
}

func (cmd UnregisterCmd) Run(logger *zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings, topologyService, err := loadTopology(cmd.Settings, logger)
	if err != nil {
		return err
	}

	for _, endpoint := range settings.SelectedEndpoints() {
		topologyService.Unregister(ctx, endpoint)
	}
	return nil
}

func loadTopology(settingsPath string, logger *zerolog.Logger) (config.Settings, service.TopologyService, error) {
	settings, err := config.LoadSettings(settingsPath, logger)
	if err != nil {
		return settings, nil, err
	}

	tokenService := service.NewTokenService(logger)
	omfService := service.NewOmfService(tokenService, logger)
	return settings, service.NewTopologyService(omfService, logger), nil
}
