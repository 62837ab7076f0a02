package component

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/application/service"
	"github.com/fuelworks/omf-ingress/src/config"
	"github.com/fuelworks/omf-ingress/src/domain"
)

// PumpConsumer registers the asset model on every selected endpoint
// and then streams readings to them on a fixed interval.
type PumpConsumer struct {
	Logger          zerolog.Logger
	Settings        config.Settings
	OmfService      service.OmfService
	TopologyService service.TopologyService
	ReadingService  service.ReadingService
}

func (self *PumpConsumer) Start(ctx context.Context) error {
	self.Logger.Info().Msg("Starting")

	endpoints := self.Settings.SelectedEndpoints()
	if len(endpoints) == 0 {
		self.Logger.Warn().Msg("No endpoint is selected")
		return nil
	}

	for _, endpoint := range endpoints {
		if err := self.pump(ctx, endpoint); err != nil {
			return errors.WithMessagef(err, "Error pumping readings to endpoint %q", endpoint.Name)
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	self.Logger.Info().Msg("Complete")

	// Stay up once done so the supervisor does not restart the pump.
	<-ctx.Done()
	return nil
}

func (self *PumpConsumer) pump(ctx context.Context, endpoint domain.Endpoint) error {
	if err := self.TopologyService.Register(ctx, endpoint); err != nil {
		return err
	}

	if !sleep(ctx, 1*time.Second) {
		return nil
	}

	iterations := self.Settings.NumberOfIterations

	for count := 0; count == 0 || count < iterations; count++ {
		if reading, err := self.ReadingService.Next(ctx); err != nil {
			self.Logger.Warn().Err(err).Msg("Unable to get data from the sensor")
		} else {
			self.Logger.Info().
				Str("endpoint", endpoint.Name).
				Float64("value", reading.Value).
				Msg("Sending value")

			if err := self.OmfService.Send(ctx, endpoint, domain.MessageTypeData, domain.ActionCreate, []domain.Data{reading.ToData()}); err != nil {
				return err
			}
		}

		if !sleep(ctx, self.Settings.Delay()) {
			return nil
		}
	}

	return nil
}

func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
