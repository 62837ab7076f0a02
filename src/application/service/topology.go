package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/domain"
)

type TopologyService interface {
	// Register creates the asset model on the endpoint:
	// types first, then containers, then static assets and links.
	Register(context.Context, domain.Endpoint) error

	// Unregister deletes the asset model in reverse order.
	// Errors are logged and skipped so that as much as possible is cleaned up.
	Unregister(context.Context, domain.Endpoint)
}

type topologyService struct {
	logger     zerolog.Logger
	omfService OmfService
	topology   domain.Topology
}

func NewTopologyService(omfService OmfService, logger *zerolog.Logger) TopologyService {
	return &topologyService{
		logger:     logger.With().Str("component", "TopologyService").Logger(),
		omfService: omfService,
		topology:   domain.SampleTopology(),
	}
}

func (self *topologyService) Register(ctx context.Context, endpoint domain.Endpoint) error {
	self.logger.Info().Str("endpoint", endpoint.Name).Msg("Registering asset model")

	if err := self.omfService.Send(ctx, endpoint, domain.MessageTypeType, domain.ActionCreate, self.topology.Types); err != nil {
		return errors.WithMessage(err, "Could not create types")
	}
	if err := self.omfService.Send(ctx, endpoint, domain.MessageTypeContainer, domain.ActionCreate, self.topology.Containers); err != nil {
		return errors.WithMessage(err, "Could not create containers")
	}
	if err := self.omfService.Send(ctx, endpoint, domain.MessageTypeData, domain.ActionCreate, self.topology.Assets); err != nil {
		return errors.WithMessage(err, "Could not create assets")
	}

	return nil
}

func (self *topologyService) Unregister(ctx context.Context, endpoint domain.Endpoint) {
	self.logger.Info().Str("endpoint", endpoint.Name).Msg("Deleting asset model")

	if err := self.omfService.Send(ctx, endpoint, domain.MessageTypeData, domain.ActionDelete, self.topology.Assets); err != nil {
		self.logger.Err(err).Msg("Error deleting assets")
	}
	if err := self.omfService.Send(ctx, endpoint, domain.MessageTypeContainer, domain.ActionDelete, self.topology.Containers); err != nil {
		self.logger.Err(err).Msg("Error deleting containers")
	}
	if err := self.omfService.Send(ctx, endpoint, domain.MessageTypeType, domain.ActionDelete, self.topology.Types); err != nil {
		self.logger.Err(err).Msg("Error deleting types")
	}
}
