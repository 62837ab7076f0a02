package service

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fuelworks/omf-ingress/src/domain"
)

type recordingOmfService struct {
	calls   []string
	failing map[string]bool
}

func (self *recordingOmfService) Send(_ context.Context, _ domain.Endpoint, messageType domain.MessageType, action domain.Action, _ any) error {
	call := messageType.String() + "/" + action.String()
	self.calls = append(self.calls, call)
	if self.failing[call] {
		return errors.New("boom")
	}
	return nil
}

func TestRegisterOrder(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	omfService := &recordingOmfService{}
	topologyService := NewTopologyService(omfService, &logger)

	// when
	err := topologyService.Register(context.Background(), domain.Endpoint{Name: "eds"})

	// then
	assert.Nil(t, err)
	assert.Equal(t, []string{"type/create", "container/create", "data/create"}, omfService.calls)
}

func TestRegisterStopsOnError(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	omfService := &recordingOmfService{failing: map[string]bool{"container/create": true}}
	topologyService := NewTopologyService(omfService, &logger)

	// when
	err := topologyService.Register(context.Background(), domain.Endpoint{Name: "eds"})

	// then
	assert.Error(t, err)
	assert.Equal(t, []string{"type/create", "container/create"}, omfService.calls)
}

func TestUnregisterReverseOrderAndBestEffort(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	omfService := &recordingOmfService{failing: map[string]bool{"container/delete": true}}
	topologyService := NewTopologyService(omfService, &logger)

	// when
	topologyService.Unregister(context.Background(), domain.Endpoint{Name: "eds"})

	// then every delete is attempted even though one fails
	assert.Equal(t, []string{"data/delete", "container/delete", "type/delete"}, omfService.calls)
}
