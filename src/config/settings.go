package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/domain"
)

// Settings mirrors appsettings.json.
type Settings struct {
	Endpoints            []domain.Endpoint `json:"Endpoints"`
	UseRandom            bool              `json:"UseRandom"`
	SensorUrl            string            `json:"SensorUrl"`
	NumberOfIterations   int               `json:"NumberOfIterations"`
	DelayBetweenRequests int               `json:"DelayBetweenRequests"`
}

func (self Settings) Delay() time.Duration {
	return time.Duration(self.DelayBetweenRequests) * time.Second
}

func (self Settings) SelectedEndpoints() []domain.Endpoint {
	var selected []domain.Endpoint
	for _, endpoint := range self.Endpoints {
		if endpoint.Selected {
			selected = append(selected, endpoint)
		}
	}
	return selected
}

func LoadSettings(path string, logger *zerolog.Logger) (Settings, error) {
	settings := Settings{}

	content, err := os.ReadFile(path)
	if err != nil {
		return settings, errors.WithMessagef(err, "Could not read settings file %q", path)
	}

	warnDeprecatedEndpointTypes(content, logger)

	if err := json.Unmarshal(content, &settings); err != nil {
		return settings, errors.WithMessagef(err, "Could not unmarshal settings file %q", path)
	}

	for i, endpoint := range settings.Endpoints {
		if err := validateEndpoint(endpoint); err != nil {
			return settings, errors.WithMessagef(err, "Endpoint %d in settings file %q is invalid", i, path)
		}
	}

	return settings, nil
}

func validateEndpoint(endpoint domain.Endpoint) error {
	if endpoint.Resource == "" {
		return errors.New("Resource must not be empty")
	}
	switch endpoint.EndpointType {
	case domain.EndpointTypeAdh:
		if endpoint.ApiVersion == "" || endpoint.TenantId == "" || endpoint.NamespaceId == "" {
			return errors.New("ApiVersion, TenantId and NamespaceId are required for ADH endpoints")
		}
		if endpoint.ClientId == "" || endpoint.ClientSecret == "" {
			return errors.New("ClientId and ClientSecret are required for ADH endpoints")
		}
	case domain.EndpointTypeEds:
		if endpoint.ApiVersion == "" {
			return errors.New("ApiVersion is required for EDS endpoints")
		}
	case domain.EndpointTypePi:
		if endpoint.Username == "" || endpoint.Password == "" {
			return errors.New("Username and Password are required for PI endpoints")
		}
	}
	return nil
}

func warnDeprecatedEndpointTypes(content []byte, logger *zerolog.Logger) {
	var raw struct {
		Endpoints []struct {
			EndpointType string `json:"EndpointType"`
		} `json:"Endpoints"`
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return
	}
	for _, endpoint := range raw.Endpoints {
		if endpoint.EndpointType == "OCS" {
			logger.Warn().Msg("OCS endpoint type is deprecated as OSIsoft Cloud Services has been migrated to AVEVA Data Hub, using ADH type instead")
		}
	}
}
