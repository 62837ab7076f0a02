package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fuelworks/omf-ingress/src/config"
	"github.com/fuelworks/omf-ingress/src/domain"
)

// Tokens are refreshed when they are within this duration of expiring.
const tokenExpiryMargin = 5 * time.Minute

type TokenService interface {
	// Token returns a bearer token for an ADH endpoint
	// and the empty string for any other endpoint type.
	Token(context.Context, domain.Endpoint) (string, error)
}

type tokenService struct {
	logger zerolog.Logger

	mutex sync.Mutex
	cache map[string]oauth2.Token
}

func NewTokenService(logger *zerolog.Logger) TokenService {
	return &tokenService{
		logger: logger.With().Str("component", "TokenService").Logger(),
		cache:  map[string]oauth2.Token{},
	}
}

func (self *tokenService) Token(ctx context.Context, endpoint domain.Endpoint) (string, error) {
	if endpoint.EndpointType != domain.EndpointTypeAdh {
		return "", nil
	}

	self.mutex.Lock()
	defer self.mutex.Unlock()

	key := cacheKey(endpoint)
	if token, exists := self.cache[key]; exists && time.Until(token.Expiry) > tokenExpiryMargin {
		return token.AccessToken, nil
	}

	token, err := self.fetch(ctx, endpoint)
	if err != nil {
		return "", err
	}

	self.cache[key] = *token
	return token.AccessToken, nil
}

func (self *tokenService) fetch(ctx context.Context, endpoint domain.Endpoint) (*oauth2.Token, error) {
	client := config.NewHttpClient(endpoint, &self.logger)

	tokenEndpoint, err := self.discoverTokenEndpoint(ctx, endpoint, client)
	if err != nil {
		return nil, err
	}

	self.logger.Debug().
		Str("endpoint", endpoint.Name).
		Str("tokenEndpoint", tokenEndpoint).
		Msg("Fetching access token")

	conf := clientcredentials.Config{
		ClientID:     endpoint.ClientId,
		ClientSecret: endpoint.ClientSecret,
		TokenURL:     tokenEndpoint,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	token, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, client))
	return token, errors.WithMessagef(err, "Could not retrieve token for endpoint %q", endpoint.Name)
}

func (self *tokenService) discoverTokenEndpoint(ctx context.Context, endpoint domain.Endpoint, client *http.Client) (string, error) {
	discoveryUrl := strings.TrimSuffix(endpoint.Resource, "/") + "/identity/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryUrl, http.NoBody)
	if err != nil {
		return "", errors.WithMessage(err, "Could not build discovery request")
	}
	req.Header.Set("Accept", "application/json")

	response, err := client.Do(req)
	if err != nil {
		return "", errors.WithMessagef(err, "Could not fetch discovery document from %q", discoveryUrl)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(response.Body)
		return "", fmt.Errorf("Failed to get access token endpoint from discovery URL: %d:%s", response.StatusCode, string(body))
	}

	discovery := struct {
		TokenEndpoint string `json:"token_endpoint"`
	}{}
	if err := json.NewDecoder(response.Body).Decode(&discovery); err != nil {
		return "", errors.WithMessage(err, "Could not unmarshal discovery document")
	}

	tokenUrl, err := url.Parse(discovery.TokenEndpoint)
	if err != nil {
		return "", errors.WithMessagef(err, "Discovery document advertises invalid token endpoint %q", discovery.TokenEndpoint)
	}
	if tokenUrl.Scheme != "https" {
		return "", fmt.Errorf("Token endpoint %q is not https", discovery.TokenEndpoint)
	}
	if !strings.HasPrefix(tokenUrl.String(), endpoint.Resource) {
		return "", fmt.Errorf("Token endpoint %q does not belong to resource %q", discovery.TokenEndpoint, endpoint.Resource)
	}

	return tokenUrl.String(), nil
}

func cacheKey(endpoint domain.Endpoint) string {
	if endpoint.Name != "" {
		return endpoint.Name
	}
	return endpoint.Resource + "|" + endpoint.ClientId
}
