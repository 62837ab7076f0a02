package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/config"
	"github.com/fuelworks/omf-ingress/src/domain"
)

var (
	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omf_messages_sent_total",
		Help: "Number of OMF messages successfully delivered.",
	}, []string{"endpoint", "type"})

	messageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omf_message_errors_total",
		Help: "Number of OMF messages that failed to deliver.",
	}, []string{"endpoint", "type"})
)

// Headers that may be sent to an OMF endpoint. Anything else is dropped.
var allowedHeaders = map[string]bool{
	"Authorization":    true,
	"messagetype":      true,
	"action":           true,
	"messageformat":    true,
	"omfversion":       true,
	"x-requested-with": true,
	"compression":      true,
}

type OmfService interface {
	Send(context.Context, domain.Endpoint, domain.MessageType, domain.Action, any) error
}

type omfService struct {
	logger       zerolog.Logger
	tokenService TokenService

	mutex   sync.Mutex
	clients map[string]*http.Client
}

func NewOmfService(tokenService TokenService, logger *zerolog.Logger) OmfService {
	return &omfService{
		logger:       logger.With().Str("component", "OmfService").Logger(),
		tokenService: tokenService,
		clients:      map[string]*http.Client{},
	}
}

func (self *omfService) Send(ctx context.Context, endpoint domain.Endpoint, messageType domain.MessageType, action domain.Action, message any) error {
	requestId := uuid.New()

	logger := self.logger.With().
		Str("endpoint", endpoint.Name).
		Str("messagetype", messageType.String()).
		Str("action", action.String()).
		Str("requestId", requestId.String()).
		Logger()

	body, compression, err := encodeBody(endpoint, message)
	if err != nil {
		return err
	}

	headers, err := self.headers(ctx, endpoint, compression, messageType, action)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.OmfEndpoint(), bytes.NewReader(body))
	if err != nil {
		return errors.WithMessage(err, "Could not build OMF request")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if endpoint.EndpointType == domain.EndpointTypePi {
		req.SetBasicAuth(endpoint.Username, endpoint.Password)
	}

	logger.Debug().Msg("Sending OMF message")

	response, err := self.client(endpoint).Do(req)
	if err != nil {
		messageErrors.WithLabelValues(endpoint.Name, messageType.String()).Inc()
		return errors.WithMessagef(err, "Could not send %s message to endpoint %q", messageType, endpoint.Name)
	}
	defer func() { _ = response.Body.Close() }()

	// A type or container with the given ID and version already exists.
	if response.StatusCode == http.StatusConflict {
		logger.Debug().Msg("Already exists")
		messagesSent.WithLabelValues(endpoint.Name, messageType.String()).Inc()
		return nil
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(response.Body)
		messageErrors.WithLabelValues(endpoint.Name, messageType.String()).Inc()
		logger.Error().
			Int("status", response.StatusCode).
			Bytes("response", responseBody).
			Msg("Response from endpoint was bad")
		return fmt.Errorf("OMF message was unsuccessful, %s. %d:%s", messageType, response.StatusCode, string(responseBody))
	}

	messagesSent.WithLabelValues(endpoint.Name, messageType.String()).Inc()
	return nil
}

func (self *omfService) headers(ctx context.Context, endpoint domain.Endpoint, compression string, messageType domain.MessageType, action domain.Action) (map[string]string, error) {
	headers := map[string]string{
		"messagetype":   messageType.String(),
		"action":        action.String(),
		"messageformat": "JSON",
		"omfversion":    domain.OmfVersion,
	}

	if compression != "" {
		headers["compression"] = compression
	}

	switch endpoint.EndpointType {
	case domain.EndpointTypeAdh:
		token, err := self.tokenService.Token(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		headers["Authorization"] = "Bearer " + token
	case domain.EndpointTypePi:
		headers["x-requested-with"] = "xmlhttprequest"
	}

	return SanitizeHeaders(headers), nil
}

// SanitizeHeaders drops any header not on the allow-list
// to guard against header injection.
func SanitizeHeaders(headers map[string]string) map[string]string {
	validated := map[string]string{}
	for key, value := range headers {
		if allowedHeaders[key] {
			validated[key] = value
		}
	}
	return validated
}

func (self *omfService) client(endpoint domain.Endpoint) *http.Client {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	key := endpoint.Name + "|" + endpoint.Resource
	if client, exists := self.clients[key]; exists {
		return client
	}

	client := config.NewHttpClient(endpoint, &self.logger)
	self.clients[key] = client
	return client
}

func encodeBody(endpoint domain.Endpoint, message any) (body []byte, compression string, err error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, "", errors.WithMessage(err, "Could not marshal OMF message")
	}

	if !endpoint.ShouldCompress() {
		return payload, "", nil
	}

	buf := &bytes.Buffer{}
	writer := gzip.NewWriter(buf)
	if _, err := writer.Write(payload); err != nil {
		return nil, "", errors.WithMessage(err, "Could not compress OMF message")
	}
	if err := writer.Close(); err != nil {
		return nil, "", errors.WithMessage(err, "Could not compress OMF message")
	}

	return buf.Bytes(), "gzip", nil
}
