package config

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/domain"
)

// LeveledLogger adapts zerolog to retryablehttp's logging interface.
type LeveledLogger struct {
	*zerolog.Logger
}

func (l LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error().Fields(keysAndValues).Msg(msg)
}
func (l LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn().Fields(keysAndValues).Msg(msg)
}
func (l LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info().Fields(keysAndValues).Msg(msg)
}
func (l LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

// NewHttpClient builds the retrying HTTP client used to talk to an
// endpoint, honoring its TLS verification and timeout settings.
func NewHttpClient(endpoint domain.Endpoint, logger *zerolog.Logger) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !endpoint.ShouldVerifySsl() {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   time.Duration(endpoint.RequestTimeoutSeconds()) * time.Second,
	}
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = LeveledLogger{logger}

	return client.StandardClient()
}
