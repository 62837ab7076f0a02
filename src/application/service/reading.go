package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/config"
	"github.com/fuelworks/omf-ingress/src/domain"
)

// Raw measurements are reported in tenths of a degree.
const measurementScale = 10

type ReadingService interface {
	Next(context.Context) (domain.Reading, error)
}

type randomReadingService struct {
	logger zerolog.Logger
}

// NewRandomReadingService returns a source of random values
// in the 20.0 to 49.9 range for demonstration purposes.
func NewRandomReadingService(logger *zerolog.Logger) ReadingService {
	return &randomReadingService{
		logger: logger.With().Str("component", "RandomReadingService").Logger(),
	}
}

func (self *randomReadingService) Next(context.Context) (domain.Reading, error) {
	raw := 200 + rand.Intn(300)
	return domain.Reading{
		Timestamp: time.Now().UTC(),
		Value:     float64(raw) / measurementScale,
	}, nil
}

type sensorReadingService struct {
	logger    zerolog.Logger
	sensorUrl string
	client    *http.Client
}

func NewSensorReadingService(sensorUrl string, logger *zerolog.Logger) ReadingService {
	contextualLogger := logger.With().Str("component", "SensorReadingService").Logger()

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = config.LeveledLogger{Logger: &contextualLogger}

	return &sensorReadingService{
		logger:    contextualLogger,
		sensorUrl: sensorUrl,
		client:    client.StandardClient(),
	}
}

func (self *sensorReadingService) Next(ctx context.Context) (domain.Reading, error) {
	reading := domain.Reading{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, self.sensorUrl, http.NoBody)
	if err != nil {
		return reading, errors.WithMessage(err, "Could not build sensor request")
	}

	response, err := self.client.Do(req)
	if err != nil {
		return reading, errors.WithMessagef(err, "Could not read sensor at %q", self.sensorUrl)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return reading, fmt.Errorf("Sensor at %q answered %d", self.sensorUrl, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return reading, errors.WithMessage(err, "Could not read sensor response")
	}

	sensor := struct {
		Temperature *float64 `xml:"temperature"`
	}{}
	if err := xml.Unmarshal(body, &sensor); err != nil {
		return reading, errors.WithMessage(err, "Could not unmarshal sensor response")
	}
	if sensor.Temperature == nil {
		return reading, fmt.Errorf("Sensor at %q answered without a temperature element", self.sensorUrl)
	}

	self.logger.Debug().Float64("value", *sensor.Temperature).Msg("Sensor value")

	reading.Timestamp = time.Now().UTC()
	reading.Value = *sensor.Temperature / measurementScale
	return reading, nil
}
