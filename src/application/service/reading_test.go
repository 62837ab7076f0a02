package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRandomReading(t *testing.T) {
	t.Parallel()

	logger := zerolog.New(io.Discard)
	readingService := NewRandomReadingService(&logger)

	for i := 0; i < 100; i++ {
		reading, err := readingService.Next(context.Background())
		assert.Nil(t, err)
		assert.GreaterOrEqual(t, reading.Value, 20.0)
		assert.Less(t, reading.Value, 50.0)
		assert.False(t, reading.Timestamp.IsZero())
	}
}

func TestSensorReading(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<sensor><temperature>215</temperature><humidity>40</humidity></sensor>`)
	}))
	t.Cleanup(server.Close)
	readingService := NewSensorReadingService(server.URL, &logger)

	// when
	reading, err := readingService.Next(context.Background())

	// then
	assert.Nil(t, err)
	assert.Equal(t, 21.5, reading.Value)
}

func TestSensorReadingBadStatus(t *testing.T) {
	t.Parallel()

	logger := zerolog.New(io.Discard)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	readingService := NewSensorReadingService(server.URL, &logger)

	_, err := readingService.Next(context.Background())
	assert.Error(t, err)
}

func TestSensorReadingMissingTemperature(t *testing.T) {
	t.Parallel()

	// given a sensor that answers well-formed XML without a temperature element
	logger := zerolog.New(io.Discard)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<sensor><humidity>40</humidity></sensor>`)
	}))
	t.Cleanup(server.Close)
	readingService := NewSensorReadingService(server.URL, &logger)

	// when
	_, err := readingService.Next(context.Background())

	// then no fabricated zero reading is produced
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
}

func TestSensorReadingBadXml(t *testing.T) {
	t.Parallel()

	logger := zerolog.New(io.Discard)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not xml at all`)
	}))
	t.Cleanup(server.Close)
	readingService := NewSensorReadingService(server.URL, &logger)

	_, err := readingService.Next(context.Background())
	assert.Error(t, err)
}
