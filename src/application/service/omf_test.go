package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fuelworks/omf-ingress/src/domain"
)

type stubTokenService struct {
	token string
	err   error
}

func (self stubTokenService) Token(context.Context, domain.Endpoint) (string, error) {
	return self.token, self.err
}

type recordedRequest struct {
	header http.Header
	body   []byte
	auth   string
}

func newOmfServer(t *testing.T, status int, responseBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	requests := &[]recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Error(err)
		}
		*requests = append(*requests, recordedRequest{
			header: r.Header.Clone(),
			body:   body,
			auth:   r.Header.Get("Authorization"),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, responseBody)
	}))
	t.Cleanup(server.Close)

	return server, requests
}

func edsEndpoint(resource string, compress bool) domain.Endpoint {
	return domain.Endpoint{
		Name:           "eds",
		EndpointType:   domain.EndpointTypeEds,
		Resource:       resource,
		ApiVersion:     "v1",
		UseCompression: &compress,
	}
}

func TestSendHeaders(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server, requests := newOmfServer(t, http.StatusNoContent, "")
	omfService := NewOmfService(stubTokenService{}, &logger)
	endpoint := edsEndpoint(server.URL, false)

	// when
	err := omfService.Send(context.Background(), endpoint, domain.MessageTypeContainer, domain.ActionCreate, []domain.Container{{Id: "c", TypeId: "t"}})

	// then
	assert.Nil(t, err)
	assert.Len(t, *requests, 1)
	request := (*requests)[0]
	assert.Equal(t, "container", request.header.Get("messagetype"))
	assert.Equal(t, "create", request.header.Get("action"))
	assert.Equal(t, "JSON", request.header.Get("messageformat"))
	assert.Equal(t, "1.1", request.header.Get("omfversion"))
	assert.Empty(t, request.header.Get("compression"))
	assert.Empty(t, request.auth)

	var containers []domain.Container
	assert.Nil(t, json.Unmarshal(request.body, &containers))
	assert.Equal(t, "c", containers[0].Id)
}

func TestSendCompressed(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server, requests := newOmfServer(t, http.StatusAccepted, "")
	omfService := NewOmfService(stubTokenService{}, &logger)
	endpoint := edsEndpoint(server.URL, true)

	// when
	err := omfService.Send(context.Background(), endpoint, domain.MessageTypeData, domain.ActionCreate, []domain.Data{{ContainerId: "c"}})

	// then
	assert.Nil(t, err)
	assert.Len(t, *requests, 1)
	request := (*requests)[0]
	assert.Equal(t, "gzip", request.header.Get("compression"))

	reader, err := gzip.NewReader(bytes.NewReader(request.body))
	assert.Nil(t, err)
	payload, err := io.ReadAll(reader)
	assert.Nil(t, err)

	var data []domain.Data
	assert.Nil(t, json.Unmarshal(payload, &data))
	assert.Equal(t, "c", data[0].ContainerId)
}

func TestSendAdhBearerToken(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server, requests := newOmfServer(t, http.StatusOK, "")
	omfService := NewOmfService(stubTokenService{token: "sesame"}, &logger)
	compress := false
	endpoint := domain.Endpoint{
		Name:           "adh",
		EndpointType:   domain.EndpointTypeAdh,
		Resource:       server.URL,
		ApiVersion:     "v1",
		TenantId:       "tenant",
		NamespaceId:    "namespace",
		UseCompression: &compress,
	}

	// when
	err := omfService.Send(context.Background(), endpoint, domain.MessageTypeType, domain.ActionCreate, []domain.Type{})

	// then
	assert.Nil(t, err)
	assert.Equal(t, "Bearer sesame", (*requests)[0].auth)
}

func TestSendPiBasicAuth(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server, requests := newOmfServer(t, http.StatusOK, "")
	omfService := NewOmfService(stubTokenService{}, &logger)
	compress := false
	endpoint := domain.Endpoint{
		Name:           "pi",
		EndpointType:   domain.EndpointTypePi,
		Resource:       server.URL,
		Username:       "user",
		Password:       "pass",
		UseCompression: &compress,
	}

	// when
	err := omfService.Send(context.Background(), endpoint, domain.MessageTypeType, domain.ActionCreate, []domain.Type{})

	// then
	assert.Nil(t, err)
	request := (*requests)[0]
	assert.Equal(t, "xmlhttprequest", request.header.Get("x-requested-with"))
	assert.Contains(t, request.auth, "Basic ")
}

func TestSendConflictIsSuccess(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server, _ := newOmfServer(t, http.StatusConflict, "already exists")
	omfService := NewOmfService(stubTokenService{}, &logger)

	// when
	err := omfService.Send(context.Background(), edsEndpoint(server.URL, false), domain.MessageTypeType, domain.ActionCreate, []domain.Type{})

	// then
	assert.Nil(t, err)
}

func TestSendBadRequest(t *testing.T) {
	t.Parallel()

	// given
	logger := zerolog.New(io.Discard)
	server, _ := newOmfServer(t, http.StatusBadRequest, "malformed message")
	omfService := NewOmfService(stubTokenService{}, &logger)

	// when
	err := omfService.Send(context.Background(), edsEndpoint(server.URL, false), domain.MessageTypeData, domain.ActionCreate, []domain.Data{})

	// then
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "malformed message")
}

func TestSanitizeHeaders(t *testing.T) {
	t.Parallel()

	sanitized := SanitizeHeaders(map[string]string{
		"messagetype": "data",
		"omfversion":  "1.1",
		"X-Evil":      "injected",
		"Cookie":      "nope",
	})

	assert.Equal(t, map[string]string{
		"messagetype": "data",
		"omfversion":  "1.1",
	}, sanitized)
}
