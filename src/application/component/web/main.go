package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/application/service"
	"github.com/fuelworks/omf-ingress/src/config"
	"github.com/fuelworks/omf-ingress/src/domain"
)

const signatureHeader = "X-Ingress-Signature-256"
const acceptedSignature = "sha256"
const MiB = 1048576

// Web accepts pushed readings over an HMAC-authenticated webhook
// and serves health and metrics.
type Web struct {
	Logger     zerolog.Logger
	Listen     string
	Secret     []byte
	Settings   config.Settings
	OmfService service.OmfService
}

func (self *Web) Start(ctx context.Context) error {
	self.Logger.Info().Str("listen", self.Listen).Msg("Starting")

	server := &http.Server{
		Addr:         self.Listen,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler:      self.router(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			self.Logger.Err(err).Msgf("Failed to start web server on %s", self.Listen)
		}
	}()

	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		self.Logger.Err(err).Msg("Failed to stop web server")
	}

	return nil
}

func (self *Web) router() *mux.Router {
	muxRouter := mux.NewRouter().StrictSlash(true)
	muxRouter.NotFoundHandler = http.NotFoundHandler()

	muxRouter.HandleFunc("/health", self.HealthGet).Methods(http.MethodGet)
	muxRouter.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	muxRouter.HandleFunc("/api/reading", self.ApiReadingPost).Methods(http.MethodPost)

	return muxRouter
}

func (self *Web) HealthGet(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": domain.BuildInfo.String(),
	})
}

func fail(w http.ResponseWriter, err error, status int) bool {
	if err != nil {
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, err.Error())
		return true
	}
	return false
}

func (self *Web) ApiReadingPost(w http.ResponseWriter, req *http.Request) {
	self.Logger.Info().Str("method", req.Method).Str("path", req.URL.Path).Msg("request")

	// We limit body sizes to 1MiB, hopefully that is enough
	body, err := io.ReadAll(io.LimitReader(req.Body, MiB))
	if fail(w, errors.WithMessage(err, "reading body"), http.StatusBadRequest) {
		return
	}

	err = self.validateSignature(req.Header.Get(signatureHeader), body)
	if fail(w, errors.WithMessage(err, "HMAC invalid"), http.StatusBadRequest) {
		return
	}

	payload := struct {
		Value     float64    `json:"value"`
		Timestamp *time.Time `json:"timestamp"`
	}{}
	err = json.Unmarshal(body, &payload)
	if fail(w, errors.WithMessage(err, "unmarshal body"), http.StatusBadRequest) {
		return
	}

	reading := domain.Reading{Timestamp: time.Now().UTC(), Value: payload.Value}
	if payload.Timestamp != nil {
		reading.Timestamp = *payload.Timestamp
	}

	for _, endpoint := range self.Settings.SelectedEndpoints() {
		err := self.OmfService.Send(req.Context(), endpoint, domain.MessageTypeData, domain.ActionCreate, []domain.Data{reading.ToData()})
		if fail(w, errors.WithMessagef(err, "forwarding reading to endpoint %q", endpoint.Name), http.StatusBadGateway) {
			return
		}
	}

	fmt.Fprint(w, "ok")
}

func (self *Web) validateSignature(signatureRaw string, body []byte) error {
	signatureParts := strings.Split(signatureRaw, "=")
	if len(signatureParts) != 2 {
		return fmt.Errorf("Invalid signature %q", signatureRaw)
	}

	signatureType := signatureParts[0]

	if signatureType != acceptedSignature {
		return fmt.Errorf("HMAC Signature type unexpected %q != %q", signatureType, acceptedSignature)
	}

	msgMac, err := hex.DecodeString(signatureParts[1])
	if err != nil {
		return errors.WithMessage(err, "failed to decode header signature")
	}

	ok, err := self.checkMac(body, msgMac, self.Secret)
	if err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("HMAC message digest or secret invalid")
	}

	return nil
}

func (self *Web) checkMac(msg, msgMac, key []byte) (bool, error) {
	mac := hmac.New(sha256.New, key)
	n, err := mac.Write(msg)
	if err != nil {
		return false, errors.WithMessage(err, "failed to calculate")
	} else if n != len(msg) {
		return false, fmt.Errorf("hashed %d of %d bytes", n, len(msg))
	}

	hash := mac.Sum(nil)

	if hmac.Equal(msgMac, hash) {
		return true, nil
	}

	self.Logger.Info().
		Str("msgMac", fmt.Sprintf("%x", msgMac)).
		Str("hash", fmt.Sprintf("%x", hash)).
		Send()

	return false, nil
}
