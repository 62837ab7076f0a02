package ingress

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cirello.io/oversight"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fuelworks/omf-ingress/src/application/component"
	"github.com/fuelworks/omf-ingress/src/application/component/web"
	"github.com/fuelworks/omf-ingress/src/application/service"
	"github.com/fuelworks/omf-ingress/src/config"
)

type StartCmd struct {
	Components []string `arg:"positional,env:OMF_INGRESS_COMPONENTS" help:"any of: pump, web"`

	Settings string `arg:"--settings,env:OMF_INGRESS_SETTINGS" default:"appsettings.json" help:"path to the settings file"`

	WebListen string `arg:"--web-listen,env:OMF_INGRESS_WEB_LISTEN" default:":8080"`
	WebSecret string `arg:"--web-secret" help:"file that contains the webhook HMAC secret"`
}

func (cmd StartCmd) Run(logger *zerolog.Logger) error {
	instance, err := NewInstance(cmd, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return instance.Run(ctx)
}

type InstanceComponentsOpts struct {
	Pump bool
	Web  *InstanceWebComponentOpts
}

type InstanceWebComponentOpts struct {
	ListenAddr string
	SecretPath string
}

func (cmd StartCmd) GetComponentOpts() InstanceComponentsOpts {
	start := InstanceComponentsOpts{}

	webOpts := InstanceWebComponentOpts{
		ListenAddr: cmd.WebListen,
		SecretPath: cmd.WebSecret,
	}

	// If none are given then start all,
	// otherwise start only those that are given.
	for _, component := range cmd.Components {
		switch component {
		case "pump":
			start.Pump = true
		case "web":
			start.Web = &webOpts
		default:
			panic("Unknown component: " + component)
		}
	}
	if !start.Pump && start.Web == nil {
		start.Pump = true
		start.Web = &webOpts
	}

	return start
}

func NewInstance(cmd StartCmd, logger *zerolog.Logger) (Instance, error) {
	instance := Instance{logger: logger}

	settings, err := config.LoadSettings(cmd.Settings, logger)
	if err != nil {
		logger.Fatal().Err(err).Send()
		return instance, err
	}

	tokenService := service.NewTokenService(logger)
	omfService := service.NewOmfService(tokenService, logger)
	topologyService := service.NewTopologyService(omfService, logger)

	var readingService service.ReadingService
	if settings.UseRandom {
		readingService = service.NewRandomReadingService(logger)
	} else {
		readingService = service.NewSensorReadingService(settings.SensorUrl, logger)
	}

	start := cmd.GetComponentOpts()

	if start.Pump {
		instance.Pump = &component.PumpConsumer{
			Logger:          logger.With().Str("component", "PumpConsumer").Logger(),
			Settings:        settings,
			OmfService:      omfService,
			TopologyService: topologyService,
			ReadingService:  readingService,
		}
	}

	if start.Web != nil {
		// An empty HMAC key would let anyone sign requests.
		if start.Web.SecretPath == "" {
			return instance, errors.New("A webhook secret file is required to start the web component")
		}

		var secret []byte
		if v, err := os.ReadFile(start.Web.SecretPath); err != nil {
			return instance, errors.WithMessage(err, "While reading webhook secret file")
		} else if len(bytes.TrimSpace(v)) == 0 {
			return instance, errors.New("Webhook secret file must not be empty")
		} else {
			secret = bytes.TrimSuffix(v, []byte{'\n'})
		}

		instance.Web = &web.Web{
			Logger:     logger.With().Str("component", "Web").Logger(),
			Listen:     start.Web.ListenAddr,
			Secret:     secret,
			Settings:   settings,
			OmfService: omfService,
		}
	}

	return instance, nil
}

type Instance struct {
	Pump *component.PumpConsumer
	Web  *web.Web

	logger *zerolog.Logger
}

func (self Instance) Run(ctx context.Context) error {
	self.logger.Info().Msg("Starting components")

	supervisor := oversight.New(
		oversight.WithLogger(&config.SupervisorLogger{Logger: self.logger}),
		oversight.WithSpecification(
			10,                    // number of restarts
			1*time.Minute,         // within this time period
			oversight.OneForOne(), // restart every task on its own
		),
	)

	if self.Pump != nil {
		if err := supervisor.Add(self.Pump.Start); err != nil {
			return err
		}
	}

	if self.Web != nil {
		if err := supervisor.Add(self.Web.Start); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := supervisor.Start(ctx); err != nil {
		return errors.WithMessage(err, "While starting supervisor")
	}

	<-ctx.Done()
	return nil
}
