package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/matt-g-everett/keyframer/api"
	"github.com/matt-g-everett/keyframer/logging"
	"github.com/matt-g-everett/keyframer/project"
	"github.com/matt-g-everett/keyframer/stream"
	"github.com/rs/zerolog/log"
)

type app struct {
	Config     stream.Config
	Client     mqtt.Client
	Streamer   *stream.Streamer
	Control    *stream.Control
	Controller *stream.Controller
	Repo       project.Repository
	Api        *api.Api
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Info().Str("broker", a.Config.Mqtt.URL).Msg("Connected")
	if err := a.Control.Subscribe(); err != nil {
		log.Error().Err(err).Msg("Control subscription failed")
	}
}

func (a *app) openRepository(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case "redis":
		repo, err := project.NewRedisRepository(ctx, a.Config.Storage.RedisURL, a.Config.Storage.TTL)
		if err != nil {
			return err
		}
		a.Repo = repo
	default:
		repo, err := project.NewFileRepository(a.Config.Storage.Dir)
		if err != nil {
			return err
		}
		a.Repo = repo
	}
	return nil
}

// loadProject opens the configured project, or starts an empty one with the
// configured playback settings.
func (a *app) loadProject(ctx context.Context) (*project.Project, error) {
	if id := a.Config.Storage.Project; id != "" {
		p, err := a.Repo.Load(ctx, id)
		if err == nil {
			log.Info().Str("project", id).Str("name", p.ProjectName).Msg("Project loaded")
			return p, nil
		}
		if !errors.Is(err, project.ErrNotFound) {
			return nil, err
		}
		log.Warn().Str("project", id).Msg("Project not found, starting a new one")
	}

	p := project.New("Untitled")
	if id := a.Config.Storage.Project; id != "" {
		p.ProjectID = id
	}
	loop := a.Config.Playback.Loop
	p.FPS = a.Config.Playback.FPS
	p.Duration = a.Config.Playback.DurationSecs
	p.Loop = &loop
	p.AutoKey = a.Config.Playback.AutoKey
	return p, nil
}

func (a *app) setup(ctx context.Context) error {
	if err := a.openRepository(ctx); err != nil {
		return err
	}
	p, err := a.loadProject(ctx)
	if err != nil {
		return err
	}
	scene, err := stream.SceneFromProject(p)
	if err != nil {
		return err
	}
	clock, err := p.Clock()
	if err != nil {
		return err
	}

	hub := api.NewHub()
	sinks := []stream.FrameSink{hub}
	if a.Config.Mqtt.URL != "" {
		options := mqtt.NewClientOptions().
			AddBroker(a.Config.Mqtt.URL).
			SetClientID(a.Config.Mqtt.ClientID).
			SetUsername(a.Config.Mqtt.Username).
			SetPassword(a.Config.Mqtt.Password).
			SetKeepAlive(30 * time.Second).
			SetPingTimeout(5 * time.Second).
			SetAutoReconnect(true).
			SetOnConnectHandler(a.handleOnConnect).
			SetConnectionLostHandler(func(client mqtt.Client, err error) {
				log.Warn().Err(err).Msg("Connection lost")
			})
		a.Client = mqtt.NewClient(options)
		a.Streamer = stream.NewStreamer(a.Config, a.Client)
		sinks = append(sinks, a.Streamer)
	}

	a.Controller = stream.NewController(scene, clock, sinks...)
	hub.SetControl(a.Controller)
	if a.Client != nil {
		a.Control = stream.NewControl(a.Config, a.Client, a.Controller)
	}
	a.Api = api.NewApi(a.Config, a.Controller, a.Repo, hub, p)
	a.Api.SetTransition(a.Config.Playback.Transition)
	return nil
}

func (a *app) run(ctx context.Context) error {
	if a.Client != nil {
		if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		defer a.Client.Disconnect(250)
	}

	go func() {
		if err := a.Api.Serve(ctx); err != nil {
			log.Error().Err(err).Msg("API server stopped")
		}
	}()

	// The controller outlives ctx long enough to capture the final state.
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := make(chan error, 1)
	go func() {
		errs <- a.Controller.Run(runCtx, a.Config.Playback.TickInterval)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	if _, err := a.Api.Save(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to save project on shutdown")
	}
	cancel()
	<-errs
	return nil
}

func main() {
	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdlog.Fatalf("Failed to read .env: %v", err)
	}

	// Read the config
	a := newApp()
	config, err := stream.LoadConfig(*configPath)
	if err != nil {
		stdlog.Fatal(err)
	}
	a.Config = config
	if err := logging.Init(a.Config.Log.Level, a.Config.Log.Format); err != nil {
		stdlog.Fatal(err)
	}
	mqtt.ERROR = stdlog.New(log.Logger, "", 0)
	log.Debug().Interface("config", a.Config.Playback).Msg("Config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	if err := a.run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Stopped")
	}
}
