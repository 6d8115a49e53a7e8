package app

import (
	"context"
	"log/slog"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/server"
	"github.com/grafana/dskit/services"
	"github.com/grafana/dskit/signals"
	"github.com/pkg/errors"
)

const metricsNamespace = "radiorec"

type App struct {
	cfg    Config
	logger slog.Logger

	Server *server.Server

	ModuleManager *modules.Manager
	serviceMap    map[string]services.Service
}

// New creates and returns a new App.
func New(cfg Config, logger slog.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}

	if a.cfg.Target == "" {
		a.cfg.Target = All
	}

	if err := a.setupModuleManager(); err != nil {
		return nil, errors.Wrap(err, "failed to setup module manager")
	}

	return a, nil
}

// Run starts the target modules and blocks until all of them stopped, either
// through a signal, a module failure or the recorder running out of stations.
func (a *App) Run() error {
	serviceMap, err := a.ModuleManager.InitModuleServices(a.cfg.Target)
	if err != nil {
		return errors.Wrap(err, "failed to init module services")
	}
	a.serviceMap = serviceMap

	servs := make([]services.Service, 0, len(serviceMap))
	for _, s := range serviceMap {
		servs = append(servs, s)
	}

	sm, err := services.NewManager(servs...)
	if err != nil {
		return errors.Wrap(err, "failed to create service manager")
	}

	sm.AddListener(services.NewManagerListener(
		func() { a.logger.Info("started", "target", a.cfg.Target) },
		func() { a.logger.Info("stopped") },
		func(service services.Service) {
			sm.StopAsync()
			a.logFailure(service)
		},
	))

	// A signal stops the manager, which stops all the services.
	handler := signals.NewHandler(a.Server.Log)
	go func() {
		handler.Loop()
		sm.StopAsync()
	}()

	if err := sm.StartAsync(context.Background()); err != nil {
		return errors.Wrap(err, "failed to start service manager")
	}

	return sm.AwaitStopped(context.Background())
}

func (a *App) logFailure(service services.Service) {
	name := "unknown"
	for m, s := range a.serviceMap {
		if s == service {
			name = m
			break
		}
	}

	cause := service.FailureCase()
	if errors.Is(cause, modules.ErrStopProcess) {
		a.logger.Info("module finished", "module", name)
		return
	}
	a.logger.Error("module failed", "module", name, "err", cause)
}
