package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"osca-hub-go/internal/client/api"
	"osca-hub-go/internal/client/config"
	"osca-hub-go/internal/client/connectivity"
	"osca-hub-go/internal/client/localstore"
	"osca-hub-go/internal/client/syncer"
)

type App struct {
	config  *config.Config
	store   *localstore.Store
	api     *api.Client
	monitor *connectivity.Monitor
	syncer  *syncer.Syncer

	account *api.Account
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := localstore.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Printf("error initializing local store: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewClient(cfg.ServerURL)
	monitor := connectivity.NewMonitor(apiClient)
	monitor.OnChange(func(online bool) {
		if online {
			log.Println("Switched to online mode")
		} else {
			log.Println("Switched to offline mode")
		}
	})

	return &App{
		config:  cfg,
		store:   store,
		api:     apiClient,
		monitor: monitor,
		syncer:  syncer.New(store, monitor, apiClient),
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	go a.monitor.Watch(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}
