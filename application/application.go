package application

import (
	"context"

	"github.com/jmoiron/sqlx"

	"asistenciaBot/analytics"
	"asistenciaBot/api"
	"asistenciaBot/config"
	"asistenciaBot/database"
	"asistenciaBot/logger"
	"asistenciaBot/maxAPI"
	"asistenciaBot/session"
)

type Application struct {
	Bot    *maxAPI.Bot
	DB     *sqlx.DB
	Store  *session.Store
	logger *logger.Logger
}

func NewApplication() *Application {
	return &Application{}
}

// Configure wires the process: the session store feeds tokens to the API
// gateway, the gateway feeds 401s back to the bot, and the bot renders on
// top of both. Restore runs before the update loop so old chats keep their
// sessions across a restart.
func (app *Application) Configure(cfg *config.Config, logger *logger.Logger, ctx context.Context) error {
	app.logger = logger

	db, err := database.OpenDB(&cfg.Database)
	if err != nil {
		return err
	}
	app.DB = db

	store := session.NewStore(database.NewSessionRepository(db), logger)
	app.Store = store

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, store, logger)
	store.SetAuth(client)

	analyticsClient := analytics.New(cfg.Analytics.BaseURL, cfg.Analytics.Timeout)
	if err := analyticsClient.Health(ctx); err != nil {
		logger.Warnf("Analytics service not reachable at startup: %v", err)
	}

	b, err := maxAPI.NewBot(&cfg.MaxAPI, logger, client, analyticsClient, store, ctx)
	if err != nil {
		_ = db.Close()
		return err
	}
	client.SetAuthFailureHandler(b)
	app.Bot = b

	if err := store.Restore(ctx); err != nil {
		logger.Errorf("Session restore failed, continuing without saved sessions: %v", err)
	}

	return nil
}

func (app *Application) Run(ctx context.Context) {
	app.Bot.Start(ctx)
}
